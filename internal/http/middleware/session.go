// README: Session middleware; every widget request carries a form-session id.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader carries the form-session id in both directions.
const SessionHeader = "X-Session-ID"

const sessionKey = "session_id"

// Session reads the caller's session id, issuing a new one when it is
// missing or not a UUID, and echoes it on the response.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(sessionKey, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// SessionID returns the id stored by Session, or "" outside it.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
