// README: Base handler utilities (JSON helpers, presentation notices).
package handlers

import (
	"github.com/gin-gonic/gin"
)

// Notice levels understood by the widget's notification area.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

type errorResponse struct {
	Error string `json:"error"`
}

type notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}
