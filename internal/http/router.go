// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")
	api.POST("/quotes", s.quotes.Create)
	api.GET("/quotes/current", s.quotes.Current)
	api.POST("/bookings", s.booking.Create)
	api.GET("/bookings", s.booking.List)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
}
