// README: API gateway; builds the gin engine and delegates to module services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"matasaa/internal/http/handlers"
	"matasaa/internal/http/middleware"
	"matasaa/internal/logging"
)

type ServerDeps struct {
	Quotes   handlers.Quoter
	Booking  handlers.Booker
	Currency string
	Log      *slog.Logger
}

type Server struct {
	quotes  *handlers.QuoteHandler
	booking *handlers.BookingHandler
	log     *slog.Logger
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Log
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		quotes:  handlers.NewQuoteHandler(deps.Quotes, deps.Currency),
		booking: handlers.NewBookingHandler(deps.Booking),
		log:     log,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(
		middleware.Recovery(s.log),
		middleware.Session(),
		middleware.Logging(s.log),
	)
	registerRoutes(r, s)
	return r
}
