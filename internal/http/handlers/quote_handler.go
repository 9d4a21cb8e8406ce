// README: Quote handlers; price the current form inputs for a session.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"matasaa/internal/http/middleware"
	"matasaa/internal/modules/pricing"
	"matasaa/internal/types"
)

const quoteFailedMessage = "Unable to calculate price. Please try again."

type Quoter interface {
	Quote(ctx context.Context, sessionID string, req pricing.Request) (pricing.Quote, bool, error)
	Current(ctx context.Context, sessionID string) (pricing.Quote, bool, error)
}

type QuoteHandler struct {
	quotes   Quoter
	currency string
}

func NewQuoteHandler(quotes Quoter, currency string) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, currency: currency}
}

type quoteResponse struct {
	Source  pricing.Source `json:"source"`
	Seq     uint64         `json:"seq"`
	Stale   bool           `json:"stale"`
	Display string         `json:"display"`
	pricing.Estimate
}

func (h *QuoteHandler) toResponse(q pricing.Quote, stale bool) quoteResponse {
	return quoteResponse{
		Source:   q.Source,
		Seq:      q.Seq,
		Stale:    stale,
		Display:  types.Money{Amount: q.Estimate.EstimatedPrice, Currency: h.currency}.Display(),
		Estimate: q.Estimate,
	}
}

// Create handles POST /api/quotes. A stale quote is still returned so the
// widget can tell it apart and ignore it.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req pricing.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, applied, err := h.quotes.Quote(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrIncompleteRequest), errors.Is(err, pricing.ErrNoSession):
			writeError(c, http.StatusBadRequest, err.Error())
		default:
			writeJSON(c, http.StatusInternalServerError, gin.H{
				"error":        "internal error",
				"notification": notice{Level: LevelError, Message: quoteFailedMessage},
			})
		}
		return
	}
	writeJSON(c, http.StatusOK, h.toResponse(q, !applied))
}

// Current handles GET /api/quotes/current.
func (h *QuoteHandler) Current(c *gin.Context) {
	q, ok, err := h.quotes.Current(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(c, http.StatusNotFound, "no quote for session")
		return
	}
	writeJSON(c, http.StatusOK, h.toResponse(q, false))
}
