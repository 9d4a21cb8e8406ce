// README: Booking handler; validates and submits the booking form.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"matasaa/internal/http/middleware"
	"matasaa/internal/modules/booking"
)

type Booker interface {
	Book(ctx context.Context, sessionID string, c booking.Candidate) (booking.Confirmation, booking.Submission, error)
	History(ctx context.Context, sessionID string) ([]booking.Attempt, error)
}

type BookingHandler struct {
	booking Booker
}

func NewBookingHandler(svc Booker) *BookingHandler {
	return &BookingHandler{booking: svc}
}

type bookingResponse struct {
	Success        bool    `json:"success"`
	BookingID      string  `json:"booking_id,omitempty"`
	EstimatedPrice float64 `json:"estimated_price,omitempty"`
	Field          string  `json:"field,omitempty"`
	Message        string  `json:"message,omitempty"`
	Notification   notice  `json:"notification"`
}

func confirmationMessage(bookingID string) string {
	if bookingID == "" {
		bookingID = "N/A"
	}
	return fmt.Sprintf("Booking confirmed! Reference: %s. We'll contact you shortly.", bookingID)
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	var cand booking.Candidate
	if err := c.ShouldBindJSON(&cand); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	conf, sub, err := h.booking.Book(c.Request.Context(), middleware.SessionID(c), cand)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, bookingResponse{
		Success:        true,
		BookingID:      conf.BookingID,
		EstimatedPrice: sub.EstimatedPrice,
		Notification:   notice{Level: LevelSuccess, Message: confirmationMessage(conf.BookingID)},
	})
}

type attemptResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	BookingID      string    `json:"booking_id,omitempty"`
	PickupAddress  string    `json:"pickup_address"`
	DropoffAddress string    `json:"dropoff_address"`
	PickupDateTime string    `json:"pickup_datetime"`
	VehicleType    string    `json:"vehicle_type"`
	EstimatedPrice float64   `json:"estimated_price"`
	QuoteSource    string    `json:"quote_source"`
	FailureMessage string    `json:"failure_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// List handles GET /api/bookings: the session's submission attempts.
func (h *BookingHandler) List(c *gin.Context) {
	attempts, err := h.booking.History(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNoSession):
			writeError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, booking.ErrLedgerDisabled):
			writeError(c, http.StatusServiceUnavailable, "booking history unavailable")
		default:
			writeError(c, http.StatusInternalServerError, "internal error")
		}
		return
	}
	out := make([]attemptResponse, 0, len(attempts))
	for _, a := range attempts {
		sub := a.Submission
		out = append(out, attemptResponse{
			ID:             a.ID,
			Status:         string(a.Status),
			BookingID:      a.BookingID,
			PickupAddress:  sub.PickupAddress,
			DropoffAddress: sub.DropoffAddress,
			PickupDateTime: sub.PickupDateTime(),
			VehicleType:    string(sub.VehicleType),
			EstimatedPrice: sub.EstimatedPrice,
			QuoteSource:    string(sub.QuoteSource),
			FailureMessage: a.FailureMessage,
			CreatedAt:      a.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"attempts": out})
}

func writeBookingError(c *gin.Context, err error) {
	var ve *booking.ValidationError
	var se *booking.SubmissionError
	switch {
	case errors.As(err, &ve):
		writeJSON(c, http.StatusUnprocessableEntity, bookingResponse{
			Field:        ve.Field,
			Message:      ve.Reason,
			Notification: notice{Level: LevelError, Message: ve.Reason},
		})
	case errors.As(err, &se):
		writeJSON(c, http.StatusBadGateway, bookingResponse{
			Message:      se.Message,
			Notification: notice{Level: LevelError, Message: se.Message},
		})
	case errors.Is(err, booking.ErrNoSession):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeJSON(c, http.StatusInternalServerError, bookingResponse{
			Message:      booking.GenericSubmissionMessage,
			Notification: notice{Level: LevelError, Message: booking.GenericSubmissionMessage},
		})
	}
}
