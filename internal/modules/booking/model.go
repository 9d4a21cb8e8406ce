// README: Booking candidate, submission and confirmation definitions.
package booking

import (
	"strings"
	"time"

	"matasaa/internal/modules/pricing"
)

// Candidate is the full booking form before validation.
type Candidate struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Notes    string `json:"notes"`
	pricing.Request
}

// Normalize trims the free-text fields the way the form does before sending.
func (c Candidate) Normalize() Candidate {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Notes = strings.TrimSpace(c.Notes)
	c.PickupAddress = strings.TrimSpace(c.PickupAddress)
	c.DropoffAddress = strings.TrimSpace(c.DropoffAddress)
	return c
}

// Submission is a validated candidate priced with the session's current quote.
type Submission struct {
	Candidate
	EstimatedPrice float64
	QuoteSource    pricing.Source
}

type Confirmation struct {
	Success   bool   `json:"success"`
	BookingID string `json:"booking_id"`
}

type AttemptStatus string

const (
	AttemptConfirmed AttemptStatus = "confirmed"
	AttemptFailed    AttemptStatus = "failed"
)

// Attempt is one row of the booking ledger.
type Attempt struct {
	ID             string
	SessionID      string
	Status         AttemptStatus
	BookingID      string
	Submission     Submission
	FailureMessage string
	CreatedAt      time.Time
}
