package booking

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession      = errors.New("missing session id")
	ErrLedgerDisabled = errors.New("booking ledger not configured")
)

// GenericSubmissionMessage is shown when the backend gives no reason.
const GenericSubmissionMessage = "Failed to create booking. Please try again or contact us directly."

// ValidationError names the first form field that failed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// SubmissionError carries the message to show the customer. Status is the
// backend HTTP status, zero when no response was received.
type SubmissionError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// StatusMessage is the fallback text for a failed response without a body message.
func StatusMessage(status int) string {
	return fmt.Sprintf("booking request failed with status %d", status)
}
