// README: Booking service validates, prices with the current quote and submits.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"matasaa/internal/events"
	"matasaa/internal/logging"
	"matasaa/internal/modules/pricing"
)

// Transport forwards a submission to the booking backend.
type Transport interface {
	CreateBooking(ctx context.Context, sub Submission) (Confirmation, error)
}

// Quoter exposes the session quote slot.
type Quoter interface {
	Current(ctx context.Context, sessionID string) (pricing.Quote, bool, error)
	Quote(ctx context.Context, sessionID string, req pricing.Request) (pricing.Quote, bool, error)
}

type Ledger interface {
	Record(ctx context.Context, a Attempt) error
	ListBySession(ctx context.Context, sessionID string) ([]Attempt, error)
}

type Deps struct {
	Transport Transport
	Quotes    Quoter
	Ledger    Ledger
	Events    events.Publisher
	Vehicles  VehicleSet
	Log       *slog.Logger
}

type Service struct {
	transport Transport
	quotes    Quoter
	ledger    Ledger
	events    events.Publisher
	vehicles  VehicleSet
	log       *slog.Logger
	now       func() time.Time
}

func NewService(deps Deps) *Service {
	s := &Service{
		transport: deps.Transport,
		quotes:    deps.Quotes,
		ledger:    deps.Ledger,
		events:    deps.Events,
		vehicles:  deps.Vehicles,
		log:       deps.Log,
		now:       time.Now,
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// Validate runs the form checks against the configured vehicle types.
func (s *Service) Validate(c Candidate) error {
	return Validate(c, s.vehicles)
}

// Submit makes a single attempt to create the booking. Every failure comes
// back as a *SubmissionError.
func (s *Service) Submit(ctx context.Context, sub Submission) (Confirmation, error) {
	conf, err := s.transport.CreateBooking(ctx, sub)
	if err != nil {
		var se *SubmissionError
		if errors.As(err, &se) {
			return Confirmation{}, se
		}
		return Confirmation{}, &SubmissionError{Message: GenericSubmissionMessage, Err: err}
	}
	// The HTTP transport already maps success:false to a SubmissionError;
	// other transports may hand back an unconfirmed result without one.
	if !conf.Success {
		return Confirmation{}, &SubmissionError{Message: "Booking failed"}
	}
	return conf, nil
}

// Book validates the candidate, prices it with the session's current quote
// (re-estimating when the quote is missing or was computed for other trip
// inputs) and submits it.
func (s *Service) Book(ctx context.Context, sessionID string, c Candidate) (Confirmation, Submission, error) {
	if sessionID == "" {
		return Confirmation{}, Submission{}, ErrNoSession
	}
	c = c.Normalize()
	if err := s.Validate(c); err != nil {
		return Confirmation{}, Submission{}, err
	}

	q, err := s.quoteFor(ctx, sessionID, c.Request)
	if err != nil {
		return Confirmation{}, Submission{}, fmt.Errorf("price booking: %w", err)
	}
	sub := Submission{
		Candidate:      c,
		EstimatedPrice: q.Estimate.EstimatedPrice,
		QuoteSource:    q.Source,
	}

	conf, err := s.Submit(ctx, sub)
	s.recordAttempt(ctx, sessionID, sub, conf, err)
	return conf, sub, err
}

// History lists the session's submission attempts from the ledger.
func (s *Service) History(ctx context.Context, sessionID string) ([]Attempt, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	if s.ledger == nil {
		return nil, ErrLedgerDisabled
	}
	attempts, err := s.ledger.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list booking attempts: %w", err)
	}
	return attempts, nil
}

func (s *Service) quoteFor(ctx context.Context, sessionID string, req pricing.Request) (pricing.Quote, error) {
	cur, ok, err := s.quotes.Current(ctx, sessionID)
	if err != nil {
		return pricing.Quote{}, err
	}
	if ok && sameTrip(cur.Request, req) {
		return cur, nil
	}
	s.log.InfoContext(ctx, "re-estimating before submit",
		"action", "quote_refresh",
		"session_id", sessionID,
		"had_quote", ok,
	)
	q, _, err := s.quotes.Quote(ctx, sessionID, req)
	return q, err
}

func sameTrip(a, b pricing.Request) bool {
	a.PickupAddress, b.PickupAddress = strings.TrimSpace(a.PickupAddress), strings.TrimSpace(b.PickupAddress)
	a.DropoffAddress, b.DropoffAddress = strings.TrimSpace(a.DropoffAddress), strings.TrimSpace(b.DropoffAddress)
	return a == b
}

func (s *Service) recordAttempt(ctx context.Context, sessionID string, sub Submission, conf Confirmation, subErr error) {
	a := Attempt{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Status:     AttemptConfirmed,
		BookingID:  conf.BookingID,
		Submission: sub,
		CreatedAt:  s.now(),
	}
	topic := events.TopicBookingConfirmed
	if subErr != nil {
		a.Status = AttemptFailed
		a.FailureMessage = subErr.Error()
		topic = events.TopicBookingFailed
		s.log.ErrorContext(ctx, "booking submission failed",
			"action", "booking_failed",
			"session_id", sessionID,
			"error", subErr,
		)
	} else {
		s.log.InfoContext(ctx, "booking confirmed",
			"action", "booking_confirmed",
			"session_id", sessionID,
			"booking_id", conf.BookingID,
		)
	}

	if s.ledger != nil {
		if err := s.ledger.Record(ctx, a); err != nil {
			s.log.ErrorContext(ctx, "record booking attempt", "session_id", sessionID, "error", err)
		}
	}

	err := s.events.Publish(ctx, topic, sessionID, events.BookingOutcome{
		SessionID:      sessionID,
		BookingID:      conf.BookingID,
		VehicleType:    string(sub.VehicleType),
		PickupDateTime: sub.PickupDateTime(),
		EstimatedPrice: sub.EstimatedPrice,
		QuoteSource:    string(sub.QuoteSource),
		Message:        a.FailureMessage,
		At:             a.CreatedAt,
	})
	if err != nil {
		s.log.WarnContext(ctx, "publish booking event", "session_id", sessionID, "error", err)
	}
}
