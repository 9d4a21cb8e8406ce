package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"matasaa/internal/config"
	"matasaa/internal/events"
	"matasaa/internal/modules/pricing"
)

type fakeTransport struct {
	conf  Confirmation
	err   error
	calls []Submission
}

func (f *fakeTransport) CreateBooking(_ context.Context, sub Submission) (Confirmation, error) {
	f.calls = append(f.calls, sub)
	return f.conf, f.err
}

type fakeLedger struct {
	attempts []Attempt
	err      error
}

func (f *fakeLedger) Record(_ context.Context, a Attempt) error {
	f.attempts = append(f.attempts, a)
	return f.err
}

func (f *fakeLedger) ListBySession(_ context.Context, sessionID string) ([]Attempt, error) {
	var out []Attempt
	for _, a := range f.attempts {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic, _ string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func newQuotes() *pricing.Service {
	cfg := config.PricingConfig{
		BaseRatePerKm:         6.48,
		MinimumFare:           32,
		LastMinuteMultiplier:  1.15,
		LastMinuteWindowHours: 2,
		PlaceholderDistanceKm: 10,
		VehicleMultipliers:    map[string]float64{"standard": 1.0, "xl": 1.3},
	}
	now := func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }
	est := pricing.NewEstimator(nil, cfg, time.UTC, pricing.WithClock(now))
	return pricing.NewService(est, pricing.NewMemoryStore(time.Hour), nil, nil)
}

func newTestService(tr Transport, quotes Quoter, ledger Ledger, pub events.Publisher) *Service {
	return NewService(Deps{
		Transport: tr,
		Quotes:    quotes,
		Ledger:    ledger,
		Events:    pub,
		Vehicles:  testVehicles,
	})
}

func TestSubmit_Success(t *testing.T) {
	tr := &fakeTransport{conf: Confirmation{Success: true, BookingID: "BK-1001"}}
	svc := newTestService(tr, nil, nil, nil)

	conf, err := svc.Submit(context.Background(), Submission{Candidate: validCandidate(), EstimatedPrice: 64.8})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if conf.BookingID != "BK-1001" {
		t.Errorf("booking id = %q", conf.BookingID)
	}
	if len(tr.calls) != 1 {
		t.Errorf("transport calls = %d, want exactly 1", len(tr.calls))
	}
}

func TestSubmit_BackendMessageIsKept(t *testing.T) {
	tr := &fakeTransport{err: &SubmissionError{Status: 200, Message: "Driver unavailable"}}
	svc := newTestService(tr, nil, nil, nil)

	_, err := svc.Submit(context.Background(), Submission{Candidate: validCandidate()})
	var se *SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SubmissionError, got %v", err)
	}
	if se.Message != "Driver unavailable" {
		t.Errorf("message = %q, want backend message", se.Message)
	}
}

func TestSubmit_TransportFailureIsGeneric(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	tr := &fakeTransport{err: cause}
	svc := newTestService(tr, nil, nil, nil)

	_, err := svc.Submit(context.Background(), Submission{Candidate: validCandidate()})
	var se *SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SubmissionError, got %v", err)
	}
	if se.Message != GenericSubmissionMessage || se.Status != 0 {
		t.Errorf("unexpected error %+v", se)
	}
	if !errors.Is(err, cause) {
		t.Error("cause should stay reachable through Unwrap")
	}
	if len(tr.calls) != 1 {
		t.Errorf("transport calls = %d, want no retry", len(tr.calls))
	}
}

func TestSubmit_UnsuccessfulConfirmation(t *testing.T) {
	svc := newTestService(&fakeTransport{conf: Confirmation{Success: false}}, nil, nil, nil)
	_, err := svc.Submit(context.Background(), Submission{Candidate: validCandidate()})
	var se *SubmissionError
	if !errors.As(err, &se) || se.Message != "Booking failed" {
		t.Fatalf("expected Booking failed, got %v", err)
	}
}

func TestBook_UsesCurrentQuote(t *testing.T) {
	ctx := context.Background()
	quotes := newQuotes()
	c := validCandidate()
	c.VehicleType = "xl"

	q, _, err := quotes.Quote(ctx, "sess", c.Request)
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	tr := &fakeTransport{conf: Confirmation{Success: true, BookingID: "BK-7"}}
	ledger := &fakeLedger{}
	pub := &recordingPublisher{}
	svc := newTestService(tr, quotes, ledger, pub)

	conf, sub, err := svc.Book(ctx, "sess", c)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if conf.BookingID != "BK-7" {
		t.Errorf("booking id = %q", conf.BookingID)
	}
	if sub.EstimatedPrice != q.Estimate.EstimatedPrice || sub.EstimatedPrice != 84.24 {
		t.Errorf("submitted price = %v, want current quote %v", sub.EstimatedPrice, q.Estimate.EstimatedPrice)
	}
	if sub.QuoteSource != pricing.SourceLocalFallback {
		t.Errorf("quote source = %s", sub.QuoteSource)
	}
	cur, _, _ := quotes.Current(ctx, "sess")
	if cur.Seq != q.Seq {
		t.Errorf("booking should not re-estimate an up-to-date quote (seq %d -> %d)", q.Seq, cur.Seq)
	}

	if len(ledger.attempts) != 1 || ledger.attempts[0].Status != AttemptConfirmed || ledger.attempts[0].BookingID != "BK-7" {
		t.Errorf("unexpected ledger %+v", ledger.attempts)
	}
	if len(pub.topics) != 1 || pub.topics[0] != events.TopicBookingConfirmed {
		t.Errorf("unexpected events %v", pub.topics)
	}
}

func TestBook_ReestimatesStaleQuote(t *testing.T) {
	ctx := context.Background()
	quotes := newQuotes()
	c := validCandidate()

	// Quote was computed for XL, then the customer switched to standard.
	old := c.Request
	old.VehicleType = "xl"
	if _, _, err := quotes.Quote(ctx, "sess", old); err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	tr := &fakeTransport{conf: Confirmation{Success: true, BookingID: "BK-8"}}
	svc := newTestService(tr, quotes, nil, nil)

	_, sub, err := svc.Book(ctx, "sess", c)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if sub.EstimatedPrice != 64.80 {
		t.Errorf("submitted price = %v, want fresh standard estimate 64.80", sub.EstimatedPrice)
	}
	cur, _, _ := quotes.Current(ctx, "sess")
	if cur.Request.VehicleType != "standard" {
		t.Errorf("slot should hold the fresh quote, got %+v", cur.Request)
	}
}

func TestBook_NoQuoteYet(t *testing.T) {
	tr := &fakeTransport{conf: Confirmation{Success: true, BookingID: "BK-9"}}
	svc := newTestService(tr, newQuotes(), nil, nil)

	_, sub, err := svc.Book(context.Background(), "fresh-session", validCandidate())
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if sub.EstimatedPrice != 64.80 {
		t.Errorf("submitted price = %v, want 64.80", sub.EstimatedPrice)
	}
}

func TestBook_ValidationStopsSubmission(t *testing.T) {
	tr := &fakeTransport{}
	ledger := &fakeLedger{}
	svc := newTestService(tr, newQuotes(), ledger, nil)

	c := validCandidate()
	c.FullName = ""
	_, _, err := svc.Book(context.Background(), "sess", c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(tr.calls) != 0 || len(ledger.attempts) != 0 {
		t.Error("invalid candidates must not reach the backend or the ledger")
	}
}

func TestBook_FailureIsRecorded(t *testing.T) {
	tr := &fakeTransport{err: &SubmissionError{Status: 409, Message: "Driver unavailable"}}
	ledger := &fakeLedger{err: errors.New("db down")}
	pub := &recordingPublisher{}
	svc := newTestService(tr, newQuotes(), ledger, pub)

	_, _, err := svc.Book(context.Background(), "sess", validCandidate())
	if err == nil || err.Error() != "Driver unavailable" {
		t.Fatalf("expected backend message, got %v", err)
	}
	if len(ledger.attempts) != 1 || ledger.attempts[0].Status != AttemptFailed || ledger.attempts[0].FailureMessage != "Driver unavailable" {
		t.Errorf("unexpected ledger %+v", ledger.attempts)
	}
	if len(pub.topics) != 1 || pub.topics[0] != events.TopicBookingFailed {
		t.Errorf("unexpected events %v", pub.topics)
	}
}

func TestBook_RequiresSession(t *testing.T) {
	svc := newTestService(&fakeTransport{}, newQuotes(), nil, nil)
	if _, _, err := svc.Book(context.Background(), "", validCandidate()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestBook_TrimsFields(t *testing.T) {
	tr := &fakeTransport{conf: Confirmation{Success: true}}
	svc := newTestService(tr, newQuotes(), nil, nil)

	c := validCandidate()
	c.FullName = "  Jane Doe "
	c.Email = " jane@example.com"
	if _, _, err := svc.Book(context.Background(), "sess", c); err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if got := tr.calls[0]; got.FullName != "Jane Doe" || got.Email != "jane@example.com" {
		t.Errorf("fields not trimmed: %+v", got.Candidate)
	}
}

func TestHistory_ReadsSessionAttempts(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestService(&fakeTransport{conf: Confirmation{Success: true, BookingID: "BK-7"}}, newQuotes(), ledger, nil)

	if _, _, err := svc.Book(context.Background(), "sess", validCandidate()); err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if _, _, err := svc.Book(context.Background(), "other", validCandidate()); err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	got, err := svc.History(context.Background(), "sess")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 1 || got[0].BookingID != "BK-7" || got[0].Status != AttemptConfirmed {
		t.Errorf("unexpected history %+v", got)
	}
}

func TestHistory_Errors(t *testing.T) {
	svc := newTestService(&fakeTransport{}, newQuotes(), nil, nil)
	if _, err := svc.History(context.Background(), "sess"); !errors.Is(err, ErrLedgerDisabled) {
		t.Errorf("expected ErrLedgerDisabled, got %v", err)
	}
	if _, err := svc.History(context.Background(), ""); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}
