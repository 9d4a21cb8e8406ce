// README: Pricing service issues sequenced quotes into a per-session slot.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"matasaa/internal/events"
	"matasaa/internal/logging"
)

var (
	ErrNoSession         = errors.New("missing session id")
	ErrIncompleteRequest = errors.New("missing trip fields")
)

// QuoteStore holds the current quote of each form session. Apply must store
// the quote only when its Seq is the latest one issued for the session.
type QuoteStore interface {
	NextSeq(ctx context.Context, sessionID string) (uint64, error)
	Apply(ctx context.Context, sessionID string, q Quote) (bool, error)
	Current(ctx context.Context, sessionID string) (Quote, bool, error)
}

type Service struct {
	estimator *Estimator
	store     QuoteStore
	events    events.Publisher
	log       *slog.Logger
}

func NewService(estimator *Estimator, store QuoteStore, pub events.Publisher, log *slog.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Service{estimator: estimator, store: store, events: pub, log: log}
}

// Quote estimates req for the session. The bool result is false when a newer
// quote was issued for the same session while this one was being computed;
// such a quote is returned for information but not stored.
func (s *Service) Quote(ctx context.Context, sessionID string, req Request) (Quote, bool, error) {
	if sessionID == "" {
		return Quote{}, false, ErrNoSession
	}
	if !req.Complete() {
		return Quote{}, false, ErrIncompleteRequest
	}

	seq, err := s.store.NextSeq(ctx, sessionID)
	if err != nil {
		return Quote{}, false, fmt.Errorf("issue quote seq: %w", err)
	}

	q := s.estimator.Estimate(ctx, req)
	q.Seq = seq

	if q.Source == SourceLocalFallback {
		s.publishFallback(ctx, sessionID, q)
	}

	applied, err := s.store.Apply(ctx, sessionID, q)
	if err != nil {
		return Quote{}, false, fmt.Errorf("store quote: %w", err)
	}
	if !applied {
		s.log.InfoContext(ctx, "discarding stale quote",
			"action", "quote_stale",
			"session_id", sessionID,
			"seq", seq,
		)
	}
	return q, applied, nil
}

// Current returns the latest applied quote for the session.
func (s *Service) Current(ctx context.Context, sessionID string) (Quote, bool, error) {
	if sessionID == "" {
		return Quote{}, false, ErrNoSession
	}
	return s.store.Current(ctx, sessionID)
}

func (s *Service) publishFallback(ctx context.Context, sessionID string, q Quote) {
	err := s.events.Publish(ctx, events.TopicQuoteFallback, sessionID, events.QuoteFallback{
		SessionID:      sessionID,
		Seq:            q.Seq,
		VehicleType:    string(q.Request.VehicleType),
		EstimatedPrice: q.Estimate.EstimatedPrice,
		DistanceKm:     q.Estimate.DistanceKm,
		IssuedAt:       q.IssuedAt,
	})
	if err != nil {
		s.log.WarnContext(ctx, "publish quote fallback event", "session_id", sessionID, "error", err)
	}
}
