// README: Price estimator; remote-first with a deterministic local fallback.
package pricing

import (
	"context"
	"log/slog"
	"math"
	"time"

	"matasaa/internal/config"
	"matasaa/internal/logging"
	"matasaa/internal/types"
)

// minutesPerKm is the crude duration guess used when no route is known.
const minutesPerKm = 3.0

// RemoteQuoter asks the booking backend for a price.
type RemoteQuoter interface {
	CalculatePrice(ctx context.Context, req Request) (Estimate, error)
}

// DistanceProvider resolves a driving route. A false second result means no
// route is available and the caller should use the placeholder distance.
type DistanceProvider interface {
	CalculateDistance(ctx context.Context, origin, destination string) (Route, bool)
}

type Estimator struct {
	remote   RemoteQuoter
	distance DistanceProvider
	cfg      config.PricingConfig
	loc      *time.Location
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*Estimator)

func WithDistanceProvider(p DistanceProvider) Option {
	return func(e *Estimator) { e.distance = p }
}

func WithClock(now func() time.Time) Option {
	return func(e *Estimator) { e.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Estimator) { e.log = l }
}

// NewEstimator builds an estimator. remote may be nil, in which case every
// estimate is computed locally.
func NewEstimator(remote RemoteQuoter, cfg config.PricingConfig, loc *time.Location, opts ...Option) *Estimator {
	if loc == nil {
		loc = time.UTC
	}
	e := &Estimator{
		remote: remote,
		cfg:    cfg,
		loc:    loc,
		now:    time.Now,
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate never fails. A remote error is logged and replaced by a local
// estimate; the returned quote's Source says which one the caller got.
func (e *Estimator) Estimate(ctx context.Context, req Request) Quote {
	if e.remote != nil {
		est, err := e.remote.CalculatePrice(ctx, req)
		if err == nil {
			return Quote{Source: SourceRemote, Estimate: est, Request: req, IssuedAt: e.now()}
		}
		e.log.WarnContext(ctx, "remote price calculation failed, using local estimate",
			"action", "quote_fallback",
			"vehicle_type", req.VehicleType,
			"error", err,
		)
	}
	return Quote{Source: SourceLocalFallback, Estimate: e.Local(ctx, req), Request: req, IssuedAt: e.now()}
}

// Local computes the fallback estimate:
// max(distance × rate, minimum fare) × vehicle multiplier, with the
// last-minute surcharge on top when pickup is within the window.
func (e *Estimator) Local(ctx context.Context, req Request) Estimate {
	distance := e.cfg.PlaceholderDistanceKm
	duration := distance * minutesPerKm
	if e.distance != nil {
		if r, ok := e.distance.CalculateDistance(ctx, req.PickupAddress, req.DropoffAddress); ok {
			distance, duration = r.DistanceKm, r.DurationMinutes
		}
	}

	price := math.Max(distance*e.cfg.BaseRatePerKm, e.cfg.MinimumFare)
	multiplier := e.VehicleMultiplier(req.VehicleType)
	price *= multiplier

	lastMinute := e.IsLastMinute(req)
	if lastMinute {
		price *= e.cfg.LastMinuteMultiplier
	}

	return Estimate{
		EstimatedPrice:  types.RoundCents(price),
		DistanceKm:      distance,
		DurationMinutes: duration,
		Breakdown: &Breakdown{
			BaseRate:          e.cfg.BaseRatePerKm,
			Distance:          distance,
			VehicleMultiplier: multiplier,
			LastMinuteApplied: lastMinute,
		},
	}
}

// VehicleMultiplier falls back to 1.0 for vehicle types missing from the
// fare table.
func (e *Estimator) VehicleMultiplier(v VehicleType) float64 {
	if m, ok := e.cfg.VehicleMultipliers[string(v)]; ok {
		return m
	}
	return 1.0
}

// IsLastMinute is true only for pickups strictly in the future and strictly
// inside the window. Past or unparseable pickups never count.
func (e *Estimator) IsLastMinute(req Request) bool {
	pickup, err := req.PickupAt(e.loc)
	if err != nil {
		return false
	}
	hours := pickup.Sub(e.now()).Hours()
	return hours > 0 && hours < e.cfg.LastMinuteWindowHours
}
