package maps

import (
	"context"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"

	"matasaa/internal/logging"
	"matasaa/internal/modules/pricing"
)

// placeholderAPIKey is the value shipped in sample configs; it counts as unset.
const placeholderAPIKey = "YOUR_GOOGLE_MAPS_API_KEY_HERE"

// RouteService resolves driving distances with the Google Distance Matrix API.
// A RouteService without a client always reports no route.
type RouteService struct {
	client *maps.Client
	log    *slog.Logger
}

// NewRouteService creates a RouteService with the given API key. An empty or
// placeholder key yields a service that never calls Google.
func NewRouteService(apiKey string, log *slog.Logger, opts ...maps.ClientOption) (*RouteService, error) {
	if log == nil {
		log = logging.Discard()
	}
	if apiKey == "" || apiKey == placeholderAPIKey {
		return &RouteService{log: log}, nil
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, log: log}, nil
}

// Enabled reports whether a maps credential is configured.
func (s *RouteService) Enabled() bool {
	return s != nil && s.client != nil
}

// CalculateDistance returns the driving distance and duration between two
// addresses. Any failure is logged and reported as no route.
func (s *RouteService) CalculateDistance(ctx context.Context, origin, destination string) (pricing.Route, bool) {
	if !s.Enabled() {
		return pricing.Route{}, false
	}

	r := &maps.DistanceMatrixRequest{
		Origins:      []string{origin},
		Destinations: []string{destination},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	}
	resp, err := s.client.DistanceMatrix(ctx, r)
	if err != nil {
		s.log.WarnContext(ctx, "distance matrix request failed", "error", err)
		return pricing.Route{}, false
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return pricing.Route{}, false
	}

	el := resp.Rows[0].Elements[0]
	if el == nil || el.Status != "OK" {
		return pricing.Route{}, false
	}
	return pricing.Route{
		DistanceKm:      float64(el.Distance.Meters) / 1000,
		DurationMinutes: el.Duration.Seconds() / 60,
	}, true
}
