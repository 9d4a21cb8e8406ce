package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"matasaa/internal/config"
	httptransport "matasaa/internal/http"
	"matasaa/internal/http/middleware"
	"matasaa/internal/modules/booking"
	"matasaa/internal/modules/pricing"
)

type fakeTransport struct {
	sub booking.Submission
}

func (f *fakeTransport) CreateBooking(_ context.Context, sub booking.Submission) (booking.Confirmation, error) {
	f.sub = sub
	return booking.Confirmation{Success: true, BookingID: "MAT-42"}, nil
}

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		BaseRatePerKm:         6.48,
		MinimumFare:           32,
		LastMinuteMultiplier:  1.15,
		LastMinuteWindowHours: 2,
		PlaceholderDistanceKm: 10,
		VehicleMultipliers:    map[string]float64{"standard": 1.0, "xl": 1.3},
		Currency:              "ZAR",
	}
}

func newTestServer(t *testing.T, tr *fakeTransport) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	est := pricing.NewEstimator(nil, testPricing(), time.UTC, pricing.WithClock(func() time.Time { return now }))
	quotes := pricing.NewService(est, pricing.NewMemoryStore(time.Minute), nil, nil)
	svc := booking.NewService(booking.Deps{
		Transport: tr,
		Quotes:    quotes,
		Vehicles:  booking.NewVehicleSet(testPricing().VehicleMultipliers),
	})
	return httptransport.NewServer(httptransport.ServerDeps{
		Quotes:   quotes,
		Booking:  svc,
		Currency: "ZAR",
	}).Routes()
}

func post(h http.Handler, path, sid string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, sid)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakeTransport{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("health = %d %q", w.Code, w.Body.String())
	}
}

func TestQuoteThenBook_UsesSessionQuote(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestServer(t, tr)
	sid := uuid.NewString()

	trip := map[string]any{
		"pickup_address":  "OR Tambo",
		"dropoff_address": "Sandton City",
		"pickup_date":     "2026-10-25",
		"pickup_time":     "10:00",
		"vehicle_type":    "xl",
		"passengers":      4,
	}
	w := post(h, "/api/quotes", sid, trip)
	if w.Code != http.StatusOK {
		t.Fatalf("quote: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var quote struct {
		Source         string  `json:"source"`
		EstimatedPrice float64 `json:"estimated_price"`
		Display        string  `json:"display"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &quote); err != nil {
		t.Fatal(err)
	}
	if quote.Source != "local_fallback" || quote.EstimatedPrice != 84.24 || quote.Display != "R84.24" {
		t.Fatalf("unexpected quote %+v", quote)
	}

	form := map[string]any{
		"full_name": "Jane Doe",
		"email":     "jane@example.com",
		"phone":     "0821234567",
	}
	for k, v := range trip {
		form[k] = v
	}
	w = post(h, "/api/bookings", sid, form)
	if w.Code != http.StatusCreated {
		t.Fatalf("booking: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if tr.sub.EstimatedPrice != 84.24 {
		t.Errorf("submitted price = %v, want 84.24", tr.sub.EstimatedPrice)
	}
	if tr.sub.QuoteSource != pricing.SourceLocalFallback {
		t.Errorf("submitted source = %q", tr.sub.QuoteSource)
	}
}

func TestBooking_ValidationNotice(t *testing.T) {
	h := newTestServer(t, &fakeTransport{})
	w := post(h, "/api/bookings", uuid.NewString(), map[string]any{"full_name": "  "})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body struct {
		Notification struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"notification"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Notification.Level != "error" || body.Notification.Message != "Please enter your name" {
		t.Errorf("unexpected notification %+v", body.Notification)
	}
}

func TestBookingHistory_WithoutLedger(t *testing.T) {
	h := newTestServer(t, &fakeTransport{})
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set(middleware.SessionHeader, uuid.NewString())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
