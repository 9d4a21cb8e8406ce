// README: JSON HTTP client for the booking backend (price calculation and booking creation).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"matasaa/internal/config"
	"matasaa/internal/modules/booking"
	"matasaa/internal/modules/pricing"
)

// maxBodyBytes bounds how much of a backend response is read.
const maxBodyBytes = 1 << 20

var ErrMalformedResponse = errors.New("malformed backend response")

// StatusError is a non-2xx answer from the price endpoint.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

type Client struct {
	http         *http.Client
	baseURL      string
	pricePath    string
	bookingsPath string
}

func NewClient(cfg config.BackendConfig) *Client {
	return &Client{
		http:         &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		pricePath:    cfg.PricePath,
		bookingsPath: cfg.BookingsPath,
	}
}

type priceRequest struct {
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
	VehicleType    string `json:"vehicle_type"`
	Passengers     int    `json:"passengers"`
	PickupDateTime string `json:"pickup_datetime"`
}

type priceResponse struct {
	Success         *bool              `json:"success"`
	EstimatedPrice  *float64           `json:"estimated_price"`
	DistanceKm      float64            `json:"distance_km"`
	DurationMinutes float64            `json:"duration_minutes"`
	Breakdown       *pricing.Breakdown `json:"breakdown"`
}

// CalculatePrice asks the backend for a price. Any transport failure,
// non-2xx status or unusable body is returned as an error so the caller can
// fall back.
func (c *Client) CalculatePrice(ctx context.Context, req pricing.Request) (pricing.Estimate, error) {
	resp, err := c.post(ctx, c.pricePath, priceRequest{
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		VehicleType:    string(req.VehicleType),
		Passengers:     req.Passengers,
		PickupDateTime: req.PickupDateTime(),
	})
	if err != nil {
		return pricing.Estimate{}, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return pricing.Estimate{}, &StatusError{Status: resp.StatusCode}
	}

	var out priceResponse
	if err := decode(resp.Body, &out); err != nil {
		return pricing.Estimate{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	switch {
	case out.Success != nil && !*out.Success:
		return pricing.Estimate{}, fmt.Errorf("%w: success=false", ErrMalformedResponse)
	case out.EstimatedPrice == nil:
		return pricing.Estimate{}, fmt.Errorf("%w: missing estimated_price", ErrMalformedResponse)
	case *out.EstimatedPrice <= 0:
		return pricing.Estimate{}, fmt.Errorf("%w: no usable estimated_price", ErrMalformedResponse)
	case out.DistanceKm < 0 || out.DurationMinutes < 0:
		return pricing.Estimate{}, fmt.Errorf("%w: negative values", ErrMalformedResponse)
	}
	return pricing.Estimate{
		EstimatedPrice:  *out.EstimatedPrice,
		DistanceKm:      out.DistanceKm,
		DurationMinutes: out.DurationMinutes,
		Breakdown:       out.Breakdown,
	}, nil
}

type bookingRequest struct {
	CustomerName   string  `json:"customer_name"`
	CustomerEmail  string  `json:"customer_email"`
	CustomerPhone  string  `json:"customer_phone"`
	PickupAddress  string  `json:"pickup_address"`
	DropoffAddress string  `json:"dropoff_address"`
	PickupDateTime string  `json:"pickup_datetime"`
	VehicleType    string  `json:"vehicle_type"`
	Passengers     int     `json:"passengers"`
	EstimatedPrice float64 `json:"estimated_price"`
	Notes          string  `json:"notes"`
}

type bookingResponse struct {
	Success   bool       `json:"success"`
	BookingID flexibleID `json:"booking_id"`
	Message   string     `json:"message"`
}

// CreateBooking posts a submission. A response that arrives but does not
// confirm the booking is returned as a *booking.SubmissionError carrying the
// backend's message when it sent one. Transport failures are returned as is.
func (c *Client) CreateBooking(ctx context.Context, sub booking.Submission) (booking.Confirmation, error) {
	resp, err := c.post(ctx, c.bookingsPath, bookingRequest{
		CustomerName:   sub.FullName,
		CustomerEmail:  sub.Email,
		CustomerPhone:  sub.Phone,
		PickupAddress:  sub.PickupAddress,
		DropoffAddress: sub.DropoffAddress,
		PickupDateTime: sub.PickupDateTime(),
		VehicleType:    string(sub.VehicleType),
		Passengers:     sub.Passengers,
		EstimatedPrice: sub.EstimatedPrice,
		Notes:          sub.Notes,
	})
	if err != nil {
		return booking.Confirmation{}, err
	}
	defer resp.Body.Close()

	var out bookingResponse
	decodeErr := decode(resp.Body, &out)
	message := strings.TrimSpace(out.Message)

	if !isSuccess(resp.StatusCode) {
		if decodeErr != nil || message == "" {
			message = booking.StatusMessage(resp.StatusCode)
		}
		return booking.Confirmation{}, &booking.SubmissionError{Status: resp.StatusCode, Message: message, Err: decodeErr}
	}
	if decodeErr != nil {
		return booking.Confirmation{}, &booking.SubmissionError{
			Status:  resp.StatusCode,
			Message: booking.StatusMessage(resp.StatusCode),
			Err:     fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr),
		}
	}
	if !out.Success {
		if message == "" {
			message = "Booking failed"
		}
		return booking.Confirmation{}, &booking.SubmissionError{Status: resp.StatusCode, Message: message}
	}
	return booking.Confirmation{Success: true, BookingID: string(out.BookingID)}, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

func decode(r io.Reader, v any) error {
	return json.NewDecoder(io.LimitReader(r, maxBodyBytes)).Decode(v)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// flexibleID accepts booking references sent either as strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("booking_id: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}
