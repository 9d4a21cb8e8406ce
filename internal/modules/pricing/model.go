// README: Trip request, price estimate and quote definitions.
package pricing

import (
	"errors"
	"strings"
	"time"
)

type VehicleType string

const (
	VehicleStandard VehicleType = "standard"
	VehicleXL       VehicleType = "xl"
)

// Source tags where an estimate came from.
type Source string

const (
	SourceRemote        Source = "remote"
	SourceLocalFallback Source = "local_fallback"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

var ErrInvalidPickupTime = errors.New("invalid pickup date or time")

// Request is the trip part of the booking form, as typed by the customer.
type Request struct {
	PickupAddress  string      `json:"pickup_address"`
	DropoffAddress string      `json:"dropoff_address"`
	PickupDate     string      `json:"pickup_date"`
	PickupTime     string      `json:"pickup_time"`
	VehicleType    VehicleType `json:"vehicle_type"`
	Passengers     int         `json:"passengers"`
}

// Complete reports whether the request carries enough to be priced.
func (r Request) Complete() bool {
	return strings.TrimSpace(r.PickupAddress) != "" &&
		strings.TrimSpace(r.DropoffAddress) != "" &&
		r.PickupDate != "" &&
		r.PickupTime != "" &&
		r.VehicleType != ""
}

// PickupDateTime renders the combined pickup timestamp sent to the backend.
func (r Request) PickupDateTime() string {
	return r.PickupDate + " " + r.PickupTime
}

// PickupAt parses the pickup wall-clock time in loc. Seconds in the time
// field are tolerated and dropped.
func (r Request) PickupAt(loc *time.Location) (time.Time, error) {
	if _, err := time.Parse(dateLayout, r.PickupDate); err != nil {
		return time.Time{}, ErrInvalidPickupTime
	}
	clock := r.PickupTime
	if len(clock) == len("15:04:05") {
		clock = clock[:len("15:04")]
	}
	t, err := time.ParseInLocation(dateTimeLayout, r.PickupDate+" "+clock, loc)
	if err != nil {
		return time.Time{}, ErrInvalidPickupTime
	}
	return t, nil
}

type Breakdown struct {
	BaseRate          float64 `json:"base_rate"`
	Distance          float64 `json:"distance"`
	VehicleMultiplier float64 `json:"vehicle_multiplier"`
	LastMinuteApplied bool    `json:"last_minute"`
}

type Estimate struct {
	EstimatedPrice  float64    `json:"estimated_price"`
	DistanceKm      float64    `json:"distance_km"`
	DurationMinutes float64    `json:"duration_minutes"`
	Breakdown       *Breakdown `json:"breakdown,omitempty"`
}

// Quote is an estimate tagged with its provenance and the request it prices.
// Seq is assigned by the quote slot; zero means the quote was never issued
// through one.
type Quote struct {
	Source   Source    `json:"source"`
	Estimate Estimate  `json:"estimate"`
	Request  Request   `json:"request"`
	Seq      uint64    `json:"seq"`
	IssuedAt time.Time `json:"issued_at"`
}

// Route is a driving distance and duration between two addresses.
type Route struct {
	DistanceKm      float64
	DurationMinutes float64
}
