// README: Booking form validation; first failing check wins.
package booking

import (
	"regexp"

	"matasaa/internal/modules/pricing"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// VehicleSet is the set of vehicle types present in the fare table.
type VehicleSet map[pricing.VehicleType]struct{}

func NewVehicleSet(multipliers map[string]float64) VehicleSet {
	set := make(VehicleSet, len(multipliers))
	for v := range multipliers {
		set[pricing.VehicleType(v)] = struct{}{}
	}
	return set
}

func (s VehicleSet) Has(v pricing.VehicleType) bool {
	_, ok := s[v]
	return ok
}

// Validate checks a candidate in form order and returns a *ValidationError
// for the first failure, or nil.
func Validate(c Candidate, vehicles VehicleSet) error {
	c = c.Normalize()
	switch {
	case c.FullName == "":
		return &ValidationError{Field: "full_name", Reason: "Please enter your name"}
	case c.Email == "" || !emailPattern.MatchString(c.Email):
		return &ValidationError{Field: "email", Reason: "Please enter a valid email address"}
	case c.Phone == "":
		return &ValidationError{Field: "phone", Reason: "Please enter your phone number"}
	case c.PickupAddress == "" || c.DropoffAddress == "":
		return &ValidationError{Field: "address", Reason: "Please enter both pickup and dropoff addresses"}
	case c.PickupDate == "" || c.PickupTime == "":
		return &ValidationError{Field: "pickup_datetime", Reason: "Please select pickup date and time"}
	case c.VehicleType == "" || !vehicles.Has(c.VehicleType):
		return &ValidationError{Field: "vehicle_type", Reason: "Please select a vehicle type"}
	case c.Passengers < 1:
		return &ValidationError{Field: "passengers", Reason: "Please select the number of passengers"}
	}
	return nil
}
