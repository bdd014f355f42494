// README: Staged booking records produced by the three wizard stages.
package booking

import "chauffeur/internal/types"

type TravelType string

const (
	TravelNone   TravelType = "none"
	TravelFlight TravelType = "flight"
	TravelTrain  TravelType = "train"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	MinPassengers = 1
	MaxPassengers = 7
)

// Itinerary is the Stage 1 record. It is replaced wholesale on each submit.
type Itinerary struct {
	Pickup       types.Location   `json:"pickup"`
	Dropoff      types.Location   `json:"dropoff"`
	ExtraStops   []types.Location `json:"extra_stops,omitempty"`
	PickupDate   string           `json:"pickup_date"`
	PickupTime   string           `json:"pickup_time"`
	Passengers   int              `json:"passengers"`
	TravelType   TravelType       `json:"travel_type"`
	FlightNumber string           `json:"flight_number,omitempty"`
	TrainNumber  string           `json:"train_number,omitempty"`
	Terminal     string           `json:"terminal,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	ServiceType  string           `json:"service_type,omitempty"`
}

// VehicleSelection is the Stage 2 record. Price, distance and duration are
// frozen when the vehicle is picked.
//
// BookingReference identifies this one booking to the payment provider. It
// is issued with the selection, so two bookings never share it.
type VehicleSelection struct {
	VehicleID        string  `json:"vehicle_id"`
	VehicleName      string  `json:"vehicle_name"`
	Price            float64 `json:"price"`
	DistanceKm       float64 `json:"distance_km"`
	DurationMin      int     `json:"duration_min"`
	BookingReference string  `json:"booking_reference"`
}

// ContactInfo is the Stage 3 record, persisted once payment succeeds.
type ContactInfo struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,phone"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

func (c ContactInfo) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
