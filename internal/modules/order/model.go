// README: Order payload sent to the booking backend and its response envelope.
package order

import (
	"encoding/json"
	"errors"

	"chauffeur/internal/modules/booking"
)

var (
	ErrBadRequest  = errors.New("bad request")
	ErrSubmission  = errors.New("order submission failed")
	ErrUnavailable = errors.New("order backend unavailable")
)

// Payload is the normalized order. It is assembled once per payment
// confirmation and never modified afterwards.
type Payload struct {
	CustomerFirstName string           `json:"customer_first_name"`
	CustomerLastName  string           `json:"customer_last_name"`
	CustomerEmail     string           `json:"customer_email"`
	CustomerPhone     string           `json:"customer_phone"`
	ServiceType       booking.Category `json:"service_type"`
	PickupLocation    string           `json:"pickup_location"`
	DropoffLocation   string           `json:"dropoff_location"`
	PickupDatetime    string           `json:"pickup_datetime"`
	Passengers        int              `json:"passengers"`
	BasePrice         float64          `json:"base_price"`
	FlightNumber      string           `json:"flight_number,omitempty"`
	TrainNumber       string           `json:"train_number,omitempty"`
	Notes             string           `json:"notes"`
}

// Result is the backend's record of a created order.
type Result struct {
	BookingReference string          `json:"booking_reference"`
	Booking          json.RawMessage `json:"booking,omitempty"`
}

type createResponse struct {
	Success bool    `json:"success"`
	Data    *Result `json:"data,omitempty"`
	Error   string  `json:"error,omitempty"`
}
