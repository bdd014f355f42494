// README: Builds the payment request from the staged booking.
package payment

import (
	"strconv"

	"chauffeur/internal/modules/booking"
	"chauffeur/internal/types"
)

// NewRequest charges the frozen vehicle price in minor units.
func NewRequest(it booking.Itinerary, sel booking.VehicleSelection, c booking.ContactInfo, reference, currency string) Request {
	return Request{
		Amount: types.MoneyFromMajor(sel.Price, currency),
		Customer: Customer{
			Name:  c.FullName(),
			Email: c.Email,
			Phone: c.Phone,
		},
		BookingReference: reference,
		Metadata: map[string]string{
			"vehicle_id":   sel.VehicleID,
			"pickup":       it.Pickup.Text,
			"dropoff":      it.Dropoff.Text,
			"pickup_date":  it.PickupDate,
			"pickup_time":  it.PickupTime,
			"passengers":   strconv.Itoa(it.Passengers),
			"distance_km":  strconv.FormatFloat(sel.DistanceKm, 'f', 1, 64),
			"duration_min": strconv.Itoa(sel.DurationMin),
		},
	}
}
