// README: Assembles the order payload from the staged records and a payment confirmation.
package order

import (
	"fmt"
	"math"
	"strings"
	"time"

	"chauffeur/internal/modules/booking"
	"chauffeur/internal/types"
)

const notesSeparator = ". "

// Assemble is pure: identical inputs always yield an identical payload.
func Assemble(it booking.Itinerary, sel booking.VehicleSelection, c booking.ContactInfo, confirmationID string, loc *time.Location) (Payload, error) {
	pickupAt, err := PickupAt(it, loc)
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		CustomerFirstName: c.FirstName,
		CustomerLastName:  c.LastName,
		CustomerEmail:     c.Email,
		CustomerPhone:     c.Phone,
		ServiceType:       booking.CategoryFor(it.ServiceType),
		PickupLocation:    it.Pickup.Text,
		DropoffLocation:   it.Dropoff.Text,
		PickupDatetime:    pickupAt.UTC().Format(time.RFC3339),
		Passengers:        it.Passengers,
		BasePrice:         math.Round(sel.Price*100) / 100,
		FlightNumber:      it.FlightNumber,
		TrainNumber:       it.TrainNumber,
		Notes:             Notes(it, sel, c, confirmationID),
	}, nil
}

// PickupAt combines the itinerary's date and time in loc.
func PickupAt(it booking.Itinerary, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(booking.DateLayout+" "+booking.TimeLayout, it.PickupDate+" "+it.PickupTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: pickup date/time %q %q", ErrBadRequest, it.PickupDate, it.PickupTime)
	}
	return t, nil
}

// Notes folds everything the backend has no column for into one text, in a
// fixed order, skipping blank parts.
func Notes(it booking.Itinerary, sel booking.VehicleSelection, c booking.ContactInfo, confirmationID string) string {
	fragments := []string{
		labeled("Special requests", c.SpecialRequests),
		labeled("Notes", it.Notes),
		labeled("Terminal", it.Terminal),
		labeled("Extra stops", stopList(it.ExtraStops)),
		labeled("Service", serviceName(it.ServiceType)),
		labeled("Vehicle", sel.VehicleName),
		labeled("Distance", fmt.Sprintf("%.1f km", sel.DistanceKm)),
		labeled("Estimated duration", fmt.Sprintf("%d min", sel.DurationMin)),
		labeled("Payment confirmation", confirmationID),
	}
	out := fragments[:0]
	for _, f := range fragments {
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, notesSeparator)
}

func labeled(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func stopList(stops []types.Location) string {
	names := make([]string, 0, len(stops))
	for _, s := range stops {
		if t := strings.TrimSpace(s.Text); t != "" {
			names = append(names, t)
		}
	}
	return strings.Join(names, ", ")
}

func serviceName(id string) string {
	if s, ok := booking.LookupServiceType(id); ok {
		return s.Name
	}
	return id
}
