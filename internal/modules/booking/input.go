// README: Stage 1 form input, before coordinates are checked against the text.
package booking

import (
	"strings"

	"chauffeur/internal/types"
)

// LocationInput is a location field as the form submits it. GeocodedLabel is
// the suggestion label the coordinates were taken from.
type LocationInput struct {
	Text          string   `json:"text"`
	Lat           *float64 `json:"lat,omitempty"`
	Lon           *float64 `json:"lon,omitempty"`
	GeocodedLabel string   `json:"geocoded_label,omitempty"`
}

// Location keeps the coordinates only while the text still reads as the
// suggestion they came from. Any edit after picking a suggestion drops them.
func (in LocationInput) Location() types.Location {
	loc := types.Location{Text: in.Text, Lat: in.Lat, Lon: in.Lon}
	if !loc.HasCoordinates() {
		return loc.WithoutCoordinates()
	}
	if strings.TrimSpace(in.GeocodedLabel) != strings.TrimSpace(in.Text) {
		return loc.WithoutCoordinates()
	}
	return loc
}

type ItineraryInput struct {
	Pickup       LocationInput   `json:"pickup"`
	Dropoff      LocationInput   `json:"dropoff"`
	ExtraStops   []LocationInput `json:"extra_stops"`
	PickupDate   string          `json:"pickup_date"`
	PickupTime   string          `json:"pickup_time"`
	Passengers   int             `json:"passengers"`
	TravelType   TravelType      `json:"travel_type"`
	FlightNumber string          `json:"flight_number"`
	TrainNumber  string          `json:"train_number"`
	Terminal     string          `json:"terminal"`
	Notes        string          `json:"notes"`
	ServiceType  string          `json:"service_type"`
}

func (in ItineraryInput) Itinerary() Itinerary {
	var stops []types.Location
	for _, s := range in.ExtraStops {
		stops = append(stops, s.Location())
	}
	return Itinerary{
		Pickup:       in.Pickup.Location(),
		Dropoff:      in.Dropoff.Location(),
		ExtraStops:   stops,
		PickupDate:   in.PickupDate,
		PickupTime:   in.PickupTime,
		Passengers:   in.Passengers,
		TravelType:   in.TravelType,
		FlightNumber: in.FlightNumber,
		TrainNumber:  in.TrainNumber,
		Terminal:     in.Terminal,
		Notes:        in.Notes,
		ServiceType:  in.ServiceType,
	}
}
