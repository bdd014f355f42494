// README: Quote and estimate definitions.
package pricing

import "chauffeur/internal/modules/catalog"

const (
	// averageSpeedKmh is the flat speed used for trip duration estimates.
	averageSpeedKmh = 40.0
	// minDurationMin covers dispatch and arrival on very short trips.
	minDurationMin = 10
)

// VehicleQuote is the price of one vehicle for a trip.
type VehicleQuote struct {
	Vehicle catalog.Vehicle `json:"vehicle"`
	Price   float64         `json:"price"`
}

// Estimate is the Stage 2 view of a trip: one distance, one duration, and the
// quotes of every vehicle that can carry the party.
type Estimate struct {
	DistanceKm  float64        `json:"distance_km"`
	DurationMin int            `json:"duration_min"`
	Quotes      []VehicleQuote `json:"quotes"`
}
