// README: Great-circle distance between geocoded locations.
package pricing

import (
	"math"

	"chauffeur/internal/types"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between a and b. If either side has
// no coordinates the result is 0, which prices the trip at base fare.
func DistanceKm(a, b types.Location) float64 {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return 0
	}
	return haversineKm(*a.Lat, *a.Lon, *b.Lat, *b.Lon)
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
