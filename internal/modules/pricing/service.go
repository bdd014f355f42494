// README: Pricing service computes per-vehicle quotes for a trip.
package pricing

import (
	"math"

	"chauffeur/internal/modules/catalog"
	"chauffeur/internal/types"
)

// Catalog lists the vehicles that can be quoted.
type Catalog interface {
	ListVehicles() []catalog.Vehicle
}

type Service struct {
	catalog Catalog
}

func NewService(c Catalog) *Service {
	return &Service{catalog: c}
}

// Estimate prices the pickup→dropoff leg for every vehicle that seats passengers.
// Extra stops are not part of the distance.
func (s *Service) Estimate(pickup, dropoff types.Location, passengers int) Estimate {
	d := DistanceKm(pickup, dropoff)
	return Estimate{
		DistanceKm:  d,
		DurationMin: DurationMin(d),
		Quotes:      Quote(s.catalog.ListVehicles(), d, passengers),
	}
}

// Quote prices each vehicle with capacity >= passengers, in catalog order.
// The price never drops below the vehicle's base fare.
func Quote(vehicles []catalog.Vehicle, distanceKm float64, passengers int) []VehicleQuote {
	out := make([]VehicleQuote, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Capacity < passengers {
			continue
		}
		out = append(out, VehicleQuote{
			Vehicle: v,
			Price:   math.Max(v.Base, v.Base+distanceKm*v.PerKm),
		})
	}
	return out
}

// DurationMin estimates driving time at a flat average speed, floored at minDurationMin.
func DurationMin(distanceKm float64) int {
	m := int(math.Round(distanceKm / averageSpeedKmh * 60))
	if m < minDurationMin {
		return minDurationMin
	}
	return m
}
