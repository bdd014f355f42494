// README: Vehicle classes offered for booking.
package catalog

// Vehicle is one bookable vehicle class. Base and PerKm are in major currency units.
type Vehicle struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	Base        float64 `json:"base"`
	PerKm       float64 `json:"per_km"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
}

// DefaultVehicles is the fleet used when no overrides are configured.
func DefaultVehicles() []Vehicle {
	return []Vehicle{
		{
			ID:          "sedan",
			Name:        "Business Sedan",
			Capacity:    3,
			Base:        40,
			PerKm:       2.4,
			Description: "Mercedes E-Class or similar, 3 passengers, 3 suitcases",
			Image:       "/images/fleet/sedan.jpg",
		},
		{
			ID:          "premium-sedan",
			Name:        "Premium Sedan",
			Capacity:    3,
			Base:        60,
			PerKm:       3.2,
			Description: "Mercedes S-Class or similar, 3 passengers, 2 suitcases",
			Image:       "/images/fleet/premium-sedan.jpg",
		},
		{
			ID:          "van",
			Name:        "Van",
			Capacity:    7,
			Base:        70,
			PerKm:       3.0,
			Description: "Mercedes V-Class or similar, 7 passengers, 7 suitcases",
			Image:       "/images/fleet/van.jpg",
		},
	}
}
