// README: Service catalog and its mapping to the backend's order categories.
package booking

// Category is the coarse service classification the order backend accepts.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryAirport  Category = "airport"
	CategoryBusiness Category = "business"
	CategoryEvent    Category = "event"
)

type ServiceType struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

var serviceTypes = []ServiceType{
	{ID: "airport-transfer", Name: "Airport transfer", Category: CategoryAirport},
	{ID: "station-transfer", Name: "Train station transfer", Category: CategoryStandard},
	{ID: "business-travel", Name: "Business travel", Category: CategoryBusiness},
	{ID: "roadshow", Name: "Roadshow", Category: CategoryBusiness},
	{ID: "corporate-event", Name: "Corporate event", Category: CategoryEvent},
	{ID: "wedding", Name: "Wedding", Category: CategoryEvent},
	{ID: "city-tour", Name: "City tour", Category: CategoryStandard},
	{ID: "long-distance", Name: "Long distance", Category: CategoryStandard},
	{ID: "hourly", Name: "Chauffeur by the hour", Category: CategoryStandard},
}

// ServiceTypes returns the offered services in display order.
func ServiceTypes() []ServiceType {
	out := make([]ServiceType, len(serviceTypes))
	copy(out, serviceTypes)
	return out
}

func LookupServiceType(id string) (ServiceType, bool) {
	for _, s := range serviceTypes {
		if s.ID == id {
			return s, true
		}
	}
	return ServiceType{}, false
}

// CategoryFor maps a service tag to its backend category; unknown or empty
// tags fall back to CategoryStandard.
func CategoryFor(id string) Category {
	if s, ok := LookupServiceType(id); ok {
		return s.Category
	}
	return CategoryStandard
}
