// README: Google Geocoding adapter; turns Google results into place suggestions.
package maps

import (
	"context"
	"fmt"
	"strconv"

	"googlemaps.github.io/maps"

	"chauffeur/internal/modules/geocode"
)

// googleClasses maps Google result types onto the place-search class
// vocabulary the booking flow filters on.
var googleClasses = map[string]string{
	"locality":                    "place",
	"sublocality":                 "place",
	"postal_town":                 "place",
	"neighborhood":                "place",
	"colloquial_area":             "place",
	"postal_code":                 "place",
	"street_address":              "place",
	"premise":                     "place",
	"airport":                     "place",
	"train_station":               "place",
	"transit_station":             "place",
	"administrative_area_level_1": "boundary",
	"administrative_area_level_2": "boundary",
	"administrative_area_level_3": "boundary",
	"administrative_area_level_4": "boundary",
	"country":                     "boundary",
	"route":                       "highway",
	"intersection":                "highway",
	"point_of_interest":           "amenity",
	"establishment":               "amenity",
	"lodging":                     "tourism",
}

// GeocodeService resolves free text to coordinates with the Google Geocoding API.
type GeocodeService struct {
	client   *maps.Client
	language string
	region   string
}

// NewGeocodeService wraps an existing maps client. language and region bias
// results (e.g. "fr", "FR").
func NewGeocodeService(client *maps.Client, language, region string) *GeocodeService {
	return &GeocodeService{client: client, language: language, region: region}
}

// Search implements geocode.Provider.
func (s *GeocodeService) Search(ctx context.Context, query string) ([]geocode.Suggestion, error) {
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  query,
		Language: s.language,
		Region:   s.region,
	})
	if err != nil {
		return nil, fmt.Errorf("geocoding api error: %w", err)
	}

	out := make([]geocode.Suggestion, 0, len(results))
	for _, r := range results {
		class, typ := classify(r.Types)
		out = append(out, geocode.Suggestion{
			ID:          r.PlaceID,
			DisplayName: r.FormattedAddress,
			Lat:         strconv.FormatFloat(r.Geometry.Location.Lat, 'f', 7, 64),
			Lon:         strconv.FormatFloat(r.Geometry.Location.Lng, 'f', 7, 64),
			Class:       class,
			Type:        typ,
		})
	}
	return out, nil
}

// classRank orders classes so a place-like type wins over a generic one,
// whatever order Google lists the types in.
var classRank = map[string]int{
	"place":    0,
	"boundary": 1,
	"highway":  2,
	"tourism":  3,
	"amenity":  4,
}

// classify returns the best ranked class among the recognised Google types,
// and the type it came from. Ties go to the earlier type.
func classify(types []string) (class, typ string) {
	best := -1
	for _, t := range types {
		c, ok := googleClasses[t]
		if !ok {
			continue
		}
		if best < 0 || classRank[c] < best {
			best, class, typ = classRank[c], c, t
		}
	}
	if best >= 0 {
		return class, typ
	}
	if len(types) > 0 {
		return "", types[0]
	}
	return "", ""
}
