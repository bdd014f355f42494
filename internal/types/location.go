// README: Shared value types used across modules (IDs, locations, money).
package types

type ID string

// Location is a free-form place label. Lat/Lon are only set when the label was
// resolved through a geocoding suggestion.
type Location struct {
	Text string   `json:"text"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// NewLocation returns a geocoded location.
func NewLocation(text string, lat, lon float64) Location {
	return Location{Text: text, Lat: &lat, Lon: &lon}
}

func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// WithoutCoordinates drops the geocode, keeping only the label.
func (l Location) WithoutCoordinates() Location {
	return Location{Text: l.Text}
}
