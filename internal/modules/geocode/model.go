// README: Geocoding suggestion types and provider contract.
package geocode

import (
	"context"
	"errors"
)

// MinQueryLength is the number of characters typed before a lookup fires.
const MinQueryLength = 3

var (
	ErrBadRequest = errors.New("bad request")
	ErrDisabled   = errors.New("geocoding disabled")
)

// Suggestion is one place candidate. Lat and Lon are decimal strings as
// returned by place-search APIs.
type Suggestion struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Class       string `json:"class,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Provider runs a free-text place search.
type Provider interface {
	Search(ctx context.Context, query string) ([]Suggestion, error)
}

// Result is what a Suggest call yields. Stale is set when a newer lookup for
// the same field (or a stage change) superseded this one; its suggestions are dropped.
type Result struct {
	Suggestions []Suggestion `json:"suggestions"`
	Stale       bool         `json:"stale"`
}

// placeClasses are the result classes kept for location fields.
var placeClasses = map[string]bool{
	"place":    true,
	"boundary": true,
	"highway":  true,
}

// Disabled is a Provider used when no geocoding backend is configured.
type Disabled struct{}

func (Disabled) Search(context.Context, string) ([]Suggestion, error) {
	return nil, ErrDisabled
}
