// README: Google Maps client initialization.
package infra

import (
	"fmt"

	"googlemaps.github.io/maps"
)

func NewMapsClient(apiKey string) (*maps.Client, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return client, nil
}
