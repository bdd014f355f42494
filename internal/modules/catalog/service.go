// README: Catalog service serves the vehicle list, optionally refreshed from the store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

var ErrInvalidVehicle = errors.New("invalid vehicle class")

// Source loads vehicle classes from persistent storage.
type Source interface {
	LoadVehicles(ctx context.Context) ([]Vehicle, error)
}

type Service struct {
	source Source

	mu       sync.RWMutex
	vehicles []Vehicle
}

// NewService starts from DefaultVehicles. source may be nil.
func NewService(source Source) *Service {
	return &Service{source: source, vehicles: DefaultVehicles()}
}

// ListVehicles returns a copy of the catalog in display order.
func (s *Service) ListVehicles() []Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out
}

// Reload replaces the catalog with the source's vehicles. An empty result keeps
// the current list; a malformed entry rejects the whole reload.
func (s *Service) Reload(ctx context.Context) error {
	if s.source == nil {
		return nil
	}
	vehicles, err := s.source.LoadVehicles(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load vehicles: %w", err)
	}
	if len(vehicles) == 0 {
		log.Printf("[CATALOG] action=reload msg=no overrides, keeping %d default vehicles", len(s.ListVehicles()))
		return nil
	}
	for _, v := range vehicles {
		if err := validate(v); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.vehicles = vehicles
	s.mu.Unlock()
	log.Printf("[CATALOG] action=reload msg=loaded %d vehicles", len(vehicles))
	return nil
}

func validate(v Vehicle) error {
	switch {
	case v.ID == "" || v.Name == "":
		return fmt.Errorf("%w: missing id or name", ErrInvalidVehicle)
	case v.Capacity < 1:
		return fmt.Errorf("%w: %s capacity %d", ErrInvalidVehicle, v.ID, v.Capacity)
	case v.Base < 0 || v.PerKm < 0:
		return fmt.Errorf("%w: %s has a negative rate", ErrInvalidVehicle, v.ID)
	}
	return nil
}
