// README: ItineraryStore keeps the staged booking records of each session.
package staging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"chauffeur/internal/modules/booking"
	"chauffeur/internal/types"
)

const keyPrefix = "booking:%s:%s"

type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// SetItinerary overwrites the itinerary and clears the vehicle selection and
// contact, since any quoted price may no longer hold. Downstream slots are
// cleared first so a failed write never leaves a stale selection behind.
func (s *Store) SetItinerary(ctx context.Context, session types.ID, it booking.Itinerary) error {
	if err := s.kv.Delete(ctx, key(session, slotVehicle), key(session, slotContact)); err != nil {
		return fmt.Errorf("staging: invalidate downstream: %w", err)
	}
	return s.put(ctx, session, slotItinerary, it)
}

func (s *Store) Itinerary(ctx context.Context, session types.ID) (*booking.Itinerary, error) {
	var it booking.Itinerary
	return fetch(ctx, s, session, slotItinerary, &it)
}

func (s *Store) SetVehicle(ctx context.Context, session types.ID, v booking.VehicleSelection) error {
	return s.put(ctx, session, slotVehicle, v)
}

func (s *Store) Vehicle(ctx context.Context, session types.ID) (*booking.VehicleSelection, error) {
	var v booking.VehicleSelection
	return fetch(ctx, s, session, slotVehicle, &v)
}

func (s *Store) SetContact(ctx context.Context, session types.ID, c booking.ContactInfo) error {
	return s.put(ctx, session, slotContact, c)
}

func (s *Store) Contact(ctx context.Context, session types.ID) (*booking.ContactInfo, error) {
	var c booking.ContactInfo
	return fetch(ctx, s, session, slotContact, &c)
}

func (s *Store) SetPayment(ctx context.Context, session types.ID, p CapturedPayment) error {
	return s.put(ctx, session, slotPayment, p)
}

func (s *Store) Payment(ctx context.Context, session types.ID) (*CapturedPayment, error) {
	var p CapturedPayment
	return fetch(ctx, s, session, slotPayment, &p)
}

func (s *Store) SetConfirmation(ctx context.Context, session types.ID, c Confirmation) error {
	return s.put(ctx, session, slotConfirmation, c)
}

func (s *Store) Confirmation(ctx context.Context, session types.ID) (*Confirmation, error) {
	var c Confirmation
	return fetch(ctx, s, session, slotConfirmation, &c)
}

// ClearAll empties the itinerary, vehicle, contact and payment slots in one
// delete. The confirmation slot survives so a completed booking can still be shown.
func (s *Store) ClearAll(ctx context.Context, session types.ID) error {
	return s.kv.Delete(ctx,
		key(session, slotItinerary),
		key(session, slotVehicle),
		key(session, slotContact),
		key(session, slotPayment),
	)
}

// Reset drops every slot, including the confirmation.
func (s *Store) Reset(ctx context.Context, session types.ID) error {
	return s.kv.Delete(ctx,
		key(session, slotItinerary),
		key(session, slotVehicle),
		key(session, slotContact),
		key(session, slotPayment),
		key(session, slotConfirmation),
	)
}

func (s *Store) Load(ctx context.Context, session types.ID) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Itinerary, err = s.Itinerary(ctx, session); err != nil {
		return Snapshot{}, err
	}
	if snap.Vehicle, err = s.Vehicle(ctx, session); err != nil {
		return Snapshot{}, err
	}
	if snap.Contact, err = s.Contact(ctx, session); err != nil {
		return Snapshot{}, err
	}
	if snap.Payment, err = s.Payment(ctx, session); err != nil {
		return Snapshot{}, err
	}
	if snap.Confirmation, err = s.Confirmation(ctx, session); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) put(ctx context.Context, session types.ID, sl slot, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("staging: encode %s: %w", sl, err)
	}
	if err := s.kv.Set(ctx, key(session, sl), b); err != nil {
		return fmt.Errorf("staging: write %s: %w", sl, err)
	}
	return nil
}

// fetch decodes a slot into dst. A missing or undecodable slot reads as absent.
func fetch[T any](ctx context.Context, s *Store, session types.ID, sl slot, dst *T) (*T, error) {
	b, ok, err := s.kv.Get(ctx, key(session, sl))
	if err != nil {
		return nil, fmt.Errorf("staging: read %s: %w", sl, err)
	}
	if !ok {
		return nil, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		log.Printf("[STAGING] action=read session=%s slot=%s msg=dropping undecodable record: %v", session, sl, err)
		return nil, nil
	}
	return dst, nil
}

func key(session types.ID, sl slot) string {
	return fmt.Sprintf(keyPrefix, string(session), string(sl))
}
