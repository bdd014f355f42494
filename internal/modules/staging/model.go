// README: Slot names and the records that only the staging layer owns.
package staging

import (
	"time"

	"chauffeur/internal/modules/booking"
)

type slot string

const (
	slotItinerary    slot = "itinerary"
	slotVehicle      slot = "vehicle"
	slotContact      slot = "contact"
	slotPayment      slot = "payment"
	slotConfirmation slot = "confirmation"
)

// CapturedPayment records a successful payment whose order is not recorded yet.
type CapturedPayment struct {
	ConfirmationID   string    `json:"confirmation_id"`
	BookingReference string    `json:"booking_reference"`
	CapturedAt       time.Time `json:"captured_at"`
	LastError        string    `json:"last_error,omitempty"`
}

// Confirmation is the backend's answer to a completed booking, kept for display.
type Confirmation struct {
	BookingReference      string    `json:"booking_reference"`
	PaymentConfirmationID string    `json:"payment_confirmation_id"`
	CompletedAt           time.Time `json:"completed_at"`
}

// Snapshot is every slot of one session, read together.
type Snapshot struct {
	Itinerary    *booking.Itinerary        `json:"itinerary,omitempty"`
	Vehicle      *booking.VehicleSelection `json:"vehicle,omitempty"`
	Contact      *booking.ContactInfo      `json:"contact,omitempty"`
	Payment      *CapturedPayment          `json:"payment,omitempty"`
	Confirmation *Confirmation             `json:"confirmation,omitempty"`
}
