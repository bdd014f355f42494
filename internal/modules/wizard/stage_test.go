package wizard

import (
	"strings"
	"testing"

	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/staging"
	"chauffeur/internal/types"
)

func TestResolve(t *testing.T) {
	valid := booking.Itinerary{
		Pickup:     types.Location{Text: "A"},
		Dropoff:    types.Location{Text: "B"},
		PickupDate: "2025-06-01",
		PickupTime: "10:00",
		Passengers: 2,
		TravelType: booking.TravelNone,
	}
	incomplete := valid
	incomplete.TravelType = booking.TravelFlight
	sel := &booking.VehicleSelection{VehicleID: "sedan"}

	tests := []struct {
		name   string
		snap   staging.Snapshot
		target Stage
		want   Stage
	}{
		{"empty session to vehicle", staging.Snapshot{}, StageVehicle, StageItinerary},
		{"empty session to contact", staging.Snapshot{}, StageContact, StageItinerary},
		{"empty session to completed", staging.Snapshot{}, StageCompleted, StageItinerary},
		{"incomplete itinerary to vehicle", staging.Snapshot{Itinerary: &incomplete}, StageVehicle, StageItinerary},
		{"itinerary to vehicle", staging.Snapshot{Itinerary: &valid}, StageVehicle, StageVehicle},
		{"itinerary to contact", staging.Snapshot{Itinerary: &valid}, StageContact, StageVehicle},
		{"selection without itinerary", staging.Snapshot{Vehicle: sel}, StageContact, StageItinerary},
		{"full to contact", staging.Snapshot{Itinerary: &valid, Vehicle: sel}, StageContact, StageContact},
		{"full to completed", staging.Snapshot{Itinerary: &valid, Vehicle: sel}, StageCompleted, StageContact},
		{"back to itinerary", staging.Snapshot{Itinerary: &valid, Vehicle: sel}, StageItinerary, StageItinerary},
		{"back to vehicle keeps selection", staging.Snapshot{Itinerary: &valid, Vehicle: sel}, StageVehicle, StageVehicle},
		{"confirmed", staging.Snapshot{Confirmation: &staging.Confirmation{BookingReference: "CH-1"}}, StageCompleted, StageCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.target, tt.snap); got != tt.want {
				t.Errorf("Resolve(%s) = %s, want %s", tt.target, got, tt.want)
			}
		})
	}
}

func TestCurrent(t *testing.T) {
	valid := booking.Itinerary{
		Pickup:     types.Location{Text: "A"},
		Dropoff:    types.Location{Text: "B"},
		PickupDate: "2025-06-01",
		PickupTime: "10:00",
		Passengers: 1,
	}
	sel := &booking.VehicleSelection{VehicleID: "van"}
	conf := &staging.Confirmation{BookingReference: "CH-1"}

	tests := []struct {
		name string
		snap staging.Snapshot
		want Stage
	}{
		{"new session", staging.Snapshot{}, StageItinerary},
		{"itinerary saved", staging.Snapshot{Itinerary: &valid}, StageVehicle},
		{"vehicle chosen", staging.Snapshot{Itinerary: &valid, Vehicle: sel}, StageContact},
		{"payment awaiting order", staging.Snapshot{Itinerary: &valid, Vehicle: sel, Payment: &staging.CapturedPayment{ConfirmationID: "pi_1"}}, StageContact},
		{"completed", staging.Snapshot{Confirmation: conf}, StageCompleted},
		{"next booking started", staging.Snapshot{Itinerary: &valid, Confirmation: conf}, StageVehicle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Current(tt.snap); got != tt.want {
				t.Errorf("Current() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseStage(t *testing.T) {
	for _, s := range []string{"itinerary", "vehicle", "contact", "completed"} {
		if st, ok := ParseStage(s); !ok || string(st) != s {
			t.Errorf("ParseStage(%q) = %q, %t", s, st, ok)
		}
	}
	if _, ok := ParseStage("payment"); ok {
		t.Error("ParseStage(payment) accepted")
	}
}

func TestNewBookingReference(t *testing.T) {
	a, b := NewBookingReference(), NewBookingReference()
	if a == b {
		t.Fatalf("references repeat: %q", a)
	}
	if !strings.HasPrefix(a, "BK-") || len(a) != len("BK-")+32 {
		t.Errorf("NewBookingReference() = %q", a)
	}
	if strings.ToUpper(a) != a {
		t.Errorf("NewBookingReference() = %q, want upper case", a)
	}
}
