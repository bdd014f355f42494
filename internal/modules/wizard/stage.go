// README: Booking stages and the rules for entering them.
package wizard

import (
	"chauffeur/internal/modules/booking"
	"chauffeur/internal/modules/staging"
)

type Stage string

const (
	StageItinerary Stage = "itinerary"
	StageVehicle   Stage = "vehicle"
	StageContact   Stage = "contact"
	StageCompleted Stage = "completed"
)

var stages = []Stage{StageItinerary, StageVehicle, StageContact, StageCompleted}

func ParseStage(s string) (Stage, bool) {
	for _, st := range stages {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s Stage) previous() Stage {
	for i, st := range stages {
		if st == s && i > 0 {
			return stages[i-1]
		}
	}
	return StageItinerary
}

// CanEnter reports whether every gate before stage has been passed.
func CanEnter(stage Stage, snap staging.Snapshot) bool {
	switch stage {
	case StageItinerary:
		return true
	case StageVehicle:
		return snap.Itinerary != nil && booking.ValidateItinerary(*snap.Itinerary) == nil
	case StageContact:
		return CanEnter(StageVehicle, snap) && snap.Vehicle != nil
	case StageCompleted:
		return snap.Confirmation != nil
	default:
		return false
	}
}

// Resolve returns target when it can be entered, otherwise the latest stage
// before it that can. Backward moves always succeed.
func Resolve(target Stage, snap staging.Snapshot) Stage {
	st := target
	for st != StageItinerary && !CanEnter(st, snap) {
		st = st.previous()
	}
	return st
}

// Current is where a returning session resumes.
func Current(snap staging.Snapshot) Stage {
	switch {
	case snap.Payment != nil:
		return StageContact
	case snap.Itinerary == nil && snap.Confirmation != nil:
		return StageCompleted
	case !CanEnter(StageVehicle, snap):
		return StageItinerary
	case snap.Vehicle == nil:
		return StageVehicle
	default:
		return StageContact
	}
}
