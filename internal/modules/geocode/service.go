// README: Geocode service turns typed text into place suggestions for one field.
package geocode

import (
	"context"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"chauffeur/internal/types"
)

var fieldPattern = regexp.MustCompile(`^(pickup|dropoff|stop-[0-9]{1,2})$`)

type Service struct {
	provider Provider
	timeout  time.Duration
	tracker  *tracker
}

func NewService(provider Provider, timeout time.Duration) *Service {
	if provider == nil {
		provider = Disabled{}
	}
	return &Service{provider: provider, timeout: timeout, tracker: newTracker()}
}

// ValidField reports whether field names a location input: pickup, dropoff or stop-N.
func ValidField(field string) bool {
	return fieldPattern.MatchString(field)
}

// Suggest looks up query for one location field of a session. Short queries
// return nothing, provider failures return an empty list, and a lookup that
// was superseded before it resolved comes back Stale.
func (s *Service) Suggest(ctx context.Context, session types.ID, field, query string) (Result, error) {
	if session == "" || !ValidField(field) {
		return Result{}, ErrBadRequest
	}
	k := fieldKey{session: session, field: field}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		s.tracker.supersede(k)
		return Result{Suggestions: []Suggestion{}}, nil
	}

	lctx, id := s.tracker.begin(ctx, k)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(lctx, s.timeout)
		defer cancel()
	}

	found, err := s.provider.Search(lctx, query)
	if !s.tracker.finish(k, id) {
		return Result{Suggestions: []Suggestion{}, Stale: true}, nil
	}
	if err != nil {
		log.Printf("[GEOCODE] action=search session=%s field=%s msg=lookup failed: %v", session, field, err)
		return Result{Suggestions: []Suggestion{}}, nil
	}
	return Result{Suggestions: filterPlaces(found)}, nil
}

// Invalidate drops every pending lookup of session; called on stage navigation.
func (s *Service) Invalidate(session types.ID) {
	s.tracker.invalidate(session)
}

func filterPlaces(in []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(in))
	for _, sg := range in {
		if placeClasses[sg.Class] {
			out = append(out, sg)
		}
	}
	return out
}
