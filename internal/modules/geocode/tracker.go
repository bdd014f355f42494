// README: Tracks in-flight lookups so only the latest input per field is applied.
package geocode

import (
	"context"
	"sync"

	"chauffeur/internal/types"
)

type fieldKey struct {
	session types.ID
	field   string
}

type lookup struct {
	id     uint64
	cancel context.CancelFunc
}

type tracker struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[fieldKey]lookup
}

func newTracker() *tracker {
	return &tracker{inflight: make(map[fieldKey]lookup)}
}

// begin registers a lookup for k, cancelling whatever was in flight for it.
func (t *tracker) begin(parent context.Context, k fieldKey) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.inflight[k]; ok {
		prev.cancel()
	}
	t.seq++
	t.inflight[k] = lookup{id: t.seq, cancel: cancel}
	return ctx, t.seq
}

// finish reports whether lookup id is still the current one for k and releases it.
func (t *tracker) finish(k fieldKey, id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.inflight[k]
	if !ok || cur.id != id {
		return false
	}
	cur.cancel()
	delete(t.inflight, k)
	return true
}

// supersede cancels the in-flight lookup for k without starting a new one.
func (t *tracker) supersede(k fieldKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.inflight[k]; ok {
		prev.cancel()
		delete(t.inflight, k)
	}
}

// invalidate cancels every in-flight lookup of session.
func (t *tracker) invalidate(session types.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, l := range t.inflight {
		if k.session == session {
			l.cancel()
			delete(t.inflight, k)
		}
	}
}

func (t *tracker) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}
