package trace

import (
	"context"
	"sync"

	"circulyte-backend/internal/models"
)

// Tracker holds the currently selected fiber pack and its trace. Selecting
// the pack that is already selected returns the held trace without fetching.
type Tracker struct {
	resolver *Resolver

	mu       sync.Mutex
	selected string
	current  *Trace
}

func NewTracker(r *Resolver) *Tracker {
	return &Tracker{resolver: r}
}

func (t *Tracker) Select(ctx context.Context, fp models.FiberPack) (*Trace, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil && t.selected == fp.ID {
		return t.current, nil
	}

	t.selected = fp.ID
	t.current = nil

	tr, err := t.resolver.Resolve(ctx, fp)
	if err != nil {
		return nil, err
	}
	t.current = tr
	return tr, nil
}

// Selected returns the selected pack id and its trace, nil when unresolved.
func (t *Tracker) Selected() (string, *Trace) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selected, t.current
}

// Registry keeps one Tracker per user.
type Registry struct {
	resolver *Resolver

	mu       sync.Mutex
	trackers map[string]*Tracker
}

func NewRegistry(r *Resolver) *Registry {
	return &Registry{resolver: r, trackers: make(map[string]*Tracker)}
}

func (r *Registry) For(userID string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trackers[userID]
	if !ok {
		t = NewTracker(r.resolver)
		r.trackers[userID] = t
	}
	return t
}

// Forget drops the user's tracker, if any.
func (r *Registry) Forget(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, userID)
}
