// Package entity binds application objects to session records: it runs the
// bootstrap state machine, arbitrates ownership and drives the per-frame
// push and pull of properties.
package entity

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iudanet/gophsync/internal/scheduler"
	"github.com/iudanet/gophsync/internal/session"
)

// DefaultAdoptionWindow is how long an entity waits for a remote creation
// notification before creating its record itself.
const DefaultAdoptionWindow = 100 * time.Millisecond

// Runtime owns the entity lookup for one session.
type Runtime struct {
	bus      *session.Bus
	sched    scheduler.Scheduler
	logger   *slog.Logger
	entities map[string]*Entity

	adoptionWindow time.Duration
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithAdoptionWindow overrides DefaultAdoptionWindow for entities that do
// not set their own.
func WithAdoptionWindow(d time.Duration) RuntimeOption {
	return func(r *Runtime) {
		if d > 0 {
			r.adoptionWindow = d
		}
	}
}

// NewRuntime creates a runtime over bus. All entity callbacks run on sched.
func NewRuntime(bus *session.Bus, sched scheduler.Scheduler, logger *slog.Logger, opts ...RuntimeOption) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runtime{
		bus:            bus,
		sched:          sched,
		logger:         logger,
		entities:       make(map[string]*Entity),
		adoptionWindow: DefaultAdoptionWindow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bus returns the session bus the runtime is bound to.
func (r *Runtime) Bus() *session.Bus { return r.bus }

// Lookup returns the live entity with the given network id.
func (r *Runtime) Lookup(id string) (*Entity, bool) {
	e, ok := r.entities[id]
	return e, ok
}

// Entities returns live entities ordered by network id.
func (r *Runtime) Entities() []*Entity {
	out := make([]*Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].networkID < out[j].networkID })
	return out
}

// Close detaches every entity. Records are left in place.
func (r *Runtime) Close() {
	for _, e := range r.Entities() {
		e.detach()
	}
	r.logger.Info("Entity runtime closed")
}

func (r *Runtime) register(e *Entity) error {
	if _, ok := r.entities[e.networkID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEntity, e.networkID)
	}
	r.entities[e.networkID] = e
	return nil
}

func (r *Runtime) unregister(e *Entity) {
	if cur, ok := r.entities[e.networkID]; ok && cur == e {
		delete(r.entities, e.networkID)
	}
}
