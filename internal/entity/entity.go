package entity

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/gophsync/internal/event"
	"github.com/iudanet/gophsync/internal/messaging"
	"github.com/iudanet/gophsync/internal/property"
	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/scheduler"
	"github.com/iudanet/gophsync/internal/session"
)

// State is the bootstrap state of an entity.
type State int

const (
	StateConstructed State = iota
	StateAwaitingSession
	StateAwaitingRecord
	StateReady
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateAwaitingSession:
		return "awaiting_session"
	case StateAwaitingRecord:
		return "awaiting_record"
	case StateReady:
		return "ready"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a new entity.
type Options struct {
	// Host is the attached application object. Required unless the id is custom.
	Host Host
	ID   NetworkIDOptions
	// Persistence of the record created by this entity.
	Persistence record.Persistence
	// AdoptionWindow overrides the runtime default when positive.
	AdoptionWindow time.Duration
	// SpawnedLocally creates the record without waiting for a remote one.
	SpawnedLocally bool
	// ClaimOnCreate makes the creator the initial owner.
	ClaimOnCreate bool
}

type ownershipRequest struct {
	onSuccess func()
	onError   func(error)
}

func (r ownershipRequest) succeed() {
	if r.onSuccess != nil {
		r.onSuccess()
	}
}

func (r ownershipRequest) fail(err error) {
	if r.onError != nil {
		r.onError(err)
	}
}

// Entity mirrors one application object into one session record.
type Entity struct {
	rt      *Runtime
	bus     *session.Bus
	sched   scheduler.Scheduler
	logger  *slog.Logger
	host    Host
	props   *property.Set
	channel *messaging.Channel
	opts    Options

	networkID string
	rec       record.Record
	owner     *record.Participant
	state     State

	queue      []ownershipRequest
	setupQueue []func()
	unsubs     []func()
	adoptTimer scheduler.Handle
	ticker     scheduler.Handle
	acquiring  bool

	ownerUpdated    event.Event[*record.Participant]
	localDestroyed  event.Event[*Entity]
	remoteDestroyed event.Event[*Entity]
	destroyed       event.Event[*Entity]
}

// NewEntity derives the network id, registers the entity and starts the
// bootstrap. The entity becomes ready asynchronously once its record is
// adopted or created.
func (r *Runtime) NewEntity(opts Options, fields ...property.Field) (*Entity, error) {
	id, err := opts.ID.Derive(opts.Host)
	if err != nil {
		return nil, err
	}

	e := &Entity{
		rt:        r,
		bus:       r.bus,
		sched:     r.sched,
		logger:    r.logger.With("network_id", id),
		host:      opts.Host,
		opts:      opts,
		networkID: id,
		props:     property.NewSet(r.bus, r.logger.With("network_id", id)),
		state:     StateConstructed,
	}
	for _, f := range fields {
		if err := e.props.Add(f); err != nil {
			return nil, err
		}
	}
	if err := r.register(e); err != nil {
		return nil, err
	}

	e.subscribe()
	e.channel = messaging.NewChannel(r.bus, id, e.logger)

	e.state = StateAwaitingSession
	e.bus.NotifyOnReady(e.onSessionReady)
	return e, nil
}

func (e *Entity) NetworkID() string { return e.networkID }

func (e *Entity) State() State { return e.state }

func (e *Entity) IsReady() bool { return e.state == StateReady }

func (e *Entity) IsDestroyed() bool { return e.state == StateDestroyed }

// Record returns the adopted record, nil before the entity is ready.
func (e *Entity) Record() record.Record { return e.rec }

func (e *Entity) Host() Host { return e.host }

func (e *Entity) Properties() *property.Set { return e.props }

// Owner returns a copy of the current owner, nil when unowned.
func (e *Entity) Owner() *record.Participant {
	if e.owner == nil {
		return nil
	}
	o := *e.owner
	return &o
}

// DoIOwnStore reports whether the local participant owns the record.
func (e *Entity) DoIOwnStore() bool {
	return e.rec != nil && e.bus.IsLocal(e.owner)
}

// IsStoreOwned reports whether anyone owns the record.
func (e *Entity) IsStoreOwned() bool {
	return e.owner != nil
}

// CanIModifyStore reports whether the local participant may write the record.
func (e *Entity) CanIModifyStore() bool {
	return e.rec != nil && (e.owner == nil || e.DoIOwnStore())
}

func (e *Entity) OnOwnerUpdated() *event.Event[*record.Participant] { return &e.ownerUpdated }
func (e *Entity) OnLocalDestroyed() *event.Event[*Entity]           { return &e.localDestroyed }
func (e *Entity) OnRemoteDestroyed() *event.Event[*Entity]          { return &e.remoteDestroyed }
func (e *Entity) OnDestroyed() *event.Event[*Entity]                { return &e.destroyed }

// OnSetupFinished calls cb once the entity is ready, immediately if it
// already is.
func (e *Entity) OnSetupFinished(cb func()) {
	switch e.state {
	case StateReady:
		cb()
	case StateDestroyed:
		e.logger.Error("Setup callback registered on a destroyed entity")
	default:
		e.setupQueue = append(e.setupQueue, cb)
	}
}

// AddProperty registers a field after construction. On a ready entity the
// field is pulled from the record when someone else owns it, otherwise it
// is pushed on the next frame.
func (e *Entity) AddProperty(f property.Field) error {
	if e.state == StateDestroyed {
		return ErrDestroyed
	}
	if err := e.props.Add(f); err != nil {
		return err
	}
	if e.state != StateReady {
		return nil
	}

	if !e.DoIOwnStore() && e.rec.Has(f.Key()) {
		if err := e.props.Pull(e.rec, f.Key(), record.UpdateInfo{}); err != nil {
			e.logger.Error("Failed to pull added property", "key", f.Key(), "error", err)
		}
		return nil
	}
	if e.CanIModifyStore() {
		f.MarkDirty()
	}
	return nil
}

// SendEvent broadcasts a keyed message to every copy of this entity.
func (e *Entity) SendEvent(key string, payload any, opts ...messaging.SendOption) error {
	if e.state != StateReady {
		e.logger.Error("Cannot send event before entity setup finished", "key", key, "state", e.state)
		return ErrNotReady
	}
	return e.channel.Send(key, payload, opts...)
}

// OnEvent is notified of events sent by other participants.
func (e *Entity) OnEvent() *messaging.Bus[messaging.NetworkMessage] { return e.channel.OnRemote() }

// OnAnyEvent is notified of every event, including our own.
func (e *Entity) OnAnyEvent() *messaging.Bus[messaging.NetworkMessage] { return e.channel.OnAny() }

// TryClaimOwnership acquires the record. It fails immediately when the
// entity is not ready and waits in the queue while someone else owns it.
func (e *Entity) TryClaimOwnership(onSuccess func(), onError func(error)) {
	req := ownershipRequest{onSuccess: onSuccess, onError: onError}
	switch {
	case e.state == StateDestroyed:
		req.fail(ErrDestroyed)
	case e.state != StateReady:
		req.fail(fmt.Errorf("claim ownership of %s: %w", e.networkID, ErrNotReady))
	default:
		e.requestOwnership(req)
	}
}

// RequestOwnership is like TryClaimOwnership but also queues while the
// entity is still bootstrapping.
func (e *Entity) RequestOwnership(onSuccess func(), onError func(error)) {
	req := ownershipRequest{onSuccess: onSuccess, onError: onError}
	switch {
	case e.state == StateDestroyed:
		req.fail(ErrDestroyed)
	case e.state != StateReady:
		e.queue = append(e.queue, req)
	default:
		e.requestOwnership(req)
	}
}

// TryRevokeOwnership releases local ownership.
func (e *Entity) TryRevokeOwnership(onSuccess func(), onError func(error)) {
	req := ownershipRequest{onSuccess: onSuccess, onError: onError}
	switch {
	case e.state == StateDestroyed:
		req.fail(ErrDestroyed)
	case e.state != StateReady:
		req.fail(fmt.Errorf("revoke ownership of %s: %w", e.networkID, ErrNotReady))
	case e.owner == nil:
		req.succeed()
	case !e.DoIOwnStore():
		req.fail(fmt.Errorf("revoke ownership of %s: %w", e.networkID, ErrNotOwner))
	default:
		e.bus.ClearOwnership(e.rec, func() {
			e.setOwner(nil)
			req.succeed()
		}, req.fail)
	}
}

func (e *Entity) requestOwnership(req ownershipRequest) {
	if e.DoIOwnStore() {
		req.succeed()
		return
	}
	e.queue = append(e.queue, req)
	if e.owner == nil {
		e.acquire()
	}
}

func (e *Entity) acquire() {
	if e.acquiring || e.rec == nil {
		return
	}
	e.acquiring = true
	e.bus.RequestOwnership(e.rec, func() {
		e.acquiring = false
		local := e.bus.LocalIdentity()
		e.setOwner(&local)
	}, func(err error) {
		e.acquiring = false
		if errors.Is(err, record.ErrNotOwner) {
			// кто-то успел раньше, ждём освобождения записи
			return
		}
		queue := e.queue
		e.queue = nil
		for _, req := range queue {
			req.fail(err)
		}
	})
}

// setOwner applies an ownership change and drains the request queue.
func (e *Entity) setOwner(owner *record.Participant) {
	if e.state == StateDestroyed {
		return
	}
	if (owner == nil && e.owner == nil) || owner.Is(e.owner) {
		return
	}
	if owner != nil {
		o := *owner
		owner = &o
	}
	e.owner = owner
	e.logger.Debug("Record owner changed", "owner", ownerID(owner))
	e.ownerUpdated.Trigger(e.Owner())
	e.drainQueue()
}

func (e *Entity) drainQueue() {
	if len(e.queue) == 0 {
		return
	}
	switch {
	case e.DoIOwnStore():
		queue := e.queue
		e.queue = nil
		for _, req := range queue {
			req.succeed()
		}
	case e.owner == nil:
		e.acquire()
	}
}

// Destroy deletes the record when allowed and tears the entity down.
func (e *Entity) Destroy() {
	if e.state == StateDestroyed {
		return
	}
	if e.CanIModifyStore() {
		e.bus.DeleteRecord(e.rec)
	}
	e.detach()
	e.localDestroyed.Trigger(e)
	e.destroyed.Trigger(e)
}

func (e *Entity) destroyRemote() {
	if e.state == StateDestroyed {
		return
	}
	e.detach()
	e.remoteDestroyed.Trigger(e)
	e.destroyed.Trigger(e)

	if d, ok := e.host.(Destroyer); ok {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("Host destroy panicked", "panic", r)
			}
		}()
		d.Destroy()
	}
}

// detach drops every subscription and timer. Idempotent.
func (e *Entity) detach() {
	if e.state == StateDestroyed {
		return
	}
	e.state = StateDestroyed
	if e.adoptTimer != nil {
		e.adoptTimer.Cancel()
		e.adoptTimer = nil
	}
	if e.ticker != nil {
		e.ticker.Cancel()
		e.ticker = nil
	}
	for _, unsub := range e.unsubs {
		unsub()
	}
	e.unsubs = nil
	e.channel.Close()
	e.queue = nil
	e.setupQueue = nil
	e.rt.unregister(e)
	e.logger.Debug("Entity detached")
}

func ownerID(p *record.Participant) string {
	if p == nil {
		return ""
	}
	return p.ConnectionID
}
