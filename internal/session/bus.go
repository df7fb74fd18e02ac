// Package session is the process-wide façade over the external transport.
// It tracks connection state, participants and known records, and exposes
// server time and the local identity to the rest of the module.
package session

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/iudanet/gophsync/internal/event"
	"github.com/iudanet/gophsync/internal/record"
)

// RecordEvent is published when a record is created or deleted.
type RecordEvent struct {
	Record record.Record
	Info   record.UpdateInfo
}

// RecordUpdate is published for every changed key.
type RecordUpdate struct {
	Record record.Record
	Key    string
	Info   record.UpdateInfo
}

// OwnershipChange is published when a record owner changes. Owner is nil
// when the record became unowned.
type OwnershipChange struct {
	Record record.Record
	Owner  *record.Participant
}

// Message is a raw payload received on the shared message channel.
type Message struct {
	Sender record.Participant
	Data   []byte
}

// Bus wraps a Transport and keeps the session bookkeeping.
type Bus struct {
	transport Transport
	logger    *slog.Logger

	records    map[string]record.Record
	users      map[string]record.Participant
	readyQueue []func()
	local      record.Participant
	host       record.Participant

	recordCreated    event.Event[RecordEvent]
	recordUpdated    event.Event[RecordUpdate]
	recordDeleted    event.Event[RecordEvent]
	ownershipChanged event.Event[OwnershipChange]
	messageReceived  event.Event[Message]
	userJoined       event.Event[record.Participant]
	userLeft         event.Event[record.Participant]
	hostUpdated      event.Event[record.Participant]
	disconnected     event.Event[error]

	started bool
	ready   bool
}

// NewBus creates a session bus over transport.
func NewBus(transport Transport, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		transport: transport,
		logger:    logger,
		records:   make(map[string]record.Record),
		users:     make(map[string]record.Participant),
	}
}

// Start connects the transport. Calling it twice is a misuse and a no-op.
func (b *Bus) Start() error {
	if b.started {
		b.logger.Error("Session bus already started, ignoring second Start call")
		return ErrAlreadyStarted
	}
	b.started = true
	b.transport.Start((*listener)(b))
	return nil
}

// NotifyOnReady calls cb once the session is connected.
// If already connected cb runs immediately.
func (b *Bus) NotifyOnReady(cb func()) {
	if b.ready {
		cb()
		return
	}
	b.readyQueue = append(b.readyQueue, cb)
}

// IsReady reports whether the session is connected.
func (b *Bus) IsReady() bool { return b.ready }

// ServerTime returns the shared session clock in seconds.
func (b *Bus) ServerTime() float64 { return b.transport.ServerTime() }

// LocalIdentity returns the local participant. Empty until ready.
func (b *Bus) LocalIdentity() record.Participant { return b.local }

// IsLocal reports whether p is the local participant.
func (b *Bus) IsLocal(p *record.Participant) bool {
	if !b.ready {
		return false
	}
	return p.Is(&b.local)
}

// Host returns the current session host.
func (b *Bus) Host() record.Participant { return b.host }

// IsHost reports whether the local participant hosts the session.
func (b *Bus) IsHost() bool {
	return b.ready && b.host.ConnectionID == b.local.ConnectionID
}

// Users returns known participants ordered by connection id.
func (b *Bus) Users() []record.Participant {
	users := make([]record.Participant, 0, len(b.users))
	for _, u := range b.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ConnectionID < users[j].ConnectionID })
	return users
}

// LookupRecord returns a known record by network id.
func (b *Bus) LookupRecord(id string) (record.Record, bool) {
	rec, ok := b.records[id]
	return rec, ok
}

// Records returns all known records ordered by id.
func (b *Bus) Records() []record.Record {
	recs := make([]record.Record, 0, len(b.records))
	for _, r := range b.records {
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID() < recs[j].ID() })
	return recs
}

// CreateRecord asks the transport to create a record.
// Errors are logged and passed to onError when it is not nil.
func (b *Bus) CreateRecord(opts record.CreateOptions, onSuccess func(record.Record), onError func(error)) {
	fail := b.errorReporter("Failed to create record", opts.ID, onError)

	if !b.ready {
		fail(fmt.Errorf("create record %s: %w", opts.ID, ErrNotReady))
		return
	}

	b.transport.CreateRecord(opts, func(rec record.Record) {
		b.registerRecord(rec)
		if onSuccess != nil {
			onSuccess(rec)
		}
	}, fail)
}

// DeleteRecord asks the transport to delete rec.
func (b *Bus) DeleteRecord(rec record.Record) {
	if !b.ready {
		b.logger.Error("Cannot delete record before session is ready", "network_id", rec.ID())
		return
	}
	b.transport.DeleteRecord(rec)
}

// RequestOwnership asks the transport to make the local participant the owner.
func (b *Bus) RequestOwnership(rec record.Record, onSuccess func(), onError func(error)) {
	fail := b.errorReporter("Failed to request ownership", rec.ID(), onError)
	if !b.ready {
		fail(fmt.Errorf("request ownership of %s: %w", rec.ID(), ErrNotReady))
		return
	}
	b.transport.RequestOwnership(rec, orNoop(onSuccess), fail)
}

// ClearOwnership asks the transport to release local ownership.
func (b *Bus) ClearOwnership(rec record.Record, onSuccess func(), onError func(error)) {
	fail := b.errorReporter("Failed to clear ownership", rec.ID(), onError)
	if !b.ready {
		fail(fmt.Errorf("clear ownership of %s: %w", rec.ID(), ErrNotReady))
		return
	}
	b.transport.ClearOwnership(rec, orNoop(onSuccess), fail)
}

// SendMessage broadcasts a raw payload.
func (b *Bus) SendMessage(data []byte) error {
	if !b.ready {
		b.logger.Error("Cannot send message before session is ready")
		return ErrNotReady
	}
	b.transport.SendMessage(data)
	return nil
}

func (b *Bus) RecordCreated() *event.Event[RecordEvent]        { return &b.recordCreated }
func (b *Bus) RecordUpdated() *event.Event[RecordUpdate]       { return &b.recordUpdated }
func (b *Bus) RecordDeleted() *event.Event[RecordEvent]        { return &b.recordDeleted }
func (b *Bus) OwnershipChanged() *event.Event[OwnershipChange] { return &b.ownershipChanged }
func (b *Bus) MessageReceived() *event.Event[Message]          { return &b.messageReceived }
func (b *Bus) UserJoined() *event.Event[record.Participant]    { return &b.userJoined }
func (b *Bus) UserLeft() *event.Event[record.Participant]      { return &b.userLeft }
func (b *Bus) HostUpdated() *event.Event[record.Participant]   { return &b.hostUpdated }
func (b *Bus) Disconnected() *event.Event[error]               { return &b.disconnected }

func (b *Bus) errorReporter(msg, id string, onError func(error)) func(error) {
	return func(err error) {
		b.logger.Error(msg, "network_id", id, "error", err)
		if onError != nil {
			onError(err)
		}
	}
}

func orNoop(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	return fn
}

// registerRecord is idempotent: a record already known by id is kept.
func (b *Bus) registerRecord(rec record.Record) {
	if _, ok := b.records[rec.ID()]; ok {
		return
	}
	b.records[rec.ID()] = rec
}

// registerUser is idempotent by connection id.
func (b *Bus) registerUser(u record.Participant) bool {
	if _, ok := b.users[u.ConnectionID]; ok {
		return false
	}
	b.users[u.ConnectionID] = u
	return true
}
