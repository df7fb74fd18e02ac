package loopback

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/scheduler"
	"github.com/iudanet/gophsync/internal/session"
)

// Client is one participant's connection to a Hub. It implements
// session.Transport; every notification runs on the client's scheduler.
type Client struct {
	hub    *Hub
	sched  scheduler.Scheduler
	logger *slog.Logger
	events session.Events
	local  record.Participant

	// replicas is touched only from the client's scheduler.
	replicas map[string]*replica
	started  bool
	closed   atomic.Bool
}

var _ session.Transport = (*Client)(nil)

// Connect creates a client for a new participant. The connection is
// established by Start.
func (h *Hub) Connect(sched scheduler.Scheduler, displayName string) *Client {
	local := record.Participant{
		UserID:       uuid.NewString(),
		ConnectionID: uuid.NewString(),
		DisplayName:  displayName,
	}
	return &Client{
		hub:      h,
		sched:    sched,
		logger:   h.logger.With("connection_id", local.ConnectionID),
		local:    local,
		replicas: make(map[string]*replica),
	}
}

// Local returns the participant this client connects as.
func (c *Client) Local() record.Participant { return c.local }

func (c *Client) Start(events session.Events) {
	if c.started {
		c.logger.Error("Loopback client already started")
		return
	}
	c.started = true
	c.events = events
	c.hub.join(c)
}

// Close disconnects the client. Records are cleaned up according to their
// persistence class.
func (c *Client) Close() {
	if !c.started || c.closed.Load() {
		return
	}
	c.hub.leave(c)
}

func (c *Client) ServerTime() float64 { return c.hub.ServerTime() }

func (c *Client) CreateRecord(opts record.CreateOptions, onSuccess func(record.Record), onError func(error)) {
	c.hub.create(c, opts, onSuccess, onError)
}

func (c *Client) DeleteRecord(rec record.Record) {
	c.hub.remove(c, rec.ID())
}

func (c *Client) RequestOwnership(rec record.Record, onSuccess func(), onError func(error)) {
	c.hub.requestOwnership(c, rec.ID(), orNoop(onSuccess), orNoopErr(onError))
}

func (c *Client) ClearOwnership(rec record.Record, onSuccess func(), onError func(error)) {
	c.hub.clearOwnership(c, rec.ID(), orNoop(onSuccess), orNoopErr(onError))
}

func (c *Client) SendMessage(data []byte) {
	c.hub.broadcast(c, data)
}

// replicaFor returns the local copy of a record, creating it from s.
func (c *Client) replicaFor(s recordState) *replica {
	if rep, ok := c.replicas[s.id]; ok {
		return rep
	}
	rep := &replica{Memory: record.NewMemory(s.id, s.persistence), client: c}
	if err := rep.Load(s.values); err != nil {
		c.logger.Error("Failed to load replica", "network_id", s.id, "error", err)
	}
	rep.SetOwner(s.owner)
	c.replicas[s.id] = rep
	return rep
}

func (c *Client) dropReplica(s recordState) *replica {
	rep := c.replicaFor(s)
	delete(c.replicas, s.id)
	return rep
}

// replica is a client's copy of a record. Writes are checked against the
// known owner and forwarded to the hub.
type replica struct {
	*record.Memory
	client *Client
}

func (r *replica) Put(tag record.TypeTag, key string, value any) error {
	if owner := r.Owner(); owner != nil && !owner.Is(&r.client.local) {
		return fmt.Errorf("%w: %s", record.ErrNotOwner, r.ID())
	}
	if err := r.Memory.Put(tag, key, value); err != nil {
		return err
	}
	r.client.hub.put(r.client, r.ID(), key, record.Value{Tag: tag, Data: value})
	return nil
}

func orNoop(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	return fn
}

func orNoopErr(fn func(error)) func(error) {
	if fn == nil {
		return func(error) {}
	}
	return fn
}
