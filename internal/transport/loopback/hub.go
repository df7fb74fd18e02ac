// Package loopback is an in-process session transport. A Hub plays the
// server: it owns the authoritative records, arbitrates ownership and fans
// notifications out to connected clients through their schedulers.
package loopback

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/scheduler"
	"github.com/iudanet/gophsync/internal/storage"
)

type hubRecord struct {
	owner       *record.Participant
	values      map[string]record.Value
	id          string
	creator     string
	persistence record.Persistence
}

// state is an immutable copy handed to clients.
func (r *hubRecord) state() recordState {
	return recordState{
		id:          r.id,
		persistence: r.persistence,
		owner:       copyParticipant(r.owner),
		values:      maps.Clone(r.values),
	}
}

type recordState struct {
	owner       *record.Participant
	values      map[string]record.Value
	id          string
	persistence record.Persistence
}

// Hub is the shared server side of the loopback transport.
type Hub struct {
	clock  scheduler.Clock
	store  storage.RecordStorage
	logger *slog.Logger
	delay  time.Duration

	mu      sync.Mutex
	clients []*Client
	records map[string]*hubRecord
	host    *Client
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithDeliveryDelay delays every notification by d on the receiving
// client's scheduler.
func WithDeliveryDelay(d time.Duration) HubOption {
	return func(h *Hub) { h.delay = d }
}

// WithStorage keeps records of the persist class in s.
func WithStorage(s storage.RecordStorage) HubOption {
	return func(h *Hub) { h.store = s }
}

// WithLogger sets the hub logger.
func WithLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHub creates a hub. Durable records found in storage are loaded
// unowned.
func NewHub(ctx context.Context, clock scheduler.Clock, opts ...HubOption) (*Hub, error) {
	h := &Hub{
		clock:   clock,
		logger:  slog.Default(),
		records: make(map[string]*hubRecord),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.store != nil {
		stored, err := h.store.GetAllRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load durable records: %w", err)
		}
		for _, s := range stored {
			h.records[s.ID] = &hubRecord{
				id:          s.ID,
				persistence: s.Persistence,
				values:      s.Values,
			}
		}
		h.logger.Info("Loaded durable records", "count", len(stored))
	}
	return h, nil
}

// ServerTime returns the hub clock in seconds.
func (h *Hub) ServerTime() float64 {
	return h.clock.Now().Seconds()
}

// RecordIDs returns the ids of live records.
func (h *Hub) RecordIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.records))
	for id := range h.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Owner returns the authoritative owner of a record.
func (h *Hub) Owner(id string) (*record.Participant, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.records[id]
	if !ok {
		return nil, false
	}
	return copyParticipant(rec.owner), true
}

// Value returns the authoritative value of key.
func (h *Hub) Value(id, key string) (record.Value, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.records[id]
	if !ok {
		return record.Value{}, false
	}
	v, ok := rec.values[key]
	return v, ok
}

// deliver runs fn on the client's loop, after the configured delay.
func (h *Hub) deliver(c *Client, fn func()) {
	run := func() {
		if c.closed.Load() {
			return
		}
		fn()
	}
	if h.delay <= 0 {
		c.sched.Post(run)
		return
	}
	c.sched.Post(func() { c.sched.RunAfter(h.delay, run) })
}

func (h *Hub) info(sender record.Participant) record.UpdateInfo {
	return record.UpdateInfo{
		Sender:         sender,
		SentServerTime: h.ServerTime(),
		HasSentTime:    true,
	}
}

func (h *Hub) persist(rec *hubRecord) {
	if h.store == nil || rec.persistence != record.PersistenceDurable {
		return
	}
	err := h.store.SaveRecord(context.Background(), &storage.StoredRecord{
		ID:          rec.id,
		Persistence: rec.persistence,
		Values:      maps.Clone(rec.values),
	})
	if err != nil {
		h.logger.Error("Failed to save durable record", "network_id", rec.id, "error", err)
	}
}

func (h *Hub) forget(rec *hubRecord) {
	if h.store == nil || rec.persistence != record.PersistenceDurable {
		return
	}
	if err := h.store.DeleteRecord(context.Background(), rec.id); err != nil {
		h.logger.Error("Failed to delete durable record", "network_id", rec.id, "error", err)
	}
}

func copyParticipant(p *record.Participant) *record.Participant {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
