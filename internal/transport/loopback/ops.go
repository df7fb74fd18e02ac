package loopback

import (
	"fmt"
	"slices"

	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/session"
)

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	h.clients = append(h.clients, c)
	if h.host == nil {
		h.host = c
	}
	users := make([]record.Participant, 0, len(h.clients))
	for _, other := range h.clients {
		users = append(users, other.local)
	}
	states := h.statesLocked()
	host := h.host.local
	others := h.othersLocked(c)
	h.mu.Unlock()

	h.logger.Info("Client joined", "connection_id", c.local.ConnectionID, "host", host.ConnectionID == c.local.ConnectionID)

	h.deliver(c, func() {
		info := session.ConnectionInfo{Local: c.local, Host: host, Users: users}
		for _, s := range states {
			info.Records = append(info.Records, c.replicaFor(s))
		}
		c.events.OnConnected(info)
	})
	for _, other := range others {
		h.deliver(other, func() { other.events.OnUserJoined(c.local) })
	}
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	idx := slices.Index(h.clients, c)
	if idx < 0 {
		h.mu.Unlock()
		return
	}
	h.clients = slices.Delete(h.clients, idx, idx+1)
	empty := len(h.clients) == 0

	var deleted []recordState
	var released []recordState
	for _, id := range h.sortedIDsLocked() {
		rec := h.records[id]
		if dropOnLeave(rec, c.local.ConnectionID, empty) {
			delete(h.records, id)
			h.forget(rec)
			deleted = append(deleted, rec.state())
			continue
		}
		if rec.owner.Is(&c.local) {
			rec.owner = nil
			released = append(released, rec.state())
		}
	}

	var newHost *record.Participant
	if h.host == c {
		h.host = nil
		if !empty {
			h.host = h.clients[0]
			newHost = copyParticipant(&h.host.local)
		}
	}
	others := slices.Clone(h.clients)
	h.mu.Unlock()

	h.logger.Info("Client left",
		"connection_id", c.local.ConnectionID,
		"deleted_records", len(deleted),
		"released_records", len(released))

	info := h.info(c.local)
	for _, other := range others {
		h.deliver(other, func() {
			for _, s := range deleted {
				other.events.OnRecordDeleted(other.dropReplica(s), info)
			}
			for _, s := range released {
				rep := other.replicaFor(s)
				rep.SetOwner(nil)
				other.events.OnRecordOwnershipChanged(rep, nil)
			}
			other.events.OnUserLeft(c.local)
			if newHost != nil {
				other.events.OnHostUpdated(*newHost)
			}
		})
	}
	h.deliver(c, func() {
		c.events.OnDisconnected(nil)
		c.closed.Store(true)
	})
}

// dropOnLeave decides whether rec goes away when the participant with
// connection id leaves.
func dropOnLeave(rec *hubRecord, leaving string, empty bool) bool {
	switch rec.persistence {
	case record.PersistenceEphemeral:
		return empty || rec.creator == leaving
	case record.PersistenceOwner:
		if rec.owner != nil {
			return empty || rec.owner.ConnectionID == leaving
		}
		return empty || rec.creator == leaving
	case record.PersistenceSession:
		return empty
	default:
		return false
	}
}

func (h *Hub) create(c *Client, opts record.CreateOptions, onSuccess func(record.Record), onError func(error)) {
	fail := func(err error) {
		h.deliver(c, func() {
			if onError != nil {
				onError(err)
			}
		})
	}

	if opts.ID == "" {
		fail(fmt.Errorf("%w: empty id", record.ErrRecordNotFound))
		return
	}
	for key, v := range opts.Initial {
		if err := record.Validate(v.Tag, v.Data); err != nil {
			fail(fmt.Errorf("invalid initial value %s: %w", key, err))
			return
		}
	}

	h.mu.Lock()
	if _, ok := h.records[opts.ID]; ok {
		h.mu.Unlock()
		fail(fmt.Errorf("%w: %s", record.ErrRecordExists, opts.ID))
		return
	}
	rec := &hubRecord{
		id:          opts.ID,
		persistence: opts.Persistence,
		creator:     c.local.ConnectionID,
		values:      make(map[string]record.Value, len(opts.Initial)),
	}
	for k, v := range opts.Initial {
		rec.values[k] = v
	}
	if opts.Owned {
		rec.owner = copyParticipant(&c.local)
	}
	h.records[rec.id] = rec
	h.persist(rec)
	state := rec.state()
	clients := slices.Clone(h.clients)
	h.mu.Unlock()

	h.logger.Debug("Record created", "network_id", rec.id, "creator", c.local.ConnectionID)

	info := h.info(c.local)
	for _, other := range clients {
		h.deliver(other, func() {
			other.events.OnRecordCreated(other.replicaFor(state), info)
		})
	}
	h.deliver(c, func() {
		if onSuccess != nil {
			onSuccess(c.replicaFor(state))
		}
	})
}

func (h *Hub) remove(c *Client, id string) {
	h.mu.Lock()
	rec, ok := h.records[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	if rec.owner != nil && !rec.owner.Is(&c.local) {
		h.mu.Unlock()
		h.logger.Warn("Rejected delete by non-owner", "network_id", id, "connection_id", c.local.ConnectionID)
		return
	}
	delete(h.records, id)
	h.forget(rec)
	state := rec.state()
	clients := slices.Clone(h.clients)
	h.mu.Unlock()

	info := h.info(c.local)
	for _, other := range clients {
		h.deliver(other, func() {
			other.events.OnRecordDeleted(other.dropReplica(state), info)
		})
	}
}

func (h *Hub) put(c *Client, id, key string, v record.Value) {
	h.mu.Lock()
	rec, ok := h.records[id]
	if !ok {
		h.mu.Unlock()
		h.logger.Debug("Dropped write to unknown record", "network_id", id, "key", key)
		return
	}
	if rec.owner != nil && !rec.owner.Is(&c.local) {
		h.mu.Unlock()
		h.logger.Warn("Rejected write by non-owner", "network_id", id, "key", key, "connection_id", c.local.ConnectionID)
		return
	}
	rec.values[key] = v
	h.persist(rec)
	state := rec.state()
	others := h.othersLocked(c)
	h.mu.Unlock()

	info := h.info(c.local)
	for _, other := range others {
		h.deliver(other, func() {
			rep := other.replicaFor(state)
			if err := rep.Memory.Put(v.Tag, key, v.Data); err != nil {
				other.logger.Error("Failed to apply remote write", "network_id", id, "key", key, "error", err)
				return
			}
			other.events.OnRecordUpdated(rep, key, info)
		})
	}
}

func (h *Hub) requestOwnership(c *Client, id string, onSuccess func(), onError func(error)) {
	h.changeOwner(c, id, onSuccess, onError, func(rec *hubRecord) error {
		if rec.owner != nil && !rec.owner.Is(&c.local) {
			return fmt.Errorf("%w: %s", record.ErrNotOwner, id)
		}
		rec.owner = copyParticipant(&c.local)
		return nil
	})
}

func (h *Hub) clearOwnership(c *Client, id string, onSuccess func(), onError func(error)) {
	h.changeOwner(c, id, onSuccess, onError, func(rec *hubRecord) error {
		if !rec.owner.Is(&c.local) {
			return fmt.Errorf("%w: %s", record.ErrNotOwner, id)
		}
		rec.owner = nil
		return nil
	})
}

// changeOwner applies change under the hub lock and notifies every client
// before the requester's callback runs.
func (h *Hub) changeOwner(c *Client, id string, onSuccess func(), onError func(error), change func(*hubRecord) error) {
	h.mu.Lock()
	rec, ok := h.records[id]
	if !ok {
		h.mu.Unlock()
		h.deliver(c, func() { onError(fmt.Errorf("%w: %s", record.ErrRecordNotFound, id)) })
		return
	}
	before := copyParticipant(rec.owner)
	if err := change(rec); err != nil {
		h.mu.Unlock()
		h.deliver(c, func() { onError(err) })
		return
	}
	state := rec.state()
	changed := !(before == nil && rec.owner == nil) && !before.Is(rec.owner)
	clients := slices.Clone(h.clients)
	h.mu.Unlock()

	if changed {
		for _, other := range clients {
			h.deliver(other, func() {
				rep := other.replicaFor(state)
				rep.SetOwner(state.owner)
				other.events.OnRecordOwnershipChanged(rep, copyParticipant(state.owner))
			})
		}
	}
	h.deliver(c, func() {
		c.replicaFor(state).SetOwner(state.owner)
		onSuccess()
	})
}

func (h *Hub) broadcast(c *Client, data []byte) {
	payload := slices.Clone(data)

	h.mu.Lock()
	clients := slices.Clone(h.clients)
	h.mu.Unlock()

	for _, other := range clients {
		h.deliver(other, func() { other.events.OnMessageReceived(c.local, payload) })
	}
}

func (h *Hub) statesLocked() []recordState {
	states := make([]recordState, 0, len(h.records))
	for _, id := range h.sortedIDsLocked() {
		states = append(states, h.records[id].state())
	}
	return states
}

func (h *Hub) sortedIDsLocked() []string {
	ids := make([]string, 0, len(h.records))
	for id := range h.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (h *Hub) othersLocked(c *Client) []*Client {
	others := make([]*Client, 0, len(h.clients))
	for _, other := range h.clients {
		if other != c {
			others = append(others, other)
		}
	}
	return others
}
