// Package record defines the key/value document ("store") that mirrors the
// state of one synced entity, and the closed set of value types it holds.
package record

import (
	"fmt"
	"sort"
	"sync"
)

// Record is the externally owned key/value document of one synced entity.
// Implementations are provided by the transport.
type Record interface {
	// ID returns the network id of the record
	ID() string

	// Persistence returns the retention class the record was created with
	Persistence() Persistence

	// Owner returns the current owner, or nil if the record is unowned
	Owner() *Participant

	// Has reports whether the record holds a value for key
	Has(key string) bool

	// Keys returns the stored keys in lexical order
	Keys() []string

	// Get returns the value stored under key.
	// Returns ErrKeyNotFound if missing, ErrTypeMismatch if stored with another tag.
	Get(tag TypeTag, key string) (any, error)

	// Put stores value under key.
	// Returns ErrUnsupportedType or ErrTypeMismatch for invalid values and
	// ErrNotOwner if the local participant may not mutate the record.
	Put(tag TypeTag, key string, value any) error
}

// CreateOptions configures record creation.
type CreateOptions struct {
	// Initial values written atomically with the creation.
	Initial     map[string]Value
	ID          string
	Persistence Persistence
	// Owned claims ownership for the creator as part of the creation.
	Owned bool
}

// Memory is an in-memory Record. Transports embed it for their replicas.
type Memory struct {
	values      map[string]Value
	owner       *Participant
	id          string
	persistence Persistence
	mu          sync.RWMutex
}

var _ Record = (*Memory)(nil)

// NewMemory creates an empty in-memory record.
func NewMemory(id string, persistence Persistence) *Memory {
	return &Memory{
		id:          id,
		persistence: persistence,
		values:      make(map[string]Value),
	}
}

func (m *Memory) ID() string { return m.id }

func (m *Memory) Persistence() Persistence { return m.persistence }

// Owner returns a copy of the current owner.
func (m *Memory) Owner() *Participant {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.owner == nil {
		return nil
	}
	owner := *m.owner
	return &owner
}

// SetOwner replaces the owner. Nil clears ownership.
func (m *Memory) SetOwner(owner *Participant) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner == nil {
		m.owner = nil
		return
	}
	o := *owner
	m.owner = &o
}

func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.values[key]
	return ok
}

func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *Memory) Get(tag TypeTag, key string) (any, error) {
	if !tag.Supported() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, tag)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if v.Tag != tag {
		return nil, fmt.Errorf("%w: %s stored as %s, requested %s", ErrTypeMismatch, key, v.Tag, tag)
	}
	return v.Data, nil
}

// Put validates and stores the value. Memory has no notion of a local
// participant, so ownership is not checked here.
func (m *Memory) Put(tag TypeTag, key string, value any) error {
	if err := Validate(tag, value); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = Value{Tag: tag, Data: value}
	return nil
}

// Snapshot returns a copy of all stored values.
func (m *Memory) Snapshot() map[string]Value {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Value, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Load replaces all stored values with values.
func (m *Memory) Load(values map[string]Value) error {
	for key, v := range values {
		if err := Validate(v.Tag, v.Data); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = make(map[string]Value, len(values))
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}
