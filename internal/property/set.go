package property

import (
	"fmt"
	"log/slog"

	"github.com/iudanet/gophsync/internal/record"
)

// Set is the ordered collection of fields backing one record.
type Set struct {
	clock  Clock
	logger *slog.Logger
	fields []Field
	byKey  map[string]Field
}

// NewSet creates an empty set. Fields added later share clock and logger.
func NewSet(clock Clock, logger *slog.Logger) *Set {
	if clock == nil {
		clock = zeroClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{
		clock:  clock,
		logger: logger,
		byKey:  make(map[string]Field),
	}
}

// Add registers f. Keys are unique within a set.
func (s *Set) Add(f Field) error {
	if _, ok := s.byKey[f.Key()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, f.Key())
	}
	f.attach(s.clock, s.logger)
	s.fields = append(s.fields, f)
	s.byKey[f.Key()] = f
	return nil
}

// Get returns the field registered under key.
func (s *Set) Get(key string) (Field, bool) {
	f, ok := s.byKey[key]
	return f, ok
}

// Fields returns the fields in registration order.
func (s *Set) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *Set) Len() int { return len(s.fields) }

// InitialValues collects the current value of every field for record creation.
func (s *Set) InitialValues() map[string]record.Value {
	out := make(map[string]record.Value, len(s.fields))
	for _, f := range s.fields {
		out[f.Key()] = f.initialValue()
	}
	return out
}

// PushAll writes every field into rec regardless of dirtiness.
// Fields with a zero send limit are never written.
func (s *Set) PushAll(rec record.Record) {
	now := s.clock.ServerTime()
	for _, f := range s.fields {
		f.CheckLocalValueChanged()
		if err := f.push(rec, now); err != nil {
			s.logger.Error("Failed to push property", "record", rec.ID(), "error", err)
		}
	}
}

// PushChanges writes fields whose value changed since the last push and
// whose send limit allows a write now. Returns the number of written fields.
func (s *Set) PushChanges(rec record.Record) int {
	now := s.clock.ServerTime()
	pushed := 0
	for _, f := range s.fields {
		f.CheckLocalValueChanged()
		if !f.NeedsPush() || !f.CheckWithinSendLimit(now) {
			continue
		}
		if err := f.push(rec, now); err != nil {
			s.logger.Error("Failed to push property", "record", rec.ID(), "error", err)
			continue
		}
		pushed++
	}
	return pushed
}

// PullAll applies every field present in rec as the initial remote value.
func (s *Set) PullAll(rec record.Record, info record.UpdateInfo) {
	for _, f := range s.fields {
		if err := f.pull(rec, info, true); err != nil {
			s.logger.Error("Failed to pull property", "record", rec.ID(), "error", err)
		}
	}
}

// Pull applies the initial remote value of a single field.
func (s *Set) Pull(rec record.Record, key string, info record.UpdateInfo) error {
	f, ok := s.byKey[key]
	if !ok {
		return nil
	}
	return f.pull(rec, info, true)
}

// ApplyIncoming applies a remote update of key. Unknown keys are ignored.
func (s *Set) ApplyIncoming(rec record.Record, key string, info record.UpdateInfo) error {
	f, ok := s.byKey[key]
	if !ok {
		return nil
	}
	if err := f.pull(rec, info, false); err != nil {
		s.logger.Error("Failed to apply remote update", "record", rec.ID(), "key", key, "error", err)
		return err
	}
	return nil
}

// ApplySmoothing feeds interpolated values to every smoothed field.
func (s *Set) ApplySmoothing() {
	for _, f := range s.fields {
		if f.HasSmoothing() {
			f.ApplySnapshotSmoothing()
		}
	}
}
