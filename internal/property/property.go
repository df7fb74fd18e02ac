// Package property implements individually change-tracked record fields and
// the ordered set an entity pushes and pulls every frame.
package property

import (
	"fmt"
	"log/slog"

	"github.com/iudanet/gophsync/internal/event"
	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/snapshot"
)

// Clock supplies the shared session time in seconds.
type Clock interface {
	ServerTime() float64
}

type zeroClock struct{}

func (zeroClock) ServerTime() float64 { return 0 }

// Change describes one value transition. Info is set for remote changes only.
type Change[T any] struct {
	Previous T
	Value    T
	Info     record.UpdateInfo
	Key      string
	Remote   bool
}

// Field is the type-erased view of a Property used by Set.
type Field interface {
	Key() string
	Tag() record.TypeTag
	CheckLocalValueChanged() bool
	CheckWithinSendLimit(timestamp float64) bool
	NeedsPush() bool
	MarkDirty()
	HasSmoothing() bool
	ApplySnapshotSmoothing()

	attach(clock Clock, logger *slog.Logger)
	initialValue() record.Value
	push(rec record.Record, timestamp float64) error
	pull(rec record.Record, info record.UpdateInfo, isInitial bool) error
}

// Property is a typed record field.
//
// In manual mode the value is supplied with SetPendingValue. In automatic
// mode a getter is polled every frame and a setter receives remote values.
type Property[T any] struct {
	kind      Kind[T]
	clock     Clock
	logger    *slog.Logger
	getter    func() T
	setter    func(T)
	smoothing *snapshot.Buffer[T]

	current          T
	pending          T
	currentOrPending T

	pendingChanged event.Event[Change[T]]
	localChanged   event.Event[Change[T]]
	remoteChanged  event.Event[Change[T]]
	anyChanged     event.Event[Change[T]]

	key                 string
	sendsPerSecondLimit float64
	lastSendTime        float64
	hasSent             bool
	markedDirty         bool
	needsPush           bool
}

var _ Field = (*Property[int32])(nil)

func newProperty[T any](kind Kind[T], key string) *Property[T] {
	return &Property[T]{
		kind:                kind,
		key:                 key,
		clock:               zeroClock{},
		logger:              slog.Default(),
		sendsPerSecondLimit: -1,
	}
}

// Manual creates a property whose value is set explicitly.
func Manual[T any](kind Kind[T], key string, initial T) *Property[T] {
	p := newProperty(kind, key)
	p.current = initial
	p.pending = initial
	p.currentOrPending = initial
	return p
}

// Auto creates a property bound to a getter polled every frame and a setter
// invoked with remote values. Either may be nil.
func Auto[T any](kind Kind[T], key string, getter func() T, setter func(T)) *Property[T] {
	p := newProperty(kind, key)
	p.getter = getter
	p.setter = setter
	if getter != nil {
		if v, ok := p.readGetter(); ok {
			p.current = v
			p.pending = v
			p.currentOrPending = v
		}
	}
	return p
}

func (p *Property[T]) Key() string { return p.key }

func (p *Property[T]) Tag() record.TypeTag { return p.kind.Tag }

// CurrentValue is the last value believed synchronized.
func (p *Property[T]) CurrentValue() T { return p.current }

// PendingValue is the latest local observation, not necessarily pushed yet.
func (p *Property[T]) PendingValue() T { return p.pending }

// CurrentOrPendingValue always reflects the most recent local observation.
func (p *Property[T]) CurrentOrPendingValue() T { return p.currentOrPending }

// SendsPerSecondLimit returns the push rate limit. Negative means unlimited.
func (p *Property[T]) SendsPerSecondLimit() float64 { return p.sendsPerSecondLimit }

// SetSendsPerSecondLimit sets the push rate limit. Zero disables pushes,
// a negative value removes the limit.
func (p *Property[T]) SetSendsPerSecondLimit(limit float64) *Property[T] {
	p.sendsPerSecondLimit = limit
	return p
}

// EnableSmoothing attaches a snapshot buffer of size samples rendering at
// server time + offset.
func (p *Property[T]) EnableSmoothing(size int, offset float64) error {
	if p.kind.Interp == nil {
		return fmt.Errorf("%w: %s", ErrSmoothingUnsupported, p.kind.Tag)
	}
	buf := snapshot.New(size, p.kind.Interp)
	buf.SetOffset(offset)
	p.smoothing = buf
	return nil
}

// Smoothing returns the snapshot buffer, nil when smoothing is off.
func (p *Property[T]) Smoothing() *snapshot.Buffer[T] { return p.smoothing }

func (p *Property[T]) HasSmoothing() bool { return p.smoothing != nil }

func (p *Property[T]) OnPendingChanged() *event.Event[Change[T]] { return &p.pendingChanged }
func (p *Property[T]) OnLocalChanged() *event.Event[Change[T]]   { return &p.localChanged }
func (p *Property[T]) OnRemoteChanged() *event.Event[Change[T]]  { return &p.remoteChanged }
func (p *Property[T]) OnAnyChanged() *event.Event[Change[T]]     { return &p.anyChanged }

// SetPendingValue records a new local observation.
func (p *Property[T]) SetPendingValue(v T) {
	p.currentOrPending = v
	if p.kind.Equal(v, p.pending) {
		return
	}

	prev := p.pending
	p.pending = v
	if p.smoothing != nil {
		p.smoothing.SetCurrentValue(p.clock.ServerTime(), v)
	}
	p.pendingChanged.Trigger(Change[T]{Key: p.key, Previous: prev, Value: v})
}

// MarkDirty forces the next CheckLocalValueChanged to promote the pending
// value even if it equals the current one.
func (p *Property[T]) MarkDirty() { p.markedDirty = true }

// NeedsPush reports whether the current value changed since the last push.
func (p *Property[T]) NeedsPush() bool { return p.needsPush }

// CheckLocalValueChanged polls the getter and promotes the pending value to
// the current value when it differs. Returns true on promotion.
func (p *Property[T]) CheckLocalValueChanged() bool {
	if p.getter != nil {
		if v, ok := p.readGetter(); ok {
			unchanged := false
			if p.smoothing != nil {
				// не засоряем буфер одинаковыми значениями
				if recent, ok := p.smoothing.MostRecent(); ok && p.kind.Equal(v, recent) {
					unchanged = true
				}
			}
			if !unchanged {
				p.SetPendingValue(v)
			}
		}
	}
	return p.promote()
}

func (p *Property[T]) promote() bool {
	if !p.markedDirty && p.kind.Equal(p.pending, p.current) {
		return false
	}

	prev := p.current
	p.current = p.pending
	p.currentOrPending = p.pending
	p.markedDirty = false
	p.needsPush = true

	change := Change[T]{Key: p.key, Previous: prev, Value: p.current}
	p.localChanged.Trigger(change)
	p.anyChanged.Trigger(change)
	return true
}

// CheckWithinSendLimit reports whether a push at timestamp respects the rate limit.
func (p *Property[T]) CheckWithinSendLimit(timestamp float64) bool {
	if p.sendsPerSecondLimit == 0 {
		return false
	}
	if p.sendsPerSecondLimit < 0 || !p.hasSent {
		return true
	}
	return p.lastSendTime+1/p.sendsPerSecondLimit <= timestamp
}

// ApplyRemoteValue adopts a value received from the record.
//
// With smoothing the initial value seeds the buffer and later values are
// stored as samples at the sender's send time; the setter then runs from
// ApplySnapshotSmoothing instead of here.
func (p *Property[T]) ApplyRemoteValue(v T, suppressEvents bool, info record.UpdateInfo, isInitial bool) error {
	if p.smoothing != nil {
		if isInitial {
			ts := p.clock.ServerTime()
			if info.HasSentTime {
				ts = info.SentServerTime
			}
			p.smoothing.Reset()
			p.smoothing.SetCurrentValue(ts, v)
		} else {
			if !info.HasSentTime {
				return fmt.Errorf("%w: %s", ErrMissingSendTime, p.key)
			}
			p.smoothing.SaveSnapshot(info.SentServerTime, v)
		}
	}

	prev := p.current
	p.current = v
	p.pending = v
	p.currentOrPending = v
	p.needsPush = false
	p.markedDirty = false

	if p.smoothing == nil || isInitial {
		p.callSetter(v)
	}

	if !suppressEvents {
		change := Change[T]{Key: p.key, Previous: prev, Value: v, Info: info, Remote: true}
		p.remoteChanged.Trigger(change)
		p.anyChanged.Trigger(change)
	}
	return nil
}

// ApplySnapshotSmoothing feeds the setter with the interpolated value at
// server time plus the buffer offset.
func (p *Property[T]) ApplySnapshotSmoothing() {
	if p.smoothing == nil {
		return
	}
	q := p.clock.ServerTime() + p.smoothing.Offset()
	v, ok := p.smoothing.GetLerpedValue(q)
	if !ok {
		v = p.currentOrPending
	}
	p.callSetter(v)
}

// SetValueImmediate writes v straight into rec. The caller must be allowed
// to mutate the record.
func (p *Property[T]) SetValueImmediate(rec record.Record, v T) error {
	p.SetPendingValue(v)
	p.promote()
	p.callSetter(v)
	return p.write(rec, p.clock.ServerTime())
}

func (p *Property[T]) attach(clock Clock, logger *slog.Logger) {
	if clock != nil {
		p.clock = clock
	}
	if logger != nil {
		p.logger = logger.With("property", p.key)
	}
}

func (p *Property[T]) initialValue() record.Value {
	p.CheckLocalValueChanged()
	p.needsPush = false
	return record.Value{Tag: p.kind.Tag, Data: p.kind.Encode(p.current)}
}

func (p *Property[T]) push(rec record.Record, timestamp float64) error {
	if p.sendsPerSecondLimit == 0 {
		return nil
	}
	return p.write(rec, timestamp)
}

func (p *Property[T]) write(rec record.Record, timestamp float64) error {
	if err := rec.Put(p.kind.Tag, p.key, p.kind.Encode(p.current)); err != nil {
		return fmt.Errorf("failed to put %s: %w", p.key, err)
	}
	p.lastSendTime = timestamp
	p.hasSent = true
	p.needsPush = false
	return nil
}

func (p *Property[T]) pull(rec record.Record, info record.UpdateInfo, isInitial bool) error {
	if !rec.Has(p.key) {
		return nil
	}
	raw, err := rec.Get(p.kind.Tag, p.key)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", p.key, err)
	}
	v, err := p.kind.Decode(raw)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", p.key, err)
	}
	return p.ApplyRemoteValue(v, false, info, isInitial)
}

func (p *Property[T]) readGetter() (v T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Property getter panicked", "key", p.key, "panic", r)
			ok = false
		}
	}()
	return p.getter(), true
}

func (p *Property[T]) callSetter(v T) {
	if p.setter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Property setter panicked", "key", p.key, "panic", r)
		}
	}()
	p.setter(v)
}
