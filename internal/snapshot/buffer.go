// Package snapshot buffers timestamped samples of a value and interpolates
// between them to hide network jitter.
package snapshot

// DefaultSize is the sample capacity used when none is configured.
const DefaultSize = 20

// DefaultOffset renders remote values slightly in the past so that a
// bracketing pair of samples is usually available.
const DefaultOffset = -0.25

// Sample is one (timestamp, value) pair. Time is in session seconds.
type Sample[T any] struct {
	Value T
	Time  float64
}

// Segment is the neighbourhood of a query time handed to an Interpolator.
// Prev and Next are nil when the bracketing pair is at the buffer edge.
type Segment[T any] struct {
	Prev *Sample[T]
	Next *Sample[T]
	From Sample[T]
	To   Sample[T]
}

// Interpolator returns the value of seg at time t, From.Time <= t <= To.Time.
type Interpolator[T any] func(seg Segment[T], t float64) T

// Buffer is a fixed-capacity ring of samples ordered by time.
type Buffer[T any] struct {
	interp  Interpolator[T]
	samples []Sample[T]
	start   int
	count   int
	offset  float64
}

// New creates a buffer holding at most size samples.
func New[T any](size int, interp Interpolator[T]) *Buffer[T] {
	if size < 2 {
		size = 2
	}
	return &Buffer[T]{
		interp:  interp,
		samples: make([]Sample[T], size),
		offset:  DefaultOffset,
	}
}

// Offset is added to the current server time to get the query time.
func (b *Buffer[T]) Offset() float64 { return b.offset }

// SetOffset changes the interpolation target offset.
func (b *Buffer[T]) SetOffset(offset float64) { b.offset = offset }

// Len returns the number of stored samples.
func (b *Buffer[T]) Len() int { return b.count }

// Cap returns the sample capacity.
func (b *Buffer[T]) Cap() int { return len(b.samples) }

// Reset drops all samples.
func (b *Buffer[T]) Reset() {
	var zero Sample[T]
	for i := range b.samples {
		b.samples[i] = zero
	}
	b.start = 0
	b.count = 0
}

// SaveSnapshot appends a sample received from the network. Samples older
// than the newest one are dropped and reported as false; a sample with the
// same timestamp replaces the newest value.
func (b *Buffer[T]) SaveSnapshot(t float64, v T) bool {
	if b.count > 0 {
		newest := b.at(b.count - 1)
		if t < newest.Time {
			return false
		}
		if t == newest.Time {
			b.set(b.count-1, Sample[T]{Time: t, Value: v})
			return true
		}
	}
	b.push(Sample[T]{Time: t, Value: v})
	return true
}

// SetCurrentValue records a locally authored value. Samples at or after t
// are discarded so the local write always becomes the newest sample.
func (b *Buffer[T]) SetCurrentValue(t float64, v T) {
	for b.count > 0 && b.at(b.count-1).Time >= t {
		b.count--
	}
	b.push(Sample[T]{Time: t, Value: v})
}

// MostRecent returns the newest value.
func (b *Buffer[T]) MostRecent() (T, bool) {
	if b.count == 0 {
		var zero T
		return zero, false
	}
	return b.at(b.count - 1).Value, true
}

// Samples returns the stored samples from oldest to newest.
func (b *Buffer[T]) Samples() []Sample[T] {
	out := make([]Sample[T], b.count)
	for i := range out {
		out[i] = b.at(i)
	}
	return out
}

// GetLerpedValue returns the interpolated value at time q. Queries outside
// the stored range clamp to the oldest or newest sample.
func (b *Buffer[T]) GetLerpedValue(q float64) (T, bool) {
	switch b.count {
	case 0:
		var zero T
		return zero, false
	case 1:
		return b.at(0).Value, true
	}

	oldest := b.at(0)
	newest := b.at(b.count - 1)
	if q <= oldest.Time {
		return oldest.Value, true
	}
	if q >= newest.Time {
		return newest.Value, true
	}

	// поиск пары (t0 <= q <= t1), выборок мало, линейный проход достаточен
	for i := 0; i < b.count-1; i++ {
		from := b.at(i)
		to := b.at(i + 1)
		if q == from.Time {
			return from.Value, true
		}
		if q > to.Time {
			continue
		}
		if q == to.Time {
			return to.Value, true
		}

		seg := Segment[T]{From: from, To: to}
		if i > 0 {
			prev := b.at(i - 1)
			seg.Prev = &prev
		}
		if i+2 < b.count {
			next := b.at(i + 2)
			seg.Next = &next
		}
		if b.interp == nil {
			return from.Value, true
		}
		return b.interp(seg, q), true
	}

	return newest.Value, true
}

func (b *Buffer[T]) at(i int) Sample[T] {
	return b.samples[(b.start+i)%len(b.samples)]
}

func (b *Buffer[T]) set(i int, s Sample[T]) {
	b.samples[(b.start+i)%len(b.samples)] = s
}

// push appends s, evicting the oldest sample when full.
func (b *Buffer[T]) push(s Sample[T]) {
	if b.count == len(b.samples) {
		b.samples[b.start] = s
		b.start = (b.start + 1) % len(b.samples)
		return
	}
	b.set(b.count, s)
	b.count++
}
