package snapshot

import "github.com/iudanet/gophsync/internal/geom"

// Linear provides the vector-space operations Hermite needs.
type Linear[T any] struct {
	Add   func(a, b T) T
	Scale func(a T, s float64) T
}

func (l Linear[T]) sub(a, b T) T {
	return l.Add(a, l.Scale(b, -1))
}

// Float64Ops is Linear for float64.
var Float64Ops = Linear[float64]{
	Add:   func(a, b float64) float64 { return a + b },
	Scale: func(a float64, s float64) float64 { return a * s },
}

// Float32Ops is Linear for float32.
var Float32Ops = Linear[float32]{
	Add:   func(a, b float32) float32 { return a + b },
	Scale: func(a float32, s float64) float32 { return float32(float64(a) * s) },
}

// VectorOps builds Linear from the methods of a geom vector type.
func VectorOps[V geom.Vector[V]]() Linear[V] {
	return Linear[V]{
		Add:   func(a, b V) V { return a.Add(b) },
		Scale: func(a V, s float64) V { return a.Mul(s) },
	}
}

// Hermite interpolates with a cubic Hermite spline parameterized by sample
// time. Tangents are finite differences over the neighbouring samples, so
// uneven sample spacing does not distort the curve. At the buffer edges a
// one-sided difference is used.
func Hermite[T any](ops Linear[T]) Interpolator[T] {
	return func(seg Segment[T], t float64) T {
		p1, p2 := seg.From, seg.To
		h := p2.Time - p1.Time
		if h <= 0 {
			return p2.Value
		}

		chord := ops.Scale(ops.sub(p2.Value, p1.Value), 1/h)

		m1 := chord
		if seg.Prev != nil && p2.Time > seg.Prev.Time {
			m1 = ops.Scale(ops.sub(p2.Value, seg.Prev.Value), 1/(p2.Time-seg.Prev.Time))
		}
		m2 := chord
		if seg.Next != nil && seg.Next.Time > p1.Time {
			m2 = ops.Scale(ops.sub(seg.Next.Value, p1.Value), 1/(seg.Next.Time-p1.Time))
		}

		u := (t - p1.Time) / h
		u2 := u * u
		u3 := u2 * u

		h00 := 2*u3 - 3*u2 + 1
		h10 := u3 - 2*u2 + u
		h01 := -2*u3 + 3*u2
		h11 := u3 - u2

		return ops.Add(
			ops.Add(ops.Scale(p1.Value, h00), ops.Scale(m1, h10*h)),
			ops.Add(ops.Scale(p2.Value, h01), ops.Scale(m2, h11*h)),
		)
	}
}

// Slerp interpolates rotations along the shortest arc between the
// bracketing pair.
func Slerp() Interpolator[geom.Quat] {
	return func(seg Segment[geom.Quat], t float64) geom.Quat {
		return geom.Slerp(seg.From.Value, seg.To.Value, fraction(seg.From.Time, seg.To.Time, t))
	}
}

// Squad uses spherical quadrangle interpolation when both neighbours are
// available and falls back to Slerp otherwise.
func Squad() Interpolator[geom.Quat] {
	return func(seg Segment[geom.Quat], t float64) geom.Quat {
		u := fraction(seg.From.Time, seg.To.Time, t)
		if seg.Prev == nil || seg.Next == nil {
			return geom.Slerp(seg.From.Value, seg.To.Value, u)
		}
		return geom.Squad(seg.Prev.Value, seg.From.Value, seg.To.Value, seg.Next.Value, u)
	}
}

// TransformInterpolator interpolates position and scale with Hermite and
// rotation with Squad, then reassembles the transform.
func TransformInterpolator() Interpolator[geom.Transform] {
	vec := Hermite(VectorOps[geom.Vec3]())
	rot := Squad()

	return func(seg Segment[geom.Transform], t float64) geom.Transform {
		return geom.Transform{
			Position: vec(mapSegment(seg, func(x geom.Transform) geom.Vec3 { return x.Position }), t),
			Rotation: rot(mapSegment(seg, func(x geom.Transform) geom.Quat { return x.Rotation }), t),
			Scale:    vec(mapSegment(seg, func(x geom.Transform) geom.Vec3 { return x.Scale }), t),
		}
	}
}

func fraction(t0, t1, t float64) float64 {
	if t1 <= t0 {
		return 1
	}
	return (t - t0) / (t1 - t0)
}

func mapSample[T, U any](s Sample[T], f func(T) U) Sample[U] {
	return Sample[U]{Time: s.Time, Value: f(s.Value)}
}

func mapSegment[T, U any](seg Segment[T], f func(T) U) Segment[U] {
	out := Segment[U]{
		From: mapSample(seg.From, f),
		To:   mapSample(seg.To, f),
	}
	if seg.Prev != nil {
		prev := mapSample(*seg.Prev, f)
		out.Prev = &prev
	}
	if seg.Next != nil {
		next := mapSample(*seg.Next, f)
		out.Next = &next
	}
	return out
}
