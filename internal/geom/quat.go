package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// QuatEqualThreshold is the minimum dot product of two normalized
// quaternions considered equal.
const QuatEqualThreshold = 0.999

// QuatEqual compares normalized rotations by dot product.
func QuatEqual(a, b Quat) bool {
	return a.Normalize().Dot(b.Normalize()) >= QuatEqualThreshold
}

// QuatLog returns the logarithm of a unit quaternion as a pure quaternion.
func QuatLog(q Quat) Quat {
	vl := q.V.Len()
	if vl < Epsilon {
		return Quat{}
	}
	return Quat{V: q.V.Mul(math.Atan2(vl, q.W) / vl)}
}

// QuatExp is the inverse of QuatLog for pure quaternions.
func QuatExp(q Quat) Quat {
	theta := q.V.Len()
	if theta < Epsilon {
		return Quat{W: 1, V: q.V}.Normalize()
	}
	return Quat{W: math.Cos(theta), V: q.V.Mul(math.Sin(theta) / theta)}
}

// Slerp interpolates along the shortest arc from a to b.
func Slerp(a, b Quat, t float64) Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t)
}

// SquadControl computes the inner control point for q1 given its neighbours.
func SquadControl(q0, q1, q2 Quat) Quat {
	q0, q1, q2 = q0.Normalize(), q1.Normalize(), q2.Normalize()
	if q1.Dot(q0) < 0 {
		q0 = q0.Scale(-1)
	}
	if q1.Dot(q2) < 0 {
		q2 = q2.Scale(-1)
	}

	inv := q1.Conjugate()
	l0 := QuatLog(inv.Mul(q0))
	l2 := QuatLog(inv.Mul(q2))
	return q1.Mul(QuatExp(Quat{V: l0.V.Add(l2.V).Mul(-0.25)})).Normalize()
}

// Squad performs spherical quadrangle interpolation between q1 and q2 with
// neighbours q0 and q3, giving C1 continuity across segments.
func Squad(q0, q1, q2, q3 Quat, t float64) Quat {
	if q1.Dot(q2) < 0 {
		q2 = q2.Scale(-1)
	}
	s1 := SquadControl(q0, q1, q2)
	s2 := SquadControl(q1, q2, q3)
	// без выбора кратчайшей дуги: squad требует исходную ориентацию
	return mgl64.QuatSlerp(mgl64.QuatSlerp(q1, q2, t), mgl64.QuatSlerp(s1, s2, t), 2*t*(1-t)).Normalize()
}

// QuatToVec4 packs a rotation for storage in a vec4 slot.
func QuatToVec4(q Quat) Vec4 { return q.V.Vec4(q.W) }

// QuatFromVec4 unpacks a rotation stored by QuatToVec4.
func QuatFromVec4(v Vec4) Quat { return Quat{W: v[3], V: v.Vec3()} }
