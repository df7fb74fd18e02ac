// Package geom names the linear algebra types that can be stored in a
// record. The types are mgl64's; this package adds the equality rules and
// the quaternion interpolation the replication layer needs.
package geom

import "github.com/go-gl/mathgl/mgl64"

// Epsilon is the tolerance used by approximate equality checks.
const Epsilon = 1e-6

type (
	Vec2 = mgl64.Vec2
	Vec3 = mgl64.Vec3
	Vec4 = mgl64.Vec4
	Quat = mgl64.Quat
	Mat2 = mgl64.Mat2
	Mat3 = mgl64.Mat3
	Mat4 = mgl64.Mat4
)

// Vector is satisfied by Vec2, Vec3 and Vec4.
type Vector[V any] interface {
	Add(V) V
	Sub(V) V
	Mul(float64) V
	Len() float64
}

// Thresholded is satisfied by the mgl64 vector and matrix types.
type Thresholded[T any] interface {
	ApproxEqualThreshold(T, float64) bool
}

// ApproxEqual compares vectors and matrices component-wise within Epsilon.
func ApproxEqual[T Thresholded[T]](a, b T) bool {
	return a.ApproxEqualThreshold(b, Epsilon)
}
