package property

import (
	"fmt"
	"slices"

	"github.com/iudanet/gophsync/internal/geom"
	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/snapshot"
)

// Kind binds a Go type to a record type tag together with its equality
// rule, optional interpolator and record representation.
type Kind[T any] struct {
	Equal  func(a, b T) bool
	Interp snapshot.Interpolator[T]
	encode func(T) any
	decode func(any) (T, error)
	Tag    record.TypeTag
}

// Encode converts v to the value stored in the record.
func (k Kind[T]) Encode(v T) any {
	if k.encode != nil {
		return k.encode(v)
	}
	return v
}

// Decode converts a record value back to T.
func (k Kind[T]) Decode(raw any) (T, error) {
	if k.decode != nil {
		return k.decode(raw)
	}
	v, ok := raw.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s got %T", record.ErrTypeMismatch, k.Tag, raw)
	}
	return v, nil
}

func exact[T comparable](a, b T) bool { return a == b }

func elementwise[T any](eq func(a, b T) bool) func(a, b []T) bool {
	return func(a, b []T) bool {
		return slices.EqualFunc(a, b, eq)
	}
}

// arrayKind clones slices on the way in and out so that callers never
// share backing arrays with the record.
func arrayKind[T any](tag record.TypeTag, eq func(a, b T) bool) Kind[[]T] {
	return Kind[[]T]{
		Tag:    tag,
		Equal:  elementwise(eq),
		encode: func(v []T) any { return slices.Clone(v) },
		decode: func(raw any) ([]T, error) {
			v, ok := raw.([]T)
			if !ok {
				return nil, fmt.Errorf("%w: %s got %T", record.ErrTypeMismatch, tag, raw)
			}
			return slices.Clone(v), nil
		},
	}
}

var (
	Bool   = Kind[bool]{Tag: record.TypeBool, Equal: exact[bool]}
	String = Kind[string]{Tag: record.TypeString, Equal: exact[string]}
	Int    = Kind[int32]{Tag: record.TypeInt, Equal: exact[int32]}
	Float  = Kind[float32]{Tag: record.TypeFloat, Equal: exact[float32], Interp: snapshot.Hermite(snapshot.Float32Ops)}
	Double = Kind[float64]{Tag: record.TypeDouble, Equal: exact[float64], Interp: snapshot.Hermite(snapshot.Float64Ops)}

	Vec2 = Kind[geom.Vec2]{Tag: record.TypeVec2, Equal: geom.ApproxEqual[geom.Vec2], Interp: snapshot.Hermite(snapshot.VectorOps[geom.Vec2]())}
	Vec3 = Kind[geom.Vec3]{Tag: record.TypeVec3, Equal: geom.ApproxEqual[geom.Vec3], Interp: snapshot.Hermite(snapshot.VectorOps[geom.Vec3]())}
	Vec4 = Kind[geom.Vec4]{Tag: record.TypeVec4, Equal: geom.ApproxEqual[geom.Vec4], Interp: snapshot.Hermite(snapshot.VectorOps[geom.Vec4]())}
	Quat = Kind[geom.Quat]{Tag: record.TypeQuat, Equal: geom.QuatEqual, Interp: snapshot.Squad()}

	Mat2 = Kind[geom.Mat2]{Tag: record.TypeMat2, Equal: geom.ApproxEqual[geom.Mat2]}
	Mat3 = Kind[geom.Mat3]{Tag: record.TypeMat3, Equal: geom.ApproxEqual[geom.Mat3]}
	Mat4 = Kind[geom.Mat4]{Tag: record.TypeMat4, Equal: geom.ApproxEqual[geom.Mat4]}

	BoolArray   = arrayKind(record.TypeBoolArray, exact[bool])
	StringArray = arrayKind(record.TypeStringArray, exact[string])
	IntArray    = arrayKind(record.TypeIntArray, exact[int32])
	FloatArray  = arrayKind(record.TypeFloatArray, exact[float32])
	DoubleArray = arrayKind(record.TypeDoubleArray, exact[float64])
	Vec2Array   = arrayKind(record.TypeVec2Array, geom.ApproxEqual[geom.Vec2])
	Vec3Array   = arrayKind(record.TypeVec3Array, geom.ApproxEqual[geom.Vec3])
	Vec4Array   = arrayKind(record.TypeVec4Array, geom.ApproxEqual[geom.Vec4])
	QuatArray   = arrayKind(record.TypeQuatArray, geom.QuatEqual)
	Mat2Array   = arrayKind(record.TypeMat2Array, geom.ApproxEqual[geom.Mat2])
	Mat3Array   = arrayKind(record.TypeMat3Array, geom.ApproxEqual[geom.Mat3])
	Mat4Array   = arrayKind(record.TypeMat4Array, geom.ApproxEqual[geom.Mat4])

	// Transform is stored as a packed vec4 triple.
	Transform = Kind[geom.Transform]{
		Tag:    record.TypePackedTransform,
		Equal:  geom.Transform.ApproxEqual,
		Interp: snapshot.TransformInterpolator(),
		encode: func(v geom.Transform) any { return v.Pack() },
		decode: func(raw any) (geom.Transform, error) {
			packed, ok := raw.([]geom.Vec4)
			if !ok {
				return geom.Transform{}, fmt.Errorf("%w: %s got %T", record.ErrTypeMismatch, record.TypePackedTransform, raw)
			}
			return geom.UnpackTransform(packed)
		},
	}
)
