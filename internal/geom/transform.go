package geom

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a position/rotation/scale triple. On the wire it is packed as
// three Vec4 values: position, rotation and scale.
type Transform struct {
	Rotation Quat `json:"rotation"`
	Position Vec3 `json:"position"`
	Scale    Vec3 `json:"scale"`
}

// IdentityTransform has zero position, identity rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl64.QuatIdent(), Scale: Vec3{1, 1, 1}}
}

// ApproxEqual compares every component with its own equality rule.
func (t Transform) ApproxEqual(o Transform) bool {
	return ApproxEqual(t.Position, o.Position) &&
		QuatEqual(t.Rotation, o.Rotation) &&
		ApproxEqual(t.Scale, o.Scale)
}

// Pack encodes t as [position, rotation, scale].
func (t Transform) Pack() []Vec4 {
	return []Vec4{
		t.Position.Vec4(0),
		QuatToVec4(t.Rotation),
		t.Scale.Vec4(0),
	}
}

// UnpackTransform decodes the output of Pack.
func UnpackTransform(packed []Vec4) (Transform, error) {
	if len(packed) != 3 {
		return Transform{}, fmt.Errorf("packed transform must have 3 elements, got %d", len(packed))
	}
	return Transform{
		Position: packed[0].Vec3(),
		Rotation: QuatFromVec4(packed[1]),
		Scale:    packed[2].Vec3(),
	}, nil
}
