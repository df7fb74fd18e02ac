package record

import (
	"encoding/json"
	"fmt"

	"github.com/iudanet/gophsync/internal/geom"
)

// TypeTag is the closed set of value types a record can hold.
type TypeTag int

const (
	TypeInvalid TypeTag = iota
	TypeBool
	TypeString
	TypeInt
	TypeFloat
	TypeDouble
	TypeVec2
	TypeVec3
	TypeVec4
	TypeQuat
	TypeMat2
	TypeMat3
	TypeMat4
	TypeBoolArray
	TypeStringArray
	TypeIntArray
	TypeFloatArray
	TypeDoubleArray
	TypeVec2Array
	TypeVec3Array
	TypeVec4Array
	TypeQuatArray
	TypeMat2Array
	TypeMat3Array
	TypeMat4Array
	// TypePackedTransform is a []geom.Vec4 of exactly three elements:
	// position, rotation, scale.
	TypePackedTransform
)

// codec describes how values of one tag are validated and decoded.
type codec struct {
	name   string
	check  func(v any) bool
	decode func(raw json.RawMessage) (any, error)
}

func codecFor[T any](name string) codec {
	return codec{
		name: name,
		check: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
		decode: func(raw json.RawMessage) (any, error) {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// codecs is the dispatch table from tag to Go representation.
var codecs = map[TypeTag]codec{
	TypeBool:        codecFor[bool]("bool"),
	TypeString:      codecFor[string]("string"),
	TypeInt:         codecFor[int32]("int"),
	TypeFloat:       codecFor[float32]("float"),
	TypeDouble:      codecFor[float64]("double"),
	TypeVec2:        codecFor[geom.Vec2]("vec2"),
	TypeVec3:        codecFor[geom.Vec3]("vec3"),
	TypeVec4:        codecFor[geom.Vec4]("vec4"),
	TypeQuat:        codecFor[geom.Quat]("quat"),
	TypeMat2:        codecFor[geom.Mat2]("mat2"),
	TypeMat3:        codecFor[geom.Mat3]("mat3"),
	TypeMat4:        codecFor[geom.Mat4]("mat4"),
	TypeBoolArray:   codecFor[[]bool]("bool_array"),
	TypeStringArray: codecFor[[]string]("string_array"),
	TypeIntArray:    codecFor[[]int32]("int_array"),
	TypeFloatArray:  codecFor[[]float32]("float_array"),
	TypeDoubleArray: codecFor[[]float64]("double_array"),
	TypeVec2Array:   codecFor[[]geom.Vec2]("vec2_array"),
	TypeVec3Array:   codecFor[[]geom.Vec3]("vec3_array"),
	TypeVec4Array:   codecFor[[]geom.Vec4]("vec4_array"),
	TypeQuatArray:   codecFor[[]geom.Quat]("quat_array"),
	TypeMat2Array:   codecFor[[]geom.Mat2]("mat2_array"),
	TypeMat3Array:   codecFor[[]geom.Mat3]("mat3_array"),
	TypeMat4Array:   codecFor[[]geom.Mat4]("mat4_array"),
	TypePackedTransform: {
		name: "packed_transform",
		check: func(v any) bool {
			packed, ok := v.([]geom.Vec4)
			return ok && len(packed) == 3
		},
		decode: func(raw json.RawMessage) (any, error) {
			var packed []geom.Vec4
			if err := json.Unmarshal(raw, &packed); err != nil {
				return nil, err
			}
			if len(packed) != 3 {
				return nil, fmt.Errorf("packed transform must have 3 elements, got %d", len(packed))
			}
			return packed, nil
		},
	},
}

func (t TypeTag) String() string {
	if c, ok := codecs[t]; ok {
		return c.name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Supported reports whether t is part of the closed tag set.
func (t TypeTag) Supported() bool {
	_, ok := codecs[t]
	return ok
}

// ParseTypeTag resolves a tag by its name.
func ParseTypeTag(name string) (TypeTag, error) {
	for tag, c := range codecs {
		if c.name == name {
			return tag, nil
		}
	}
	return TypeInvalid, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// Validate checks that v is the Go representation of tag.
func Validate(tag TypeTag, v any) error {
	c, ok := codecs[tag]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, tag)
	}
	if !c.check(v) {
		return fmt.Errorf("%w: %s got %T", ErrTypeMismatch, tag, v)
	}
	return nil
}

// Value is a tagged record value.
type Value struct {
	Data any
	Tag  TypeTag
}

type valueJSON struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON encodes the value together with its tag name.
func (v Value) MarshalJSON() ([]byte, error) {
	if err := Validate(v.Tag, v.Data); err != nil {
		return nil, err
	}
	data, err := json.Marshal(v.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s value: %w", v.Tag, err)
	}
	return json.Marshal(valueJSON{Type: v.Tag.String(), Data: data})
}

// UnmarshalJSON restores the concrete Go type from the tag name.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	tag, err := ParseTypeTag(raw.Type)
	if err != nil {
		return err
	}
	data, err := codecs[tag].decode(raw.Data)
	if err != nil {
		return fmt.Errorf("failed to decode %s value: %w", tag, err)
	}
	v.Tag = tag
	v.Data = data
	return nil
}

// Read fetches key from rec and asserts its Go type.
func Read[T any](rec Record, tag TypeTag, key string) (T, error) {
	var zero T
	raw, err := rec.Get(tag, key)
	if err != nil {
		return zero, err
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, key, raw)
	}
	return v, nil
}
