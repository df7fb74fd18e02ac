package record

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/geom"
)

func TestParsePersistence(t *testing.T) {
	tests := []struct {
		input   string
		want    Persistence
		wantErr bool
	}{
		{"session", PersistenceSession, false},
		{"Ephemeral", PersistenceEphemeral, false},
		{"owner", PersistenceOwner, false},
		{"persist", PersistenceDurable, false},
		{" durable ", PersistenceDurable, false},
		{"forever", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePersistence(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPersistence)
				assert.Contains(t, err.Error(), tt.input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPersistence_TextRoundTrip(t *testing.T) {
	var p Persistence
	require.NoError(t, p.UnmarshalText([]byte("owner")))
	assert.Equal(t, PersistenceOwner, p)

	text, err := PersistenceDurable.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "persist", string(text))

	assert.Error(t, p.UnmarshalText([]byte("nope")))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(TypeInt, int32(3)))
	assert.ErrorIs(t, Validate(TypeInt, 3), ErrTypeMismatch, "plain int is not the int32 representation")
	assert.ErrorIs(t, Validate(TypeInvalid, 3), ErrUnsupportedType)
	assert.ErrorIs(t, Validate(TypeString, 1.5), ErrTypeMismatch)
	assert.NoError(t, Validate(TypePackedTransform, geom.IdentityTransform().Pack()))
	assert.ErrorIs(t, Validate(TypePackedTransform, []geom.Vec4{{}}), ErrTypeMismatch)
}

func TestParseTypeTag(t *testing.T) {
	tag, err := ParseTypeTag("quat_array")
	require.NoError(t, err)
	assert.Equal(t, TypeQuatArray, tag)

	_, err = ParseTypeTag("vec5")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestMemory_PutGet(t *testing.T) {
	rec := NewMemory("puck", PersistenceSession)

	require.NoError(t, rec.Put(TypeInt, "score", int32(7)))
	require.NoError(t, rec.Put(TypeVec3, "pos", geom.Vec3{1, 0, 0}))

	assert.True(t, rec.Has("score"))
	assert.Equal(t, []string{"pos", "score"}, rec.Keys())

	score, err := Read[int32](rec, TypeInt, "score")
	require.NoError(t, err)
	assert.Equal(t, int32(7), score)

	_, err = rec.Get(TypeFloat, "score")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = rec.Get(TypeInt, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = rec.Get(TypeInvalid, "score")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assert.ErrorIs(t, rec.Put(TypeInt, "score", "seven"), ErrTypeMismatch)
}

func TestMemory_Owner(t *testing.T) {
	rec := NewMemory("puck", PersistenceSession)
	assert.Nil(t, rec.Owner())

	alice := &Participant{UserID: "u1", ConnectionID: "c1"}
	rec.SetOwner(alice)

	owner := rec.Owner()
	require.NotNil(t, owner)
	assert.True(t, owner.Is(alice))

	// возвращается копия
	owner.ConnectionID = "changed"
	assert.Equal(t, "c1", rec.Owner().ConnectionID)

	rec.SetOwner(nil)
	assert.Nil(t, rec.Owner())
}

func TestParticipant_Is(t *testing.T) {
	a := &Participant{UserID: "u1", ConnectionID: "c1"}
	b := &Participant{UserID: "u1", ConnectionID: "c2"}

	assert.True(t, a.Is(&Participant{ConnectionID: "c1"}))
	assert.False(t, a.Is(b), "same user on another connection is a different participant")
	assert.False(t, a.Is(nil))

	var none *Participant
	assert.False(t, none.Is(a))
}

func TestValue_JSONRoundTrip(t *testing.T) {
	values := map[string]Value{
		"score": {Tag: TypeInt, Data: int32(7)},
		"name":  {Tag: TypeString, Data: "puck"},
		"rot":   {Tag: TypeQuat, Data: mgl64.QuatIdent()},
		"xf":    {Tag: TypePackedTransform, Data: geom.IdentityTransform().Pack()},
		"m":     {Tag: TypeMat3, Data: mgl64.Ident3()},
	}

	data, err := json.Marshal(values)
	require.NoError(t, err)

	var decoded map[string]Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, values, decoded)

	_, err = json.Marshal(Value{Tag: TypeInt, Data: "bad"})
	assert.Error(t, err)
}

func TestMemory_SnapshotLoad(t *testing.T) {
	rec := NewMemory("a", PersistenceDurable)
	require.NoError(t, rec.Put(TypeBool, "on", true))

	other := NewMemory("a", PersistenceDurable)
	require.NoError(t, other.Load(rec.Snapshot()))
	assert.True(t, other.Has("on"))

	err := other.Load(map[string]Value{"x": {Tag: TypeBool, Data: 1}})
	assert.Error(t, err)
}
