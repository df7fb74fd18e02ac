package snapshot

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/geom"
)

func TestBuffer_Empty(t *testing.T) {
	buf := New(4, Hermite(Float64Ops))

	_, ok := buf.GetLerpedValue(1)
	assert.False(t, ok)
	_, ok = buf.MostRecent()
	assert.False(t, ok)
}

func TestBuffer_SingleSample(t *testing.T) {
	buf := New(4, Hermite(Float64Ops))
	buf.SaveSnapshot(1, 42)

	for _, q := range []float64{0, 1, 5} {
		v, ok := buf.GetLerpedValue(q)
		require.True(t, ok)
		assert.Equal(t, 42.0, v)
	}
}

func TestBuffer_SmoothingRoundTrip(t *testing.T) {
	buf := New(8, Hermite(Float64Ops))
	buf.SaveSnapshot(10, 0)
	buf.SaveSnapshot(11, 1)
	buf.SaveSnapshot(12, 2)

	v, ok := buf.GetLerpedValue(11)
	require.True(t, ok)
	assert.Equal(t, 1.0, v, "exact sample hit")

	v, ok = buf.GetLerpedValue(10.5)
	require.True(t, ok)
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, 1.0)
}

func TestBuffer_Clamp(t *testing.T) {
	buf := New(8, Hermite(Float64Ops))
	buf.SaveSnapshot(1, 10)
	buf.SaveSnapshot(2, 20)

	v, _ := buf.GetLerpedValue(0)
	assert.Equal(t, 10.0, v)

	// за пределами последней выборки держим последнее значение
	v, _ = buf.GetLerpedValue(100)
	assert.Equal(t, 20.0, v)
}

func TestBuffer_Eviction(t *testing.T) {
	buf := New(3, Hermite(Float64Ops))
	for i := 0; i < 5; i++ {
		buf.SaveSnapshot(float64(i), float64(i*10))
	}

	assert.Equal(t, 3, buf.Len())
	samples := buf.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, []float64{2, 3, 4}, []float64{samples[0].Time, samples[1].Time, samples[2].Time})

	v, _ := buf.MostRecent()
	assert.Equal(t, 40.0, v)
}

func TestBuffer_StrictlyIncreasing(t *testing.T) {
	buf := New(4, Hermite(Float64Ops))

	assert.True(t, buf.SaveSnapshot(2, 1))
	assert.False(t, buf.SaveSnapshot(1, 5), "stale sample is dropped")
	assert.True(t, buf.SaveSnapshot(2, 3), "same timestamp replaces the newest value")

	assert.Equal(t, 1, buf.Len())
	v, _ := buf.MostRecent()
	assert.Equal(t, 3.0, v)
}

func TestBuffer_SetCurrentValue(t *testing.T) {
	buf := New(4, Hermite(Float64Ops))
	buf.SaveSnapshot(1, 1)
	buf.SaveSnapshot(2, 2)
	buf.SaveSnapshot(3, 3)

	buf.SetCurrentValue(2, 7)

	samples := buf.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, 1.0, samples[0].Time)
	assert.Equal(t, Sample[float64]{Time: 2, Value: 7}, samples[1])
}

func TestBuffer_Reset(t *testing.T) {
	buf := New(4, Hermite(Float64Ops))
	buf.SaveSnapshot(1, 1)
	buf.Reset()
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 4, buf.Cap())
}

func TestBuffer_Offset(t *testing.T) {
	buf := New[float64](4, nil)
	assert.Equal(t, DefaultOffset, buf.Offset())
	buf.SetOffset(-0.1)
	assert.Equal(t, -0.1, buf.Offset())
}

func TestHermite_UnevenSpacing(t *testing.T) {
	buf := New(8, Hermite(Float64Ops))
	// линейная функция v = 2t при неравномерных интервалах остается линейной
	for _, ts := range []float64{0, 0.1, 0.5, 0.6, 1.5} {
		buf.SaveSnapshot(ts, 2*ts)
	}

	for _, q := range []float64{0.05, 0.3, 0.55, 1.0} {
		v, ok := buf.GetLerpedValue(q)
		require.True(t, ok)
		assert.InDelta(t, 2*q, v, 1e-9, "query %v", q)
	}
}

func TestHermite_Vectors(t *testing.T) {
	buf := New(8, Hermite(VectorOps[geom.Vec3]()))
	buf.SaveSnapshot(0, geom.Vec3{})
	buf.SaveSnapshot(1, geom.Vec3{1, 2, 0})
	buf.SaveSnapshot(2, geom.Vec3{2, 4, 0})

	v, ok := buf.GetLerpedValue(1.5)
	require.True(t, ok)
	assert.True(t, geom.ApproxEqual(v, geom.Vec3{1.5, 3, 0}), "got %+v", v)
}

func TestHermite_Float32(t *testing.T) {
	buf := New(4, Hermite(Float32Ops))
	buf.SaveSnapshot(0, float32(0))
	buf.SaveSnapshot(1, float32(10))

	v, ok := buf.GetLerpedValue(0.5)
	require.True(t, ok)
	assert.InDelta(t, 5.0, float64(v), 1e-5)
}

func TestSlerpAndSquad(t *testing.T) {
	up := geom.Vec3{0, 1, 0}

	t.Run("slerp with two samples", func(t *testing.T) {
		buf := New(4, Squad())
		buf.SaveSnapshot(0, mgl64.QuatIdent())
		buf.SaveSnapshot(1, mgl64.QuatRotate(math.Pi/2, up))

		v, ok := buf.GetLerpedValue(0.5)
		require.True(t, ok)
		assert.True(t, geom.QuatEqual(v, mgl64.QuatRotate(math.Pi/4, up)))
	})

	t.Run("squad with four samples", func(t *testing.T) {
		buf := New(8, Squad())
		for i := 0; i < 4; i++ {
			buf.SaveSnapshot(float64(i), mgl64.QuatRotate(float64(i)*0.4, up))
		}

		v, ok := buf.GetLerpedValue(1.5)
		require.True(t, ok)
		assert.True(t, geom.QuatEqual(v, mgl64.QuatRotate(0.6, up)))
	})

	t.Run("plain slerp interpolator", func(t *testing.T) {
		buf := New(4, Slerp())
		buf.SaveSnapshot(0, mgl64.QuatIdent())
		buf.SaveSnapshot(2, mgl64.QuatRotate(1, up))

		v, _ := buf.GetLerpedValue(1)
		assert.True(t, geom.QuatEqual(v, mgl64.QuatRotate(0.5, up)))
	})
}

func TestTransformInterpolator(t *testing.T) {
	up := geom.Vec3{0, 1, 0}
	buf := New(4, TransformInterpolator())

	buf.SaveSnapshot(0, geom.Transform{
		Position: geom.Vec3{},
		Rotation: mgl64.QuatIdent(),
		Scale:    geom.Vec3{1, 1, 1},
	})
	buf.SaveSnapshot(1, geom.Transform{
		Position: geom.Vec3{2, 0, 0},
		Rotation: mgl64.QuatRotate(1, up),
		Scale:    geom.Vec3{3, 3, 3},
	})

	v, ok := buf.GetLerpedValue(0.5)
	require.True(t, ok)
	assert.True(t, geom.ApproxEqual(v.Position, geom.Vec3{1, 0, 0}), "position %+v", v.Position)
	assert.True(t, geom.QuatEqual(v.Rotation, mgl64.QuatRotate(0.5, up)))
	assert.True(t, geom.ApproxEqual(v.Scale, geom.Vec3{2, 2, 2}), "scale %+v", v.Scale)
}
