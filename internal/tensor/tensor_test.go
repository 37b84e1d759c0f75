package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"conv weight", Shape{64, 32, 3, 3}, 64 * 32 * 3 * 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shape.NumElements())
		})
	}
}

func TestShapeValidate(t *testing.T) {
	require.NoError(t, Shape{2, 3}.Validate())
	require.Error(t, Shape{2, 0}.Validate())
	require.Error(t, Shape{-1, 3}.Validate())
}

func TestShapeEqualClone(t *testing.T) {
	s := Shape{4, 2}
	clone := s.Clone()
	assert.True(t, s.Equal(clone))

	clone[0] = 9
	assert.False(t, s.Equal(clone), "clone must not share backing array")
	assert.False(t, s.Equal(Shape{4}))
}

func TestShapeComputeStrides(t *testing.T) {
	assert.Equal(t, []int{6, 3, 1}, Shape{2, 2, 3}.ComputeStrides())
	assert.Equal(t, []int{1}, Shape{7}.ComputeStrides())
}

func TestNewRawZeroed(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32)
	require.NoError(t, err)

	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())
	for _, v := range raw.AsFloat32() {
		assert.Zero(t, v)
	}

	_, err = NewRaw(Shape{2, 0}, Float32)
	require.Error(t, err)
}

func TestFromFloat32(t *testing.T) {
	values := []float32{1, -2, 3, -4}
	raw, err := FromFloat32(Shape{2, 2}, values)
	require.NoError(t, err)
	assert.Equal(t, values, raw.AsFloat32())

	_, err = FromFloat32(Shape{2, 2}, []float32{1})
	require.Error(t, err)
}

func TestTypedViewsShareBuffer(t *testing.T) {
	raw, err := NewRaw(Shape{4}, Uint32)
	require.NoError(t, err)

	raw.AsUint32()[2] = 0xDEADBEEF
	assert.Equal(t, uint32(0xDEADBEEF), raw.AsUint32()[2])
	assert.Equal(t, byte(0xEF), raw.Data()[8], "views must write through to the raw buffer")
}

func TestTypedViewDTypeMismatchPanics(t *testing.T) {
	raw, err := NewRaw(Shape{2}, Float32)
	require.NoError(t, err)
	assert.Panics(t, func() { raw.AsUint64() })
	assert.Panics(t, func() { raw.Float16Values() })
}

func TestFloat16Values(t *testing.T) {
	raw, err := NewRaw(Shape{3}, Float16)
	require.NoError(t, err)

	want := []float32{1.5, -2.25, 0}
	bits := raw.Data()
	for i, v := range want {
		h := float16.Fromfloat32(v).Bits()
		bits[2*i] = byte(h)
		bits[2*i+1] = byte(h >> 8)
	}
	assert.Equal(t, want, raw.Float16Values())
}

func TestCloneIsDeep(t *testing.T) {
	raw, err := FromFloat32(Shape{2}, []float32{1, 2})
	require.NoError(t, err)

	clone := raw.Clone()
	clone.AsFloat32()[0] = 99
	assert.Equal(t, float32(1), raw.AsFloat32()[0])
	assert.True(t, raw.Shape().Equal(clone.Shape()))
}

func TestDataTypeSizeAndString(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 2, Float16.Size())
	assert.Equal(t, 8, Uint64.Size())
	assert.Equal(t, "uint32", Uint32.String())
	assert.Equal(t, "float32", Float32.String())
}
