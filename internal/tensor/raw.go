package tensor

import (
	"fmt"
	"unsafe"

	"github.com/x448/float16"
)

// RawTensor is the low-level tensor representation: a shape, a dtype and a
// flat row-major byte buffer. Tensors loaded from a params file are owned
// exclusively by their store; the converter replaces tensors, it never
// aliases or mutates element data in place.
type RawTensor struct {
	data  []byte
	shape Shape
	dtype DataType
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zeroed.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:  make([]byte, shape.NumElements()*dtype.Size()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromFloat32 creates a Float32 tensor holding a copy of the given values.
// The number of values must match the shape's element count.
func FromFloat32(shape Shape, values []float32) (*RawTensor, error) {
	t, err := NewRaw(shape, Float32)
	if err != nil {
		return nil, err
	}
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("value count %d does not match shape %v (%d elements)",
			len(values), shape, shape.NumElements())
	}
	copy(t.AsFloat32(), values)
	return t, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsUint32 interprets the data as []uint32.
// Panics if the tensor's dtype is not Uint32.
func (r *RawTensor) AsUint32() []uint32 {
	if r.dtype != Uint32 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*uint32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsUint64 interprets the data as []uint64.
// Panics if the tensor's dtype is not Uint64.
func (r *RawTensor) AsUint64() []uint64 {
	if r.dtype != Uint64 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*uint64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	if r.dtype != Int64 {
		panic(fmt.Sprintf("tensor dtype is %s, not int64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return r.data // Already []byte = []uint8
}

// Float16Values decodes a Float16 tensor into a fresh []float32.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) Float16Values() []float32 {
	if r.dtype != Float16 {
		panic(fmt.Sprintf("tensor dtype is %s, not float16", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	raw := unsafe.Slice((*uint16)(unsafe.Pointer(&r.data[0])), r.NumElements())
	out := make([]float32, len(raw))
	for i, bits := range raw {
		out[i] = float16.Frombits(bits).Float32()
	}
	return out
}

// Clone creates a deep copy of the RawTensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:  data,
		shape: r.shape.Clone(),
		dtype: r.dtype,
	}
}
