// Package binarize packs the signs of floating-point weight tensors into
// fixed-width binary words, the storage format consumed by XNOR-style
// convolution and fully-connected operators.
package binarize

import (
	"fmt"
	"strings"

	"github.com/wzhen1996/BMXNet/internal/ndarray"
	"github.com/wzhen1996/BMXNet/internal/tensor"
)

// WordBits is the width of a packed binary word.
type WordBits int

// Supported packed word widths.
const (
	Width32 WordBits = 32
	Width64 WordBits = 64
)

// DType returns the dtype tag of a packed tensor with this word width.
func (w WordBits) DType() tensor.DataType {
	if w == Width64 {
		return tensor.Uint64
	}
	return tensor.Uint32
}

// Valid reports whether w is a supported word width.
func (w WordBits) Valid() bool {
	return w == Width32 || w == Width64
}

// DefaultTargetLayers are the layer-name substrings whose weight tensors
// get binarized.
var DefaultTargetLayers = []string{"qconvolution", "qfullyconnected"}

// Binarize packs the signs of t's elements into binary words and returns
// the packed tensor: a 1-D tensor of NumElements/bits words with dtype
// Uint32 or Uint64.
//
// Bit order is LSB-first: bit i of word g holds the sign of flattened
// element g*bits+i in row-major order, 1 for values >= 0 and 0 for
// negative values. Any unpacking routine must use the same convention.
//
// Preconditions: t must be a float tensor whose element width matches the
// word width (Float32 for Width32, Float64 for Width64), must have rank
// >= 2, and its second dimension (the input-depth axis) must be divisible
// by the word width. The depth axis check is what lets a downstream
// operator reconstruct per-channel layout from the flat word stream.
func Binarize(t *tensor.RawTensor, bits WordBits) (*tensor.RawTensor, error) {
	switch {
	case bits == Width32 && t.DType() == tensor.Float32:
	case bits == Width64 && t.DType() == tensor.Float64:
	default:
		return nil, fmt.Errorf("%w: dtype %s for %d-bit words", ErrUnsupportedDType, t.DType(), bits)
	}

	shape := t.Shape()
	if len(shape) < 2 {
		return nil, fmt.Errorf("%w: rank %d, need at least 2", ErrShapeIncompatible, len(shape))
	}
	if shape[1]%int(bits) != 0 {
		return nil, fmt.Errorf("%w: input depth %d not divisible by %d", ErrShapeIncompatible, shape[1], int(bits))
	}

	n := t.NumElements()
	packed, err := tensor.NewRaw(tensor.Shape{n / int(bits)}, bits.DType())
	if err != nil {
		return nil, err
	}

	if bits == Width64 {
		packSigns64(t.AsFloat64(), packed.AsUint64())
	} else {
		packSigns32(t.AsFloat32(), packed.AsUint32())
	}
	return packed, nil
}

func packSigns32(values []float32, words []uint32) {
	for g := range words {
		var word uint32
		for i := 0; i < 32; i++ {
			if values[g*32+i] >= 0 {
				word |= 1 << uint(i)
			}
		}
		words[g] = word
	}
}

func packSigns64(values []float64, words []uint64) {
	for g := range words {
		var word uint64
		for i := 0; i < 64; i++ {
			if values[g*64+i] >= 0 {
				word |= 1 << uint(i)
			}
		}
		words[g] = word
	}
}

// ConvertStore binarizes every weight tensor whose key contains one of
// the targetLayers substrings (case-insensitive), replacing each matched
// tensor in place under its key. All other entries pass through untouched
// and entry order is preserved. Returns the binarized keys in store order.
//
// Within a matched layer, only the weight tensor is binarized. Bias
// tensors are auxiliary and pass through unchanged. A matched key that is
// neither a weight nor a bias is an error: nothing else may be silently
// packed or silently skipped.
func ConvertStore(store *ndarray.Store, targetLayers []string, bits WordBits) ([]string, error) {
	var converted []string
	for _, key := range store.Keys() {
		if !matchesTarget(key, targetLayers) {
			continue
		}
		t, _ := store.Get(key)
		if !strings.Contains(key, "weight") {
			if strings.Contains(key, "bias") {
				continue
			}
			return nil, &TensorError{Key: key, Shape: t.Shape(), DType: t.DType(), Err: ErrUnsupportedRole}
		}

		packed, err := Binarize(t, bits)
		if err != nil {
			return nil, &TensorError{Key: key, Shape: t.Shape(), DType: t.DType(), Err: err}
		}
		store.Set(key, packed)
		converted = append(converted, key)
	}
	return converted, nil
}

func matchesTarget(key string, targetLayers []string) bool {
	lower := strings.ToLower(key)
	for _, target := range targetLayers {
		if strings.Contains(lower, strings.ToLower(target)) {
			return true
		}
	}
	return false
}
