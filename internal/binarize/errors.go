package binarize

import (
	"errors"
	"fmt"

	"github.com/wzhen1996/BMXNet/internal/tensor"
)

// Precondition errors. All of them abort the whole conversion; no partial
// output is used.
var (
	ErrUnsupportedDType  = errors.New("element width does not match packed word width")
	ErrShapeIncompatible = errors.New("shape incompatible with sign packing")
	ErrUnsupportedRole   = errors.New("only weight tensors can be binarized")
)

// TensorError reports which tensor violated a binarization precondition.
type TensorError struct {
	Key   string          // Store key of the offending tensor
	Shape tensor.Shape    // Its shape
	DType tensor.DataType // Its dtype
	Err   error           // The violated precondition
}

// Error implements the error interface.
func (e *TensorError) Error() string {
	return fmt.Sprintf("tensor %q (shape %v, dtype %s): %v", e.Key, e.Shape, e.DType, e.Err)
}

// Unwrap returns the violated precondition sentinel.
func (e *TensorError) Unwrap() error {
	return e.Err
}
