// Package tensor provides the core tensor representation used by the
// model converter: an explicit Shape, runtime DataType tags covering the
// params-file dtype surface, and RawTensor, a flat row-major byte buffer
// with zero-copy typed views.
//
// Tensors here are plain data carriers. There is no compute backend, no
// autograd and no device placement: the converter only ever reads element
// values and replaces whole tensors.
package tensor
