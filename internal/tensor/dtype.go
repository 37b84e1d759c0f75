package tensor

// DataType represents runtime type information for tensors.
//
// The set mirrors the dtypes that can appear in a params file, plus the
// unsigned word types used for sign-packed weights.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Float16
	Uint8
	Int32
	Int8
	Int64
	Uint32
	Uint64
)

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Uint8, Int8:
		return 1
	case Float16:
		return 2
	case Float32, Int32, Uint32:
		return 4
	case Float64, Int64, Uint64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case Uint8:
		return "uint8"
	case Int32:
		return "int32"
	case Int8:
		return "int8"
	case Int64:
		return "int64"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	default:
		return "unknown"
	}
}
