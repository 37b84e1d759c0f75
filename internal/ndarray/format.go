package ndarray

import "github.com/wzhen1996/BMXNet/internal/tensor"

// A params file is a little-endian NDArray list:
//
//	[8 bytes: list magic (uint64)]
//	[8 bytes: reserved (uint64, zero)]
//	[8 bytes: ndarray count (uint64)]
//	per array:
//	    [4 bytes: ndim (uint32)]
//	    [8 bytes each: dims (int64)]
//	    [4+4 bytes: device type, device id (int32)]
//	    [4 bytes: dtype flag (int32)]
//	    [raw element bytes, row-major]
//	[8 bytes: key count (uint64), must equal ndarray count]
//	per key: [8 bytes: length (uint64)] [bytes]

// Format constants.
const (
	// ListMagic identifies an NDArray list file.
	ListMagic uint64 = 0x112

	// DevTypeCPU is the device type written for every array.
	DevTypeCPU int32 = 1

	// Sanity bounds rejected at load time.
	MaxRank       = 32
	MaxNameLength = 1 << 16
	MaxTensors    = 1 << 20
)

// Dtype flags as stored in the params file.
const (
	FlagFloat32 int32 = 0
	FlagFloat64 int32 = 1
	FlagFloat16 int32 = 2
	FlagUint8   int32 = 3
	FlagInt32   int32 = 4
	FlagInt8    int32 = 5
	FlagInt64   int32 = 6
	FlagUint32  int32 = 7
	FlagUint64  int32 = 8
)

// dtypeFromFlag maps a stored dtype flag to a tensor.DataType.
func dtypeFromFlag(flag int32) (tensor.DataType, bool) {
	switch flag {
	case FlagFloat32:
		return tensor.Float32, true
	case FlagFloat64:
		return tensor.Float64, true
	case FlagFloat16:
		return tensor.Float16, true
	case FlagUint8:
		return tensor.Uint8, true
	case FlagInt32:
		return tensor.Int32, true
	case FlagInt8:
		return tensor.Int8, true
	case FlagInt64:
		return tensor.Int64, true
	case FlagUint32:
		return tensor.Uint32, true
	case FlagUint64:
		return tensor.Uint64, true
	default:
		return 0, false
	}
}

// flagFromDType maps a tensor.DataType to its stored dtype flag.
func flagFromDType(dt tensor.DataType) int32 {
	switch dt {
	case tensor.Float32:
		return FlagFloat32
	case tensor.Float64:
		return FlagFloat64
	case tensor.Float16:
		return FlagFloat16
	case tensor.Uint8:
		return FlagUint8
	case tensor.Int32:
		return FlagInt32
	case tensor.Int8:
		return FlagInt8
	case tensor.Int64:
		return FlagInt64
	case tensor.Uint32:
		return FlagUint32
	case tensor.Uint64:
		return FlagUint64
	default:
		panic("unknown data type")
	}
}
