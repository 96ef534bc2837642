package cdr

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTruncated is returned by the Decode/Get helpers when the input is
// shorter than the value being read requires. Callers at the pkg/cdr
// layer translate this into a positioned BufferUnderflow error.
var ErrTruncated = errors.New("cdr: truncated buffer")

// Size constants for primitive CDR wire widths.
const (
	BoolSize    = 1
	Int8Size    = 1
	Uint8Size   = 1
	Int16Size   = 2
	Uint16Size  = 2
	Int32Size   = 4
	Uint32Size  = 4
	Float32Size = 4
	Int64Size   = 8
	Uint64Size  = 8
	Float64Size = 8
)

// AppendBool appends a CDR bool: a single signed byte, 0 or 1.
func AppendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// DecodeBool decodes a CDR bool from the first byte of data.
func DecodeBool(data []byte) (bool, error) {
	if len(data) < BoolSize {
		return false, ErrTruncated
	}
	return data[0] != 0, nil
}

// AppendUint8 appends a single byte.
func AppendUint8(buf []byte, v uint8) []byte { return append(buf, v) }

// DecodeUint8 decodes a single byte.
func DecodeUint8(data []byte) (uint8, error) {
	if len(data) < Uint8Size {
		return 0, ErrTruncated
	}
	return data[0], nil
}

// AppendInt8 appends a signed byte.
func AppendInt8(buf []byte, v int8) []byte { return append(buf, byte(v)) }

// DecodeInt8 decodes a signed byte.
func DecodeInt8(data []byte) (int8, error) {
	if len(data) < Int8Size {
		return 0, ErrTruncated
	}
	return int8(data[0]), nil
}

// AppendUint16 appends a 2-byte unsigned integer in the given byte order.
func AppendUint16(buf []byte, order binary.ByteOrder, v uint16) []byte {
	return order.AppendUint16(buf, v)
}

// DecodeUint16 decodes a 2-byte unsigned integer in the given byte order.
func DecodeUint16(data []byte, order binary.ByteOrder) (uint16, error) {
	if len(data) < Uint16Size {
		return 0, ErrTruncated
	}
	return order.Uint16(data), nil
}

// AppendInt16 appends a 2-byte signed integer in the given byte order.
func AppendInt16(buf []byte, order binary.ByteOrder, v int16) []byte {
	return order.AppendUint16(buf, uint16(v))
}

// DecodeInt16 decodes a 2-byte signed integer in the given byte order.
func DecodeInt16(data []byte, order binary.ByteOrder) (int16, error) {
	u, err := DecodeUint16(data, order)
	return int16(u), err
}

// AppendUint32 appends a 4-byte unsigned integer in the given byte order.
func AppendUint32(buf []byte, order binary.ByteOrder, v uint32) []byte {
	return order.AppendUint32(buf, v)
}

// DecodeUint32 decodes a 4-byte unsigned integer in the given byte order.
func DecodeUint32(data []byte, order binary.ByteOrder) (uint32, error) {
	if len(data) < Uint32Size {
		return 0, ErrTruncated
	}
	return order.Uint32(data), nil
}

// AppendInt32 appends a 4-byte signed integer in the given byte order.
func AppendInt32(buf []byte, order binary.ByteOrder, v int32) []byte {
	return order.AppendUint32(buf, uint32(v))
}

// DecodeInt32 decodes a 4-byte signed integer in the given byte order.
func DecodeInt32(data []byte, order binary.ByteOrder) (int32, error) {
	u, err := DecodeUint32(data, order)
	return int32(u), err
}

// AppendUint64 appends an 8-byte unsigned integer in the given byte order.
func AppendUint64(buf []byte, order binary.ByteOrder, v uint64) []byte {
	return order.AppendUint64(buf, v)
}

// DecodeUint64 decodes an 8-byte unsigned integer in the given byte order.
func DecodeUint64(data []byte, order binary.ByteOrder) (uint64, error) {
	if len(data) < Uint64Size {
		return 0, ErrTruncated
	}
	return order.Uint64(data), nil
}

// AppendInt64 appends an 8-byte signed integer in the given byte order.
func AppendInt64(buf []byte, order binary.ByteOrder, v int64) []byte {
	return order.AppendUint64(buf, uint64(v))
}

// DecodeInt64 decodes an 8-byte signed integer in the given byte order.
func DecodeInt64(data []byte, order binary.ByteOrder) (int64, error) {
	u, err := DecodeUint64(data, order)
	return int64(u), err
}

// AppendFloat32 appends a 4-byte IEEE-754 float in the given byte order.
//
// Unlike a general-purpose codec optimized for its own deterministic wire
// format, this does not canonicalize NaN or negative zero: CDR interop
// requires the exact bit pattern a DDS/ROS 2 producer wrote to survive a
// decode/encode round trip unchanged.
func AppendFloat32(buf []byte, order binary.ByteOrder, v float32) []byte {
	return order.AppendUint32(buf, math.Float32bits(v))
}

// DecodeFloat32 decodes a 4-byte IEEE-754 float in the given byte order.
func DecodeFloat32(data []byte, order binary.ByteOrder) (float32, error) {
	bits, err := DecodeUint32(data, order)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// AppendFloat64 appends an 8-byte IEEE-754 float in the given byte order.
func AppendFloat64(buf []byte, order binary.ByteOrder, v float64) []byte {
	return order.AppendUint64(buf, math.Float64bits(v))
}

// DecodeFloat64 decodes an 8-byte IEEE-754 float in the given byte order.
func DecodeFloat64(data []byte, order binary.ByteOrder) (float64, error) {
	bits, err := DecodeUint64(data, order)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// SizeOfPrimitive returns the wire width of one of the core primitive
// kind names, or 0 if name does not name a fixed-width primitive (e.g.
// "string" has no fixed width).
func SizeOfPrimitive(name string) int {
	switch name {
	case "bool":
		return BoolSize
	case "int8", "uint8", "byte", "octet", "char":
		return 1
	case "int16", "uint16", "wchar":
		return 2
	case "int32", "uint32", "float32":
		return 4
	case "int64", "uint64", "float64":
		return 8
	default:
		return 0
	}
}
