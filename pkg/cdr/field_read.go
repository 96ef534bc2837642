package cdr

import (
	wirecdr "github.com/blockberries/omgidl/internal/cdr"
	"github.com/blockberries/omgidl/pkg/idl"
)

// readField/readArrayDims/readElement mirror writeField/writeArrayDims/
// writeElement in pkg/cdr/field.go exactly, trading "encode a Value at
// offset" for "decode a Value from offset", so the two families stay in
// lockstep the same way their encode-side counterparts do.

func (d *decoder) readField(fi *idl.FieldInfo, offset int) (Value, int, error) {
	r := fi.Resolved
	if r.IsSequence {
		offset = wirecdr.Aligned(offset, 4)
		n, err := d.uint32At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError(fi.Name, "", offset, "truncated sequence length", err)
		}
		offset += 4
		if r.SequenceBound > 0 && int(n) > r.SequenceBound {
			return Value{}, 0, NewDecodeError(fi.Name, "", offset, "sequence exceeds declared bound", ErrBoundViolation)
		}
		items := make([]Value, 0, n)
		for i := uint32(0); i < n; i++ {
			var v Value
			var err error
			v, offset, err = d.readArrayDims(r.ArrayLengths, r, fi.TypeInfo, offset)
			if err != nil {
				return Value{}, 0, err
			}
			items = append(items, v)
		}
		return idl.List(items...), offset, nil
	}
	return d.readArrayDims(r.ArrayLengths, r, fi.TypeInfo, offset)
}

func (d *decoder) readArrayDims(dims []int, r idl.ResolvedType, typeInfo *idl.ComplexInfo, offset int) (Value, int, error) {
	if len(dims) == 0 {
		return d.readElement(scalarResolved(r), typeInfo, offset)
	}
	items := make([]Value, 0, dims[0])
	for i := 0; i < dims[0]; i++ {
		var v Value
		var err error
		v, offset, err = d.readArrayDims(dims[1:], r, typeInfo, offset)
		if err != nil {
			return Value{}, 0, err
		}
		items = append(items, v)
	}
	return idl.List(items...), offset, nil
}

func (d *decoder) readElement(r idl.ResolvedType, typeInfo *idl.ComplexInfo, offset int) (Value, int, error) {
	if typeInfo != nil {
		return d.readComplex(typeInfo, offset, 0)
	}
	if r.IsEnum {
		offset = wirecdr.Aligned(offset, 4)
		n, err := d.uint32At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated enum value", err)
		}
		return idl.Int(int64(n)), offset + 4, nil
	}
	switch r.Final {
	case "bool":
		if offset+1 > len(d.data) {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated bool", wirecdr.ErrTruncated)
		}
		v, _ := wirecdr.DecodeBool(d.data[offset:])
		return idl.Bool(v), offset + 1, nil
	case "int8":
		if offset+1 > len(d.data) {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated int8", wirecdr.ErrTruncated)
		}
		v, _ := wirecdr.DecodeInt8(d.data[offset:])
		return idl.Int(int64(v)), offset + 1, nil
	case "uint8", "byte", "octet", "char":
		if offset+1 > len(d.data) {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated "+r.Final, wirecdr.ErrTruncated)
		}
		v, _ := wirecdr.DecodeUint8(d.data[offset:])
		return idl.Int(int64(v)), offset + 1, nil
	case "int16":
		offset = wirecdr.Aligned(offset, 2)
		v, err := d.int16At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated int16", err)
		}
		return idl.Int(int64(v)), offset + 2, nil
	case "uint16", "wchar":
		offset = wirecdr.Aligned(offset, 2)
		v, err := d.uint16At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated "+r.Final, err)
		}
		return idl.Int(int64(v)), offset + 2, nil
	case "int32":
		offset = wirecdr.Aligned(offset, 4)
		v, err := d.int32At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated int32", err)
		}
		return idl.Int(int64(v)), offset + 4, nil
	case "uint32":
		offset = wirecdr.Aligned(offset, 4)
		v, err := d.uint32At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated uint32", err)
		}
		return idl.Int(int64(v)), offset + 4, nil
	case "int64":
		offset = wirecdr.Aligned(offset, 8)
		v, err := d.int64At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated int64", err)
		}
		return idl.Int(v), offset + 8, nil
	case "uint64":
		offset = wirecdr.Aligned(offset, 8)
		v, err := d.uint64At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated uint64", err)
		}
		return idl.Int(int64(v)), offset + 8, nil
	case "float32":
		offset = wirecdr.Aligned(offset, 4)
		if offset+4 > len(d.data) {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated float32", wirecdr.ErrTruncated)
		}
		v, _ := wirecdr.DecodeFloat32(d.data[offset:], d.order)
		return idl.Float(float64(v)), offset + 4, nil
	case "float64":
		offset = wirecdr.Aligned(offset, 8)
		if offset+8 > len(d.data) {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated float64", wirecdr.ErrTruncated)
		}
		v, _ := wirecdr.DecodeFloat64(d.data[offset:], d.order)
		return idl.Float(v), offset + 8, nil
	case "string":
		offset = wirecdr.Aligned(offset, 4)
		if offset > len(d.data) {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated string", wirecdr.ErrTruncated)
		}
		s, n, err := wirecdr.DecodeString(d.data[offset:], d.order)
		if err != nil {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated string", err)
		}
		if r.StringUpperBound > 0 && wirecdr.RuneCount(s) > r.StringUpperBound {
			return Value{}, 0, NewDecodeError("", "", offset, "string exceeds declared bound", ErrBoundViolation)
		}
		return idl.Str(s), offset + n, nil
	case "wstring":
		offset = wirecdr.Aligned(offset, 4)
		if offset > len(d.data) {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated wstring", wirecdr.ErrTruncated)
		}
		s, n, err := wirecdr.DecodeWString(d.data[offset:], d.order)
		if err != nil {
			return Value{}, 0, NewDecodeError("", "", offset, "truncated or invalid wstring", err)
		}
		if r.StringUpperBound > 0 && wirecdr.RuneCount(s) > r.StringUpperBound {
			return Value{}, 0, NewDecodeError("", "", offset, "wstring exceeds declared bound", ErrBoundViolation)
		}
		return idl.Str(s), offset + n, nil
	default:
		return Value{}, 0, NewDecodeError("", "", offset, "unknown primitive type "+r.Final, ErrValueShape)
	}
}

func (d *decoder) int16At(offset int) (int16, error) {
	if offset+2 > len(d.data) {
		return 0, wirecdr.ErrTruncated
	}
	return wirecdr.DecodeInt16(d.data[offset:], d.order)
}

func (d *decoder) uint16At(offset int) (uint16, error) {
	if offset+2 > len(d.data) {
		return 0, wirecdr.ErrTruncated
	}
	return wirecdr.DecodeUint16(d.data[offset:], d.order)
}

func (d *decoder) int32At(offset int) (int32, error) {
	if offset+4 > len(d.data) {
		return 0, wirecdr.ErrTruncated
	}
	return wirecdr.DecodeInt32(d.data[offset:], d.order)
}

func (d *decoder) int64At(offset int) (int64, error) {
	if offset+8 > len(d.data) {
		return 0, wirecdr.ErrTruncated
	}
	return wirecdr.DecodeInt64(d.data[offset:], d.order)
}

func (d *decoder) uint64At(offset int) (uint64, error) {
	if offset+8 > len(d.data) {
		return 0, wirecdr.ErrTruncated
	}
	return wirecdr.DecodeUint64(d.data[offset:], d.order)
}
