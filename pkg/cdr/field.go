package cdr

import (
	wirecdr "github.com/blockberries/omgidl/internal/cdr"
	"github.com/blockberries/omgidl/pkg/idl"
)

// primitiveAlign returns the CDR alignment width for a canonical primitive
// name. Strings align their 4-byte length prefix; the character data that
// follows carries no further alignment of its own.
func primitiveAlign(name string) int {
	switch name {
	case "bool", "int8", "uint8", "byte", "octet", "char":
		return 1
	case "int16", "uint16", "wchar":
		return 2
	case "int32", "uint32", "float32", "string", "wstring":
		return 4
	case "int64", "uint64", "float64":
		return 8
	default:
		return 1
	}
}

// scalarResolved strips the array/sequence modifiers from a ResolvedType,
// leaving just the element's own Final/IsEnum/StringUpperBound — used when
// recursing into one element of an array or sequence.
func scalarResolved(r idl.ResolvedType) idl.ResolvedType {
	return idl.ResolvedType{Final: r.Final, IsEnum: r.IsEnum, StringUpperBound: r.StringUpperBound}
}

// --- size ---

func (w *Writer) sizeField(fi *idl.FieldInfo, v Value, offset int) (int, error) {
	r := fi.Resolved
	if r.IsSequence {
		offset = wirecdr.Aligned(offset, 4)
		offset += 4
		if v.Kind != idl.KindList {
			return 0, NewEncodeError(fi.Name, "", "expected a sequence value", ErrValueShape)
		}
		if r.SequenceBound > 0 && len(v.List) > r.SequenceBound {
			return 0, NewEncodeError(fi.Name, "", "sequence exceeds declared bound", ErrBoundViolation)
		}
		var err error
		for _, item := range v.List {
			offset, err = w.sizeArrayDims(r.ArrayLengths, r, fi.TypeInfo, item, offset)
			if err != nil {
				return 0, err
			}
		}
		return offset, nil
	}
	return w.sizeArrayDims(r.ArrayLengths, r, fi.TypeInfo, v, offset)
}

func (w *Writer) sizeArrayDims(dims []int, r idl.ResolvedType, typeInfo *idl.ComplexInfo, v Value, offset int) (int, error) {
	if len(dims) == 0 {
		return w.sizeElement(scalarResolved(r), typeInfo, v, offset)
	}
	if v.Kind != idl.KindList || len(v.List) != dims[0] {
		return 0, NewEncodeError("", "", "expected a fixed array of the declared length", ErrValueShape)
	}
	var err error
	for _, item := range v.List {
		offset, err = w.sizeArrayDims(dims[1:], r, typeInfo, item, offset)
		if err != nil {
			return 0, err
		}
	}
	return offset, nil
}

func (w *Writer) sizeElement(r idl.ResolvedType, typeInfo *idl.ComplexInfo, v Value, offset int) (int, error) {
	if typeInfo != nil {
		return w.sizeComplex(typeInfo, v, offset)
	}
	if r.IsEnum {
		return wirecdr.Aligned(offset, 4) + 4, nil
	}
	switch r.Final {
	case "string":
		if v.Kind != idl.KindString {
			return 0, NewEncodeError("", "", "expected a string value", ErrValueShape)
		}
		if r.StringUpperBound > 0 && wirecdr.RuneCount(v.Str) > r.StringUpperBound {
			return 0, NewEncodeError("", "", "string exceeds declared bound", ErrBoundViolation)
		}
		return wirecdr.Aligned(offset, 4) + wirecdr.SizeOfString(v.Str), nil
	case "wstring":
		if v.Kind != idl.KindString {
			return 0, NewEncodeError("", "", "expected a string value", ErrValueShape)
		}
		if r.StringUpperBound > 0 && wirecdr.RuneCount(v.Str) > r.StringUpperBound {
			return 0, NewEncodeError("", "", "wstring exceeds declared bound", ErrBoundViolation)
		}
		n, err := wirecdr.SizeOfWString(v.Str)
		if err != nil {
			return 0, NewEncodeError("", "", "wstring is not valid UTF-8", err)
		}
		return wirecdr.Aligned(offset, 4) + n, nil
	default:
		width := wirecdr.SizeOfPrimitive(r.Final)
		if width == 0 {
			return 0, NewEncodeError("", "", "unknown primitive type "+r.Final, ErrValueShape)
		}
		return wirecdr.Aligned(offset, primitiveAlign(r.Final)) + width, nil
	}
}

// --- write ---

func (w *Writer) writeField(buf []byte, fi *idl.FieldInfo, v Value) ([]byte, error) {
	r := fi.Resolved
	if r.IsSequence {
		if v.Kind != idl.KindList {
			return nil, NewEncodeError(fi.Name, "", "expected a sequence value", ErrValueShape)
		}
		if r.SequenceBound > 0 && len(v.List) > r.SequenceBound {
			return nil, NewEncodeError(fi.Name, "", "sequence exceeds declared bound", ErrBoundViolation)
		}
		buf = alignBuf(buf, 4)
		buf = wirecdr.AppendUint32(buf, w.order, uint32(len(v.List)))
		var err error
		for _, item := range v.List {
			buf, err = w.writeArrayDims(buf, r.ArrayLengths, r, fi.TypeInfo, item)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	return w.writeArrayDims(buf, r.ArrayLengths, r, fi.TypeInfo, v)
}

func (w *Writer) writeArrayDims(buf []byte, dims []int, r idl.ResolvedType, typeInfo *idl.ComplexInfo, v Value) ([]byte, error) {
	if len(dims) == 0 {
		return w.writeElement(buf, scalarResolved(r), typeInfo, v)
	}
	if v.Kind != idl.KindList || len(v.List) != dims[0] {
		return nil, NewEncodeError("", "", "expected a fixed array of the declared length", ErrValueShape)
	}
	var err error
	for _, item := range v.List {
		buf, err = w.writeArrayDims(buf, dims[1:], r, typeInfo, item)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (w *Writer) writeElement(buf []byte, r idl.ResolvedType, typeInfo *idl.ComplexInfo, v Value) ([]byte, error) {
	if typeInfo != nil {
		return w.writeComplex(buf, typeInfo, v)
	}
	if r.IsEnum {
		buf = alignBuf(buf, 4)
		return wirecdr.AppendUint32(buf, w.order, uint32(v.Int)), nil
	}
	switch r.Final {
	case "bool":
		return wirecdr.AppendBool(buf, v.Bool), nil
	case "int8":
		return wirecdr.AppendInt8(buf, int8(v.Int)), nil
	case "uint8", "byte", "octet", "char":
		return wirecdr.AppendUint8(buf, uint8(v.Int)), nil
	case "int16":
		buf = alignBuf(buf, 2)
		return wirecdr.AppendInt16(buf, w.order, int16(v.Int)), nil
	case "uint16", "wchar":
		buf = alignBuf(buf, 2)
		return wirecdr.AppendUint16(buf, w.order, uint16(v.Int)), nil
	case "int32":
		buf = alignBuf(buf, 4)
		return wirecdr.AppendInt32(buf, w.order, int32(v.Int)), nil
	case "uint32":
		buf = alignBuf(buf, 4)
		return wirecdr.AppendUint32(buf, w.order, uint32(v.Int)), nil
	case "int64":
		buf = alignBuf(buf, 8)
		return wirecdr.AppendInt64(buf, w.order, v.Int), nil
	case "uint64":
		buf = alignBuf(buf, 8)
		return wirecdr.AppendUint64(buf, w.order, uint64(v.Int)), nil
	case "float32":
		buf = alignBuf(buf, 4)
		return wirecdr.AppendFloat32(buf, w.order, float32(v.Float)), nil
	case "float64":
		buf = alignBuf(buf, 8)
		return wirecdr.AppendFloat64(buf, w.order, v.Float), nil
	case "string":
		if r.StringUpperBound > 0 && wirecdr.RuneCount(v.Str) > r.StringUpperBound {
			return nil, NewEncodeError("", "", "string exceeds declared bound", ErrBoundViolation)
		}
		buf = alignBuf(buf, 4)
		return wirecdr.AppendString(buf, w.order, v.Str), nil
	case "wstring":
		if r.StringUpperBound > 0 && wirecdr.RuneCount(v.Str) > r.StringUpperBound {
			return nil, NewEncodeError("", "", "wstring exceeds declared bound", ErrBoundViolation)
		}
		buf = alignBuf(buf, 4)
		out, err := wirecdr.AppendWString(buf, w.order, v.Str)
		if err != nil {
			return nil, NewEncodeError("", "", "wstring is not valid UTF-8", err)
		}
		return out, nil
	default:
		return nil, NewEncodeError("", "", "unknown primitive type "+r.Final, ErrValueShape)
	}
}
