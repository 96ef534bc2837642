package cdr

import (
	"encoding/binary"
	"fmt"

	wirecdr "github.com/blockberries/omgidl/internal/cdr"
	"github.com/blockberries/omgidl/pkg/idl"
)

// Writer encodes Value trees against one root complex type, per the
// two-pass contract: EncodedSize(value) must return exactly the number of
// bytes Write(value) produces.
//
// Each Writer builds its own idl.Cache in NewWriter and allocates a fresh
// output buffer on every Write. A Writer has no locking of its own; build
// one per goroutine (or serialize access).
type Writer struct {
	schema *idl.SchemaMap
	cache  *idl.Cache
	root   *idl.ComplexInfo
	kind   Kind
	order  binary.ByteOrder
}

// NewWriter builds a Writer for rootName against schema, encoding with the
// given encapsulation kind.
func NewWriter(schema *idl.SchemaMap, rootName string, kind Kind) (*Writer, error) {
	cache := idl.NewCache(schema)
	root, err := cache.ComplexInfoFor(rootName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, err)
	}
	if _, err := wirecdr.FramingOf(kind); err != nil {
		return nil, err
	}
	return &Writer{schema: schema, cache: cache, root: root, kind: kind, order: kind.ByteOrder()}, nil
}

// EncodedSize returns the exact byte length Write(value) will produce,
// including the 4-byte encapsulation header.
func (w *Writer) EncodedSize(value Value) (int, error) {
	offset := wirecdr.EncapsulationHeaderSize
	offset, err := w.sizeComplex(w.root, value, offset)
	if err != nil {
		return 0, err
	}
	return offset, nil
}

// Write encodes value as the Writer's root type, returning a freshly
// allocated buffer of exactly EncodedSize(value) bytes.
func (w *Writer) Write(value Value) ([]byte, error) {
	n, err := w.EncodedSize(value)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, n)
	buf = wirecdr.AppendHeader(buf, w.kind)
	buf, err = w.writeComplex(buf, w.root, value)
	if err != nil {
		return nil, err
	}
	if len(buf) != n {
		return nil, NewEncodeError(w.root.Name, "", fmt.Sprintf("wrote %d bytes, EncodedSize computed %d", len(buf), n), ErrBufferOverflow)
	}
	return buf, nil
}

// --- struct/union framing ---

func (w *Writer) sizeComplex(info *idl.ComplexInfo, v Value, offset int) (int, error) {
	if info.IsUnion() {
		return w.sizeUnion(info, v, offset)
	}
	return w.sizeStruct(info, v, offset)
}

func (w *Writer) writeComplex(buf []byte, info *idl.ComplexInfo, v Value) ([]byte, error) {
	if info.IsUnion() {
		return w.writeUnion(buf, info, v)
	}
	return w.writeStruct(buf, info, v)
}

func (w *Writer) sizeStruct(info *idl.ComplexInfo, v Value, offset int) (int, error) {
	if v.Kind != idl.KindMap {
		return 0, NewEncodeError(info.Name, "", "expected a struct value", ErrValueShape)
	}
	if info.UsesDelimiter {
		offset = wirecdr.Aligned(offset, 4)
		offset += 4 // delimiter length field
	}
	for _, fi := range info.Fields {
		fv, ok := v.Map[fi.Name]
		if !ok {
			def, err := w.cache.FieldDefault(fi)
			if err != nil {
				return 0, NewEncodeError(info.Name, fi.Name, "missing field and no default available", err)
			}
			fv = def
		}
		if info.UsesMemberHeader {
			offset = wirecdr.Aligned(offset, 4)
			offset += 4 // member header (id, size)
		}
		var err error
		offset, err = w.sizeField(fi, fv, offset)
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", fi.Name, err)
		}
	}
	if info.UsesMemberHeader {
		offset = wirecdr.Aligned(offset, 4)
		offset += 4 // sentinel
	}
	return offset, nil
}

func (w *Writer) writeStruct(buf []byte, info *idl.ComplexInfo, v Value) ([]byte, error) {
	if v.Kind != idl.KindMap {
		return nil, NewEncodeError(info.Name, "", "expected a struct value", ErrValueShape)
	}

	var delimAt int
	if info.UsesDelimiter {
		buf = alignBuf(buf, 4)
		buf, delimAt = wirecdr.AppendDelimiterPlaceholder(buf)
	}
	bodyStart := len(buf)

	for _, fi := range info.Fields {
		fv, ok := v.Map[fi.Name]
		if !ok {
			def, err := w.cache.FieldDefault(fi)
			if err != nil {
				return nil, NewEncodeError(info.Name, fi.Name, "missing field and no default available", err)
			}
			fv = def
		}

		var headerAt int
		if info.UsesMemberHeader {
			buf = alignBuf(buf, 4)
			headerAt = len(buf)
			buf = wirecdr.AppendMemberHeader(buf, w.order, uint16(fi.ID), 0)
		}
		fieldStart := len(buf)
		var err error
		buf, err = w.writeField(buf, fi, fv)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fi.Name, err)
		}
		if info.UsesMemberHeader {
			size := len(buf) - fieldStart
			w.order.PutUint16(buf[headerAt+2:headerAt+4], uint16(size))
		}
	}
	if info.UsesMemberHeader {
		buf = alignBuf(buf, 4)
		buf = wirecdr.AppendSentinel(buf, w.order)
	}

	if info.UsesDelimiter {
		bodyLen := uint32(len(buf) - bodyStart)
		wirecdr.PatchDelimiter(buf, delimAt, w.order, bodyLen)
	}
	return buf, nil
}

func (w *Writer) sizeUnion(info *idl.ComplexInfo, v Value, offset int) (int, error) {
	u := info.Union
	if v.Kind != idl.KindMap {
		return 0, NewEncodeError(info.Name, "", "expected a union value", ErrValueShape)
	}
	discResolved, err := w.schema.Collapse(u.SwitchType, nil, false, 0, 0)
	if err != nil {
		return 0, err
	}
	caseField, err := unionCaseField(u, v)
	if err != nil {
		return 0, NewEncodeError(info.Name, "", err.Error(), ErrUnionNoCase)
	}
	fi, err := w.fieldInfoForCase(caseField)
	if err != nil {
		return 0, err
	}

	if info.UsesDelimiter {
		offset = wirecdr.Aligned(offset, 4)
		offset += 4
	}
	offset, err = w.sizeField(discriminatorFieldInfo(discResolved), discVal(v), offset)
	if err != nil {
		return 0, err
	}
	if info.UsesMemberHeader {
		offset = wirecdr.Aligned(offset, 4)
		offset += 4
	}
	fv, ok := v.Map[fi.Name]
	if !ok {
		fv, err = w.cache.FieldDefault(fi)
		if err != nil {
			return 0, err
		}
	}
	offset, err = w.sizeField(fi, fv, offset)
	if err != nil {
		return 0, err
	}
	if info.UsesMemberHeader {
		offset = wirecdr.Aligned(offset, 4)
		offset += 4
	}
	return offset, nil
}

func (w *Writer) writeUnion(buf []byte, info *idl.ComplexInfo, v Value) ([]byte, error) {
	u := info.Union
	if v.Kind != idl.KindMap {
		return nil, NewEncodeError(info.Name, "", "expected a union value", ErrValueShape)
	}
	discResolved, err := w.schema.Collapse(u.SwitchType, nil, false, 0, 0)
	if err != nil {
		return nil, err
	}
	caseField, err := unionCaseField(u, v)
	if err != nil {
		return nil, NewEncodeError(info.Name, "", err.Error(), ErrUnionNoCase)
	}
	fi, err := w.fieldInfoForCase(caseField)
	if err != nil {
		return nil, err
	}

	var delimAt int
	if info.UsesDelimiter {
		buf = alignBuf(buf, 4)
		buf, delimAt = wirecdr.AppendDelimiterPlaceholder(buf)
	}
	bodyStart := len(buf)

	buf, err = w.writeField(buf, discriminatorFieldInfo(discResolved), discVal(v))
	if err != nil {
		return nil, err
	}

	var headerAt int
	if info.UsesMemberHeader {
		buf = alignBuf(buf, 4)
		headerAt = len(buf)
		buf = wirecdr.AppendMemberHeader(buf, w.order, uint16(fi.ID), 0)
	}
	fieldStart := len(buf)
	fv, ok := v.Map[fi.Name]
	if !ok {
		fv, err = w.cache.FieldDefault(fi)
		if err != nil {
			return nil, err
		}
	}
	buf, err = w.writeField(buf, fi, fv)
	if err != nil {
		return nil, err
	}
	if info.UsesMemberHeader {
		size := len(buf) - fieldStart
		w.order.PutUint16(buf[headerAt+2:headerAt+4], uint16(size))
		buf = alignBuf(buf, 4)
		buf = wirecdr.AppendSentinel(buf, w.order)
	}

	if info.UsesDelimiter {
		bodyLen := uint32(len(buf) - bodyStart)
		wirecdr.PatchDelimiter(buf, delimAt, w.order, bodyLen)
	}
	return buf, nil
}

func discVal(v Value) Value {
	if d, ok := v.Map[DiscriminatorKey]; ok {
		return d
	}
	return idl.Int(0)
}

func discriminatorFieldInfo(resolved idl.ResolvedType) *idl.FieldInfo {
	return &idl.FieldInfo{Name: DiscriminatorKey, Resolved: resolved}
}

func unionCaseField(u *idl.Union, v Value) (*idl.Field, error) {
	disc, ok := v.Map[DiscriminatorKey]
	if !ok {
		return nil, fmt.Errorf("union value missing %q", DiscriminatorKey)
	}
	for _, c := range u.Cases {
		for _, p := range c.Predicates {
			if unionPredicateMatches(p, disc) {
				return c.Field, nil
			}
		}
	}
	if u.Default != nil {
		return u.Default, nil
	}
	return nil, fmt.Errorf("discriminator %v matches no case in union %q", disc, u.Scoped)
}

func unionPredicateMatches(p idl.ConstValue, disc Value) bool {
	switch p.Kind {
	case idl.ConstInt:
		return disc.Kind == idl.KindInt && p.Int == disc.Int
	case idl.ConstBool:
		want := int64(0)
		if p.Bool {
			want = 1
		}
		return disc.Kind == idl.KindInt && disc.Int == want
	default:
		return false
	}
}

func (w *Writer) fieldInfoForCase(f *idl.Field) (*idl.FieldInfo, error) {
	resolved, err := w.schema.Collapse(f.Type, f.ArrayLengths, f.IsSequence, f.SequenceBound, f.StringUpperBound)
	if err != nil {
		return nil, err
	}
	var typeInfo *idl.ComplexInfo
	if !idl.IsPrimitive(resolved.Final) && !resolved.IsEnum {
		typeInfo, err = w.cache.ComplexInfoFor(resolved.Final)
		if err != nil {
			return nil, err
		}
	}
	return &idl.FieldInfo{Name: f.Name, Resolved: resolved, TypeInfo: typeInfo, IsOptional: f.IsOptional()}, nil
}

// alignBuf pads buf with zero bytes up to the next multiple of w relative
// to the encapsulation header.
func alignBuf(buf []byte, w int) []byte {
	pad := wirecdr.Padding(len(buf), w)
	for i := 0; i < pad; i++ {
		buf = append(buf, 0)
	}
	return buf
}
