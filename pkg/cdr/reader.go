package cdr

import (
	"encoding/binary"
	"fmt"

	wirecdr "github.com/blockberries/omgidl/internal/cdr"
	"github.com/blockberries/omgidl/pkg/idl"
)

// Reader decodes a CDR-encoded buffer into a Value tree against one
// root complex type. Reading is a single forward pass: every read step
// returns the advanced offset and is bounds-checked against the input.
//
// A Reader is not safe for concurrent use; build one per goroutine.
type Reader struct {
	schema *idl.SchemaMap
	cache  *idl.Cache
	root   *idl.ComplexInfo
	limits Limits
}

// NewReader builds a Reader for rootName against schema. The encapsulation
// kind is read from each buffer's own header, so a single Reader can decode
// messages produced with any recognized kind.
func NewReader(schema *idl.SchemaMap, rootName string) (*Reader, error) {
	cache := idl.NewCache(schema)
	root, err := cache.ComplexInfoFor(rootName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, err)
	}
	return &Reader{schema: schema, cache: cache, root: root, limits: DefaultLimits}, nil
}

// SetLimits overrides the Reader's resource limits (default DefaultLimits).
func (r *Reader) SetLimits(l Limits) { r.limits = l }

// Read decodes data as the Reader's root type.
func (r *Reader) Read(data []byte) (Value, error) {
	if r.limits.MaxMessageSize > 0 && int64(len(data)) > r.limits.MaxMessageSize {
		return Value{}, NewDecodeError(r.root.Name, "", 0, "message exceeds configured size limit", ErrBufferOverflow)
	}
	kind, err := wirecdr.DecodeHeader(data)
	if err != nil {
		return Value{}, NewDecodeError(r.root.Name, "", 0, "truncated encapsulation header", ErrBufferUnderflow)
	}
	if _, err := wirecdr.FramingOf(kind); err != nil {
		return Value{}, NewDecodeError(r.root.Name, "", 0, "bad encapsulation kind", err)
	}
	d := &decoder{data: data, order: kind.ByteOrder(), cache: r.cache, schema: r.schema}
	v, _, err := d.readComplex(r.root, wirecdr.EncapsulationHeaderSize, 0)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// decoder carries the immutable state of one Read call; offset is threaded
// explicitly through every read* method rather than stored here, so the
// same decoder can be reused for recursive calls without aliasing issues.
type decoder struct {
	data   []byte
	order  binary.ByteOrder
	cache  *idl.Cache
	schema *idl.SchemaMap
}

func (d *decoder) readComplex(info *idl.ComplexInfo, offset, depth int) (Value, int, error) {
	if depth > 128 {
		return Value{}, 0, NewDecodeError(info.Name, "", offset, "nesting depth exceeded", ErrBufferOverflow)
	}
	if info.IsUnion() {
		return d.readUnion(info, offset, depth)
	}
	return d.readStruct(info, offset, depth)
}

func (d *decoder) readStruct(info *idl.ComplexInfo, offset, depth int) (Value, int, error) {
	var bodyEnd int
	hasBodyEnd := false
	if info.UsesDelimiter {
		offset = wirecdr.Aligned(offset, 4)
		n, err := d.uint32At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError(info.Name, "", offset, "truncated delimiter header", err)
		}
		offset += 4
		bodyEnd = offset + int(n)
		hasBodyEnd = true
	}

	fields := make(map[string]Value, len(info.Fields))

	if info.UsesMemberHeader {
		byID := make(map[int]*idl.FieldInfo, len(info.Fields))
		for _, fi := range info.Fields {
			byID[fi.ID] = fi
		}
		for {
			offset = wirecdr.Aligned(offset, 4)
			id, size, err := d.memberHeaderAt(offset)
			if err != nil {
				return Value{}, 0, NewDecodeError(info.Name, "", offset, "truncated member header", err)
			}
			offset += 4
			if id == 0 && size == 0 {
				break
			}
			fi, ok := byID[int(id)]
			if !ok {
				offset += int(size)
				continue
			}
			v, next, err := d.readField(fi, offset)
			if err != nil {
				return Value{}, 0, err
			}
			fields[fi.Name] = v
			offset = next
		}
	} else {
		for _, fi := range info.Fields {
			if hasBodyEnd && offset >= bodyEnd {
				def, err := d.cache.FieldDefault(fi)
				if err != nil {
					return Value{}, 0, NewDecodeError(info.Name, fi.Name, offset, "missing trailing field and no default available", err)
				}
				fields[fi.Name] = def
				continue
			}
			v, next, err := d.readField(fi, offset)
			if err != nil {
				return Value{}, 0, fmt.Errorf("field %q: %w", fi.Name, err)
			}
			fields[fi.Name] = v
			offset = next
		}
	}

	if hasBodyEnd && offset < bodyEnd {
		offset = bodyEnd // skip unknown trailing bytes appended by a newer writer
	}
	return idl.Map(fields), offset, nil
}

func (d *decoder) readUnion(info *idl.ComplexInfo, offset, depth int) (Value, int, error) {
	u := info.Union
	var bodyEnd int
	hasBodyEnd := false
	if info.UsesDelimiter {
		offset = wirecdr.Aligned(offset, 4)
		n, err := d.uint32At(offset)
		if err != nil {
			return Value{}, 0, NewDecodeError(info.Name, "", offset, "truncated delimiter header", err)
		}
		offset += 4
		bodyEnd = offset + int(n)
		hasBodyEnd = true
	}

	discResolved, err := d.schema.Collapse(u.SwitchType, nil, false, 0, 0)
	if err != nil {
		return Value{}, 0, err
	}
	discVal, offset, err := d.readField(discriminatorFieldInfo(discResolved), offset)
	if err != nil {
		return Value{}, 0, fmt.Errorf("discriminator: %w", err)
	}

	caseField := unionCaseForDiscriminator(u, discVal)
	if caseField == nil {
		// No case matches and there is no default: a conforming producer may
		// still write this union (ErrUnionNoCase only ever blocks an encode).
		// Read returns the discriminator alone rather than erroring.
		if hasBodyEnd && offset < bodyEnd {
			offset = bodyEnd
		}
		return idl.Map(map[string]Value{DiscriminatorKey: discVal}), offset, nil
	}
	fi, err := d.fieldInfoForCase(caseField)
	if err != nil {
		return Value{}, 0, err
	}

	if info.UsesMemberHeader {
		offset = wirecdr.Aligned(offset, 4)
		if _, _, err := d.memberHeaderAt(offset); err != nil {
			return Value{}, 0, NewDecodeError(info.Name, "", offset, "truncated member header", err)
		}
		offset += 4
	}

	v, offset, err := d.readField(fi, offset)
	if err != nil {
		return Value{}, 0, err
	}

	if info.UsesMemberHeader {
		offset = wirecdr.Aligned(offset, 4)
		offset += 4 // sentinel
	}
	if hasBodyEnd && offset < bodyEnd {
		offset = bodyEnd
	}

	return idl.Map(map[string]Value{DiscriminatorKey: discVal, fi.Name: v}), offset, nil
}

func unionCaseForDiscriminator(u *idl.Union, disc Value) *idl.Field {
	for _, c := range u.Cases {
		for _, p := range c.Predicates {
			if unionPredicateMatches(p, disc) {
				return c.Field
			}
		}
	}
	return u.Default
}

func (d *decoder) fieldInfoForCase(f *idl.Field) (*idl.FieldInfo, error) {
	resolved, err := d.schema.Collapse(f.Type, f.ArrayLengths, f.IsSequence, f.SequenceBound, f.StringUpperBound)
	if err != nil {
		return nil, err
	}
	var typeInfo *idl.ComplexInfo
	if !idl.IsPrimitive(resolved.Final) && !resolved.IsEnum {
		typeInfo, err = d.cache.ComplexInfoFor(resolved.Final)
		if err != nil {
			return nil, err
		}
	}
	return &idl.FieldInfo{Name: f.Name, Resolved: resolved, TypeInfo: typeInfo, IsOptional: f.IsOptional()}, nil
}

func (d *decoder) uint32At(offset int) (uint32, error) {
	if offset+4 > len(d.data) {
		return 0, wirecdr.ErrTruncated
	}
	return wirecdr.DecodeUint32(d.data[offset:], d.order)
}

func (d *decoder) memberHeaderAt(offset int) (id, size uint16, err error) {
	if offset+4 > len(d.data) {
		return 0, 0, wirecdr.ErrTruncated
	}
	return wirecdr.DecodeMemberHeader(d.data[offset:], d.order)
}
