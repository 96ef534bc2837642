package idl

import (
	"fmt"
	"strconv"
	"sync"
)

// FieldInfo is one struct field's or union case's precomputed descriptor.
type FieldInfo struct {
	Name             string
	Resolved         ResolvedType
	TypeInfo         *ComplexInfo // non-nil when Resolved.Final names a struct or union
	IsOptional       bool
	HasDefault       bool
	DefaultRaw       string // raw @default(...) argument text, parsed lazily
	ID               int
}

// ComplexInfo is the memoized framing and field layout for one struct or
// union type (C4's ComplexInfo).
type ComplexInfo struct {
	Name             string
	Struct           *Struct
	Union            *Union
	UsesDelimiter    bool
	UsesMemberHeader bool
	Fields           []*FieldInfo // struct fields only; nil for unions

	mu           sync.Mutex
	defaultValue *Value
}

// IsUnion reports whether this ComplexInfo describes a union.
func (c *ComplexInfo) IsUnion() bool { return c.Union != nil }

// Cache memoizes ComplexInfo per complex type name and computes default
// values on demand. ComplexInfoFor and Default take the Cache's own locks,
// so one Cache may be shared across goroutines.
type Cache struct {
	schema *SchemaMap
	mu     sync.Mutex
	byName map[string]*ComplexInfo
}

// NewCache creates a Cache bound to a resolved, indexed schema.
func NewCache(schema *SchemaMap) *Cache {
	return &Cache{schema: schema, byName: make(map[string]*ComplexInfo)}
}

// ComplexInfoFor returns the memoized ComplexInfo for a struct or union's
// scoped name, building it on first use.
func (c *Cache) ComplexInfoFor(name string) (*ComplexInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.complexInfoLocked(name)
}

func (c *Cache) complexInfoLocked(name string) (*ComplexInfo, error) {
	if info, ok := c.byName[name]; ok {
		return info, nil
	}
	def, ok := c.schema.Lookup(name)
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	switch v := def.(type) {
	case *Struct:
		info := &ComplexInfo{Name: name, Struct: v, UsesDelimiter: v.IsMutable() || v.IsAppendable(), UsesMemberHeader: v.IsMutable()}
		// Register before recursing into field types so a struct that
		// (indirectly, through a different field) refers back to itself
		// by name sees the in-progress entry rather than looping forever.
		c.byName[name] = info
		fields := make([]*FieldInfo, 0, len(v.Fields))
		for i, f := range v.Fields {
			fi, err := c.buildFieldInfoLocked(f, i+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, fi)
		}
		info.Fields = fields
		return info, nil
	case *Union:
		info := &ComplexInfo{Name: name, Union: v, UsesDelimiter: v.IsMutable() || v.IsAppendable(), UsesMemberHeader: v.IsMutable()}
		c.byName[name] = info
		return info, nil
	default:
		return nil, &UnknownTypeError{Name: name}
	}
}

func (c *Cache) buildFieldInfoLocked(f *Field, positionID int) (*FieldInfo, error) {
	resolved, err := c.schema.Collapse(f.Type, f.ArrayLengths, f.IsSequence, f.SequenceBound, f.StringUpperBound)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Name, err)
	}
	var typeInfo *ComplexInfo
	if !IsPrimitive(resolved.Final) && !resolved.IsEnum {
		typeInfo, err = c.complexInfoLocked(resolved.Final)
		if err != nil {
			return nil, err
		}
	}
	id := positionID
	if explicit, ok := f.ID(); ok {
		id = explicit
	}
	defaultRaw, hasDefault := f.Default()
	return &FieldInfo{
		Name:       f.Name,
		Resolved:   resolved,
		TypeInfo:   typeInfo,
		IsOptional: f.IsOptional(),
		HasDefault: hasDefault,
		DefaultRaw: defaultRaw,
		ID:         id,
	}, nil
}

// Default returns a fresh default value for info: primitives get their
// canonical zero, fixed arrays nest to their element
// default, sequences are empty, structs recurse over non-optional (or
// explicitly defaulted) fields, and unions take their default: case or
// the case matching the switch type's own zero value. The cache computes
// this once per ComplexInfo and deep-copies it on every call.
func (c *Cache) Default(info *ComplexInfo) (Value, error) {
	info.mu.Lock()
	defer info.mu.Unlock()
	if info.defaultValue != nil {
		return info.defaultValue.Clone(), nil
	}
	v, err := c.computeComplexDefault(info)
	if err != nil {
		return Value{}, err
	}
	info.defaultValue = &v
	return v.Clone(), nil
}

func (c *Cache) computeComplexDefault(info *ComplexInfo) (Value, error) {
	if info.IsUnion() {
		return c.unionDefault(info)
	}
	fields := make(map[string]Value, len(info.Fields))
	for _, fi := range info.Fields {
		if fi.IsOptional && !fi.HasDefault {
			continue
		}
		v, err := c.FieldDefault(fi)
		if err != nil {
			return Value{}, err
		}
		fields[fi.Name] = v
	}
	return Map(fields), nil
}

func (c *Cache) unionDefault(info *ComplexInfo) (Value, error) {
	u := info.Union
	if u.Default != nil {
		c.mu.Lock()
		fi, err := c.buildFieldInfoLocked(u.Default, 0)
		c.mu.Unlock()
		if err != nil {
			return Value{}, err
		}
		v, err := c.FieldDefault(fi)
		if err != nil {
			return Value{}, err
		}
		return Map(map[string]Value{
			DiscriminatorKey: {Kind: KindInt, Int: 0},
			fi.Name:          v,
		}), nil
	}

	discRaw, err := c.schema.Collapse(u.SwitchType, nil, false, 0, 0)
	if err != nil {
		return Value{}, err
	}
	discDefault := primitiveZero(discRaw.Final)
	disc := discDefault.Int

	caseField := unionCaseFor(u, disc)
	if caseField == nil {
		return Value{}, fmt.Errorf("idl: union %q has no default case for discriminator %d", u.Scoped, disc)
	}
	c.mu.Lock()
	fi, err := c.buildFieldInfoLocked(caseField, 0)
	c.mu.Unlock()
	if err != nil {
		return Value{}, err
	}
	v, err := c.FieldDefault(fi)
	if err != nil {
		return Value{}, err
	}
	return Map(map[string]Value{
		DiscriminatorKey: {Kind: KindInt, Int: disc},
		fi.Name:          v,
	}), nil
}

// unionCaseFor returns the field of the first case whose predicates
// contain disc, falling back to the default case.
func unionCaseFor(u *Union, disc int64) *Field {
	for _, c := range u.Cases {
		for _, p := range c.Predicates {
			if predicateMatches(p, disc) {
				return c.Field
			}
		}
	}
	return u.Default
}

func predicateMatches(p ConstValue, disc int64) bool {
	switch p.Kind {
	case ConstInt:
		return p.Int == disc
	case ConstBool:
		if p.Bool {
			return disc == 1
		}
		return disc == 0
	default:
		return false
	}
}

// FieldDefault returns a fresh default value for one field, handling
// array/sequence nesting around the element default.
func (c *Cache) FieldDefault(fi *FieldInfo) (Value, error) {
	if fi.HasDefault {
		return parseDefaultLiteral(fi.DefaultRaw, fi.Resolved), nil
	}
	if len(fi.Resolved.ArrayLengths) > 0 && !fi.Resolved.IsSequence {
		elem, err := c.baseElementDefault(fi)
		if err != nil {
			return Value{}, err
		}
		return nestedArrayDefault(elem, fi.Resolved.ArrayLengths, 0), nil
	}
	if fi.Resolved.IsSequence {
		return List(), nil
	}
	return c.baseElementDefault(fi)
}

func (c *Cache) baseElementDefault(fi *FieldInfo) (Value, error) {
	if fi.TypeInfo != nil {
		return c.Default(fi.TypeInfo)
	}
	return primitiveZero(fi.Resolved.Final), nil
}

func nestedArrayDefault(elem Value, lengths []int, depth int) Value {
	n := lengths[depth]
	items := make([]Value, n)
	for i := range items {
		if depth == len(lengths)-1 {
			items[i] = elem.Clone()
		} else {
			items[i] = nestedArrayDefault(elem, lengths, depth+1)
		}
	}
	return List(items...)
}

// primitiveZero returns the canonical zero value for a primitive name
// (enum-typed discriminators demote to uint32, so they share int's zero).
func primitiveZero(name string) Value {
	switch name {
	case "bool":
		return Bool(false)
	case "string", "wstring":
		return Str("")
	case "float32", "float64":
		return Float(0)
	default:
		return Int(0)
	}
}

// parseDefaultLiteral parses an @default(...) annotation's raw argument
// text against the field's resolved final type.
func parseDefaultLiteral(raw string, rt ResolvedType) Value {
	switch rt.Final {
	case "bool":
		return Bool(raw == "true" || raw == "TRUE" || raw == "1")
	case "string", "wstring":
		return Str(raw)
	case "float32", "float64":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Float(0)
		}
		return Float(f)
	default:
		n, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return Int(0)
		}
		return Int(n)
	}
}
