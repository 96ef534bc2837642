package idl

// SchemaMap is an ordered map from fully qualified name to definition.
// Order preserves source order: a module's own entry follows its body's
// entries, and an enum's enumerators follow the enum itself — the
// ordering contract the flat export view (package flatten) relies on.
type SchemaMap struct {
	order   []string
	byName  map[string]any
}

// BuildSchemaMap walks a resolved schema and indexes every struct, union,
// enum, enumerator, typedef, and constant under its scoped name. Call
// Resolve on the schema first; BuildSchemaMap does not normalize names.
func BuildSchemaMap(schema *Schema) *SchemaMap {
	m := &SchemaMap{byName: make(map[string]any)}
	m.walk(schema.Definitions)
	return m
}

func (m *SchemaMap) insert(name string, def any) {
	if _, exists := m.byName[name]; !exists {
		m.order = append(m.order, name)
	}
	m.byName[name] = def
}

func (m *SchemaMap) walk(defs []Definition) {
	for _, d := range defs {
		switch v := d.(type) {
		case *Struct:
			m.insert(v.Scoped, v)
		case *Union:
			m.insert(v.Scoped, v)
		case *Typedef:
			m.insert(v.Scoped, v)
		case *Constant:
			m.insert(v.Scoped, v)
		case *Enum:
			m.insert(v.Scoped, v)
			for _, en := range v.Enumerators {
				m.insert(en.Scoped, en)
			}
		case *Module:
			// Children are inserted before the module's own entry.
			m.walk(v.Definitions)
			m.insert(v.Scoped, v)
		}
	}
}

// Lookup returns the definition at name, which may be a *Struct, *Union,
// *Enum, *Enumerator, *Typedef, *Constant, or *Module.
func (m *SchemaMap) Lookup(name string) (any, bool) {
	v, ok := m.byName[name]
	return v, ok
}

// Names returns every scoped name in insertion order.
func (m *SchemaMap) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// ResolvedType is the result of chasing a type reference through any
// typedef chain to a terminal primitive, string/wstring, struct, union, or
// enum, with every array/sequence/string modifier encountered along the
// way accumulated (C3 collapse()).
type ResolvedType struct {
	// Final is a canonical primitive name, "string"/"wstring", or the
	// scoped name of a struct, union, or enum.
	Final string
	// IsEnum marks Final as an enum's scoped name; the codec demotes such
	// a field to a plain uint32 on the wire.
	IsEnum bool
	// ArrayLengths is outer-to-inner fixed dimensions, accumulated from
	// the field's own modifier first, then each typedef's in chain order.
	ArrayLengths []int
	IsSequence       bool
	SequenceBound    int // 0 = unbounded
	StringUpperBound int // 0 = unbounded; meaningful only when Final is string/wstring
}

// Collapse resolves typeName (typically a field's, typedef's, or switch's
// already-resolved Type) to its terminal type, folding in the modifiers
// carried at the reference site (fieldArrayLengths, fieldIsSequence,
// fieldSequenceBound, fieldStringBound) as the outermost step before
// chasing any typedef chain.
func (m *SchemaMap) Collapse(typeName string, fieldArrayLengths []int, fieldIsSequence bool, fieldSequenceBound, fieldStringBound int) (ResolvedType, error) {
	arrayLengths := append([]int(nil), fieldArrayLengths...)
	sequenceSeen := fieldIsSequence
	sequenceBound := fieldSequenceBound
	stringBound := fieldStringBound

	visited := map[string]bool{}
	current := typeName
	for {
		if IsPrimitive(current) {
			return ResolvedType{
				Final:            current,
				ArrayLengths:     arrayLengths,
				IsSequence:       sequenceSeen,
				SequenceBound:    sequenceBound,
				StringUpperBound: stringBound,
			}, nil
		}
		if visited[current] {
			return ResolvedType{}, &CycleError{Name: current}
		}
		visited[current] = true

		def, ok := m.Lookup(current)
		if !ok {
			return ResolvedType{}, &UnknownTypeError{Name: current}
		}
		switch v := def.(type) {
		case *Typedef:
			if v.IsSequence {
				if sequenceSeen {
					return ResolvedType{}, &UnsupportedCompositionError{Name: current}
				}
				sequenceSeen = true
				sequenceBound = v.SequenceBound
			}
			arrayLengths = append(arrayLengths, v.ArrayLengths...)
			if v.StringUpperBound != 0 {
				stringBound = v.StringUpperBound
			}
			current = v.Type
		case *Struct:
			return ResolvedType{Final: v.Scoped, ArrayLengths: arrayLengths, IsSequence: sequenceSeen, SequenceBound: sequenceBound}, nil
		case *Union:
			return ResolvedType{Final: v.Scoped, ArrayLengths: arrayLengths, IsSequence: sequenceSeen, SequenceBound: sequenceBound}, nil
		case *Enum:
			return ResolvedType{Final: v.Scoped, IsEnum: true, ArrayLengths: arrayLengths, IsSequence: sequenceSeen, SequenceBound: sequenceBound}, nil
		default:
			return ResolvedType{}, &UnknownTypeError{Name: current}
		}
	}
}
