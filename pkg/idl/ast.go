// Package idl provides the normalized schema model for OMG IDL documents:
// the definition tree produced by the parser (C1), the name resolver (C2),
// the schema map and typedef collapser (C3), and the deserialization info
// cache (C4). Nothing in this package touches the wire; see pkg/cdr for
// that layer.
package idl

import "strconv"

// Position identifies a location in IDL source, for parse/resolve errors.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// Node is implemented by every definition in the tree.
type Node interface {
	Pos() Position
}

// Definition is a top-level or module-nested declaration.
type Definition interface {
	Node
	definitionNode()
	DefName() string
}

// Schema is a parsed, not-yet-resolved IDL document: the direct output of
// the parser, before C2 rewrites type references to scoped names.
type Schema struct {
	Definitions []Definition
}

// PrimitiveNames is the canonical closed set of primitive type names a
// field, typedef, or switch type may resolve to after alias normalization.
var PrimitiveNames = map[string]bool{
	"bool": true, "int8": true, "uint8": true, "int16": true, "uint16": true,
	"int32": true, "uint32": true, "int64": true, "uint64": true,
	"float32": true, "float64": true, "string": true, "wstring": true,
	"byte": true, "octet": true, "char": true, "wchar": true, "boolean": true,
}

// primitiveAliases maps non-canonical IDL spellings to the name the codec
// actually switches on. byte/octet collapse to uint8; boolean to bool.
// Everything else in PrimitiveNames is already canonical.
var primitiveAliases = map[string]string{
	"long":                "int32",
	"unsigned long":       "uint32",
	"long long":           "int64",
	"unsigned long long":  "uint64",
	"short":               "int16",
	"unsigned short":      "uint16",
	"double":              "float64",
	"float":               "float32",
	"boolean":             "bool",
	"byte":                "uint8",
	"octet":               "uint8",
}

// NormalizeAlias rewrites an IDL primitive spelling to the canonical name
// the rest of the system uses. Names not present in the alias table are
// returned unchanged (they may already be canonical, or may be a
// non-primitive reference that IsPrimitive will reject).
func NormalizeAlias(name string) string {
	if canon, ok := primitiveAliases[name]; ok {
		return canon
	}
	return name
}

// IsPrimitive reports whether name (already alias-normalized) is one of
// the fixed-width or string primitives rather than a user-defined type.
func IsPrimitive(name string) bool {
	return PrimitiveNames[name]
}

// ConstKind discriminates the literal kinds a Constant or case predicate
// may hold.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstFloat
	ConstString
	// ConstIdent is an unresolved scoped-name reference appearing where a
	// literal was expected (e.g. a union case label naming an enumerator).
	// The resolver rewrites these to ConstInt once the enum is known.
	ConstIdent
)

// ConstValue is a resolved literal: an integer, bool, float, or string.
// Only one of the typed fields is meaningful, selected by Kind.
type ConstValue struct {
	Kind  ConstKind
	Int   int64
	Bool  bool
	Float float64
	Str   string
}

// Annotation is a recognized or unrecognized IDL annotation attached to a
// definition or field (spec: @default, @id, @optional, @mutable,
// @appendable, @topic; anything else is preserved but otherwise ignored).
type Annotation struct {
	Position Position
	Name     string
	// Arg is the raw argument text for annotations that take one, e.g.
	// "@id(4)" -> Arg="4", "@default(7)" -> Arg="7". Empty for argument-less
	// annotations such as @mutable.
	Arg string
}

func (a Annotation) Pos() Position { return a.Position }

// HasAnnotation reports whether name appears among anns.
func HasAnnotation(anns []Annotation, name string) bool {
	for _, a := range anns {
		if a.Name == name {
			return true
		}
	}
	return false
}

// FindAnnotation returns the first annotation named name, if any.
func FindAnnotation(anns []Annotation, name string) (Annotation, bool) {
	for _, a := range anns {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// Field is a struct member, union case payload, or (stripped of modifiers
// irrelevant to it) a typedef's base. Type is the raw name as written by
// the author; C2 rewrites it to a scoped name (or canonical primitive) in
// place.
type Field struct {
	Position Position
	Name     string
	Type     string

	// ArrayLengths is outer-to-inner fixed dimensions, e.g. `int32 m[2][3]`
	// -> [2, 3]. Empty for a non-array field.
	ArrayLengths []int

	IsSequence    bool
	SequenceBound int // 0 means unbounded
	StringUpperBound int // 0 means unbounded; only meaningful for string/wstring

	Annotations []Annotation
}

func (f *Field) Pos() Position { return f.Position }

// IsOptional reports the @optional annotation.
func (f *Field) IsOptional() bool { return HasAnnotation(f.Annotations, "optional") }

// Default returns the raw @default(...) argument text and whether one was
// present.
func (f *Field) Default() (string, bool) {
	a, ok := FindAnnotation(f.Annotations, "default")
	return a.Arg, ok
}

// ID returns the explicit @id(n) member id and whether one was present.
// Callers fall back to 1-based declaration position when false.
func (f *Field) ID() (int, bool) {
	a, ok := FindAnnotation(f.Annotations, "id")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(a.Arg)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Struct is a fixed-layout (final), appendable, or mutable record type.
type Struct struct {
	Position    Position
	Name        string // unscoped name as declared
	Scoped      string // filled in by the resolver
	Fields      []*Field
	Annotations []Annotation
}

func (s *Struct) Pos() Position   { return s.Position }
func (s *Struct) definitionNode() {}
func (s *Struct) DefName() string { return s.Name }

// IsMutable/IsAppendable report the extensibility annotations; the zero
// value (neither) is final/classic framing.
func (s *Struct) IsMutable() bool    { return HasAnnotation(s.Annotations, "mutable") }
func (s *Struct) IsAppendable() bool { return HasAnnotation(s.Annotations, "appendable") }

// Case is one branch of a union: a set of discriminator predicates and the
// field written/read when one of them matches.
type Case struct {
	Position   Position
	Predicates []ConstValue
	Field      *Field
}

func (c *Case) Pos() Position { return c.Position }

// Union is a discriminated variant: exactly one of Cases (or Default)
// holds a value alongside the discriminator.
type Union struct {
	Position    Position
	Name        string
	Scoped      string
	SwitchType  string // raw name; resolved in place by C2
	Cases       []*Case
	Default     *Field // the `default:` case field, nil if absent
	Annotations []Annotation
}

func (u *Union) Pos() Position   { return u.Position }
func (u *Union) definitionNode() {}
func (u *Union) DefName() string { return u.Name }

func (u *Union) IsMutable() bool    { return HasAnnotation(u.Annotations, "mutable") }
func (u *Union) IsAppendable() bool { return HasAnnotation(u.Annotations, "appendable") }

// Enumerator is one named constant of an Enum.
type Enumerator struct {
	Position Position
	Name     string
	Scoped   string
	Value    uint32
}

func (e *Enumerator) Pos() Position { return e.Position }

// Enum is a closed set of named uint32 constants assigned by declaration
// order, restarting from any explicit @value(n) and incrementing from there.
type Enum struct {
	Position    Position
	Name        string
	Scoped      string
	Enumerators []*Enumerator
	Annotations []Annotation
}

func (e *Enum) Pos() Position   { return e.Position }
func (e *Enum) definitionNode() {}
func (e *Enum) DefName() string { return e.Name }

// Typedef is a named alias for a base type plus accumulated array/sequence
// modifiers. Collapsing a chain of typedefs to a terminal type is C3's job
// (schemamap.go); Typedef itself just records one link.
type Typedef struct {
	Position      Position
	Name          string
	Scoped        string
	Type          string // raw base type name; resolved in place by C2
	ArrayLengths  []int
	IsSequence    bool
	SequenceBound int
	StringUpperBound int
}

func (t *Typedef) Pos() Position   { return t.Position }
func (t *Typedef) definitionNode() {}
func (t *Typedef) DefName() string { return t.Name }

// Constant is a named literal of a given type, valid at module scope.
type Constant struct {
	Position Position
	Name     string
	Scoped   string
	Type     string
	Value    ConstValue
}

func (c *Constant) Pos() Position   { return c.Position }
func (c *Constant) definitionNode() {}
func (c *Constant) DefName() string { return c.Name }

// Module is a namespace: a named scope containing further definitions,
// including nested modules.
type Module struct {
	Position    Position
	Name        string
	Scoped      string
	Definitions []Definition
}

func (m *Module) Pos() Position   { return m.Position }
func (m *Module) definitionNode() {}
func (m *Module) DefName() string { return m.Name }
