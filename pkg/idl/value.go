package idl

// DiscriminatorKey is the reserved map key a union value carries its
// discriminator under.
const DiscriminatorKey = "$discriminator"

// ValueKind discriminates the shape a Value holds.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

// Value is the generic tree the codec reads into and writes from: a
// boolean, an integer, a floating number, a string, an ordered list of
// values, or a mapping from field names to values. A union's map carries
// the selected case field plus DiscriminatorKey.
type Value struct {
	Kind ValueKind
	Bool bool
	Int  int64
	Float float64
	Str  string
	List []Value
	Map  map[string]Value
}

func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func Int(n int64) Value     { return Value{Kind: KindInt, Int: n} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func Str(s string) Value    { return Value{Kind: KindString, Str: s} }
func List(items ...Value) Value {
	return Value{Kind: KindList, List: items}
}
func Map(fields map[string]Value) Value {
	return Value{Kind: KindMap, Map: fields}
}

// Clone deep-copies v, so a cached default can be handed out repeatedly
// without callers being able to mutate the cache.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindList:
		out := make([]Value, len(v.List))
		for i, e := range v.List {
			out[i] = e.Clone()
		}
		return Value{Kind: KindList, List: out}
	case KindMap:
		out := make(map[string]Value, len(v.Map))
		for k, e := range v.Map {
			out[k] = e.Clone()
		}
		return Value{Kind: KindMap, Map: out}
	default:
		return v
	}
}

// Equal reports deep structural equality between v and o, used by the
// round-trip tests.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == o.Bool
	case KindInt:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindString:
		return v.Str == o.Str
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for k, e := range v.Map {
			oe, ok := o.Map[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
