package idl

import "strings"

// ResolveError reports a name the resolver could not bind to any
// in-scope definition. Unlike ParseError, this is not necessarily fatal:
// an unresolved field/switch type is deferred to C3 (schemamap.go), which
// raises UnknownType when it fails to find the (still-unqualified) name in
// the schema map. ResolveError here is reserved for case-label identifiers,
// which have no later lookup stage of their own.
type ResolveError struct {
	Position Position
	Message  string
}

func (e ResolveError) Error() string { return e.Message }

// Resolver assigns fully-qualified (scoped) names to every definition,
// normalizes primitive aliases, and rewrites unqualified field/switch/
// typedef type references to the scoped name of the definition they refer
// to, searching outward through enclosing modules.
type Resolver struct {
	// named marks every scoped name that denotes a struct, union, enum, or
	// typedef — the set of names a type reference may bind to.
	named map[string]bool
	// constants maps a constant/enumerator name (its bare name, its scoped
	// name, and for an enumerator also its one-level qualified
	// "Enum::Member" form) to its evaluated value,
	// for resolving case-label identifiers that name an enumerator.
	constants map[string]ConstValue
}

// Resolve mutates schema in place: every definition gets its Scoped name
// set, and every type reference is normalized and, where resolvable,
// rewritten to a scoped name. It returns any case-label identifiers that
// could not be bound.
func Resolve(schema *Schema) []ResolveError {
	r := &Resolver{named: map[string]bool{}, constants: map[string]ConstValue{}}
	r.collect(schema.Definitions, nil)
	var errs []ResolveError
	r.resolveAll(schema.Definitions, nil, &errs)
	return errs
}

// collect performs a first pass assigning Scoped names and registering
// every struct/union/enum/typedef under its fully qualified name, and
// every enumerator under its bare, "Enum::Member", and fully scoped names
// (the scoped name is also stored in the enumerator's Scoped). This pass must
// complete before resolution so that forward references within a schema
// resolve identically to backward ones.
func (r *Resolver) collect(defs []Definition, scope []string) {
	for _, d := range defs {
		switch v := d.(type) {
		case *Struct:
			v.Scoped = joinScope(scope, v.Name)
			r.named[v.Scoped] = true
		case *Union:
			v.Scoped = joinScope(scope, v.Name)
			r.named[v.Scoped] = true
		case *Typedef:
			v.Scoped = joinScope(scope, v.Name)
			r.named[v.Scoped] = true
		case *Enum:
			v.Scoped = joinScope(scope, v.Name)
			r.named[v.Scoped] = true
			for _, en := range v.Enumerators {
				en.Scoped = v.Scoped + "::" + en.Name
				val := ConstValue{Kind: ConstInt, Int: int64(en.Value)}
				r.constants[en.Name] = val
				r.constants[v.Name+"::"+en.Name] = val
				r.constants[en.Scoped] = val
			}
		case *Constant:
			v.Scoped = joinScope(scope, v.Name)
			r.constants[v.Name] = v.Value
			r.constants[v.Scoped] = v.Value
		case *Module:
			v.Scoped = joinScope(scope, v.Name)
			r.collect(v.Definitions, extendScope(scope, v.Name))
		}
	}
}

func (r *Resolver) resolveAll(defs []Definition, scope []string, errs *[]ResolveError) {
	for _, d := range defs {
		switch v := d.(type) {
		case *Struct:
			for _, f := range v.Fields {
				r.resolveField(f, scope)
			}
		case *Union:
			v.SwitchType = r.resolveTypeName(v.SwitchType, scope)
			for _, c := range v.Cases {
				r.resolveField(c.Field, scope)
				for i := range c.Predicates {
					r.resolvePredicate(&c.Predicates[i], scope, errs)
				}
			}
			if v.Default != nil {
				r.resolveField(v.Default, scope)
			}
		case *Typedef:
			v.Type = r.resolveTypeName(v.Type, scope)
		case *Module:
			r.resolveAll(v.Definitions, extendScope(scope, v.Name), errs)
		}
	}
}

func (r *Resolver) resolveField(f *Field, scope []string) {
	f.Type = r.resolveTypeName(f.Type, scope)
}

// resolveTypeName normalizes a primitive alias or binds name to the
// innermost enclosing definition of that name:
//   - a "::"-prefixed name is accepted verbatim after stripping the prefix
//   - a name already containing "::" is accepted verbatim
//   - otherwise search scope[0:i]::name for i = len(scope)..0
//
// A name that matches nothing is returned unchanged; SchemaMap.Collapse
// reports UnknownTypeError when such a name fails the schema-map lookup.
func (r *Resolver) resolveTypeName(name string, scope []string) string {
	name = NormalizeAlias(name)
	if IsPrimitive(name) {
		return name
	}
	if strings.HasPrefix(name, "::") {
		return name[2:]
	}
	if strings.Contains(name, "::") {
		return name
	}
	for i := len(scope); i >= 0; i-- {
		candidate := joinScope(scope[:i], name)
		if r.named[candidate] {
			return candidate
		}
	}
	return name
}

func (r *Resolver) resolvePredicate(v *ConstValue, scope []string, errs *[]ResolveError) {
	if v.Kind != ConstIdent {
		return
	}
	if resolved, ok := r.constants[v.Str]; ok {
		*v = resolved
		return
	}
	for i := len(scope); i >= 0; i-- {
		candidate := joinScope(scope[:i], v.Str)
		if resolved, ok := r.constants[candidate]; ok {
			*v = resolved
			return
		}
	}
	*errs = append(*errs, ResolveError{Message: "unresolved case label identifier: " + v.Str})
}

func joinScope(scope []string, name string) string {
	if len(scope) == 0 {
		return name
	}
	return strings.Join(scope, "::") + "::" + name
}

// extendScope returns a new scope slice with name appended, never sharing
// scope's backing array with the caller (siblings in a recursive walk
// must not alias each other's appended element).
func extendScope(scope []string, name string) []string {
	out := make([]string, len(scope)+1)
	copy(out, scope)
	out[len(scope)] = name
	return out
}
