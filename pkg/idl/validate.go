package idl

import (
	"fmt"
	"sort"
)

// Diagnostic is one issue raised by Validate, at Error or Warning severity.
type Diagnostic struct {
	Position Position
	Message  string
	Severity Severity
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s",
		d.Position.Filename, d.Position.Line, d.Position.Column, d.Severity, d.Message)
}

// Severity indicates whether a Diagnostic blocks code generation.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// validator is P1's schema diagnostics pass: after C2 resolution it walks
// the definition tree again checking for duplicate names, unresolved type
// references, ill-formed unions, and enum/field id collisions that are
// schema-wide invariants rather than parse-time syntax errors.
type validator struct {
	schema *SchemaMap
	diags  []Diagnostic
	seen   map[string]Position // scoped name -> first definition site
}

// Validate runs schema diagnostics over an already-resolved schema and its
// built SchemaMap, returning every Diagnostic found. Validate does not
// mutate schema or m.
func Validate(schema *Schema, m *SchemaMap) []Diagnostic {
	v := &validator{schema: m, seen: map[string]Position{}}
	v.walk(schema.Definitions)
	sort.SliceStable(v.diags, func(i, j int) bool {
		if v.diags[i].Position.Line != v.diags[j].Position.Line {
			return v.diags[i].Position.Line < v.diags[j].Position.Line
		}
		return v.diags[i].Position.Column < v.diags[j].Position.Column
	})
	return v.diags
}

func (v *validator) walk(defs []Definition) {
	for _, d := range defs {
		switch t := d.(type) {
		case *Struct:
			v.checkDuplicateDef(t.Scoped, t.Position)
			v.validateStruct(t)
		case *Union:
			v.checkDuplicateDef(t.Scoped, t.Position)
			v.validateUnion(t)
		case *Enum:
			v.checkDuplicateDef(t.Scoped, t.Position)
			v.validateEnum(t)
		case *Typedef:
			v.checkDuplicateDef(t.Scoped, t.Position)
			v.validateTypeName(t.Type, t.Position)
		case *Constant:
			v.checkDuplicateDef(t.Scoped, t.Position)
		case *Module:
			v.walk(t.Definitions)
		}
	}
}

func (v *validator) checkDuplicateDef(name string, pos Position) {
	if name == "" {
		return
	}
	if existing, ok := v.seen[name]; ok {
		v.addError(pos, "duplicate type name %q (previously defined at %d:%d)", name, existing.Line, existing.Column)
		return
	}
	v.seen[name] = pos
}

func (v *validator) validateStruct(s *Struct) {
	ids := map[int]string{}
	names := map[string]bool{}
	for _, f := range s.Fields {
		if names[f.Name] {
			v.addError(f.Position, "duplicate field name %q in struct %q", f.Name, s.Name)
		} else {
			names[f.Name] = true
		}

		id, explicit := f.ID()
		if explicit {
			if id < 0 {
				v.addError(f.Position, "field id must be non-negative, got %d", id)
			}
			if existing, ok := ids[id]; ok {
				v.addError(f.Position, "duplicate field id %d (also used by %q)", id, existing)
			} else {
				ids[id] = f.Name
			}
		}

		v.validateTypeName(f.Type, f.Position)

		if f.StringUpperBound < 0 {
			v.addError(f.Position, "string bound must be non-negative, got %d", f.StringUpperBound)
		}
		if f.SequenceBound < 0 {
			v.addError(f.Position, "sequence bound must be non-negative, got %d", f.SequenceBound)
		}
	}
}

func (v *validator) validateUnion(u *Union) {
	v.validateTypeName(u.SwitchType, u.Position)

	predicates := map[string]string{} // normalized predicate -> case field name
	caseNames := map[string]bool{}
	for _, c := range u.Cases {
		if caseNames[c.Field.Name] {
			v.addError(c.Position, "duplicate case field name %q in union %q", c.Field.Name, u.Name)
		} else {
			caseNames[c.Field.Name] = true
		}
		if len(c.Predicates) == 0 {
			v.addError(c.Position, "union case %q has no discriminator labels", c.Field.Name)
		}
		for _, p := range c.Predicates {
			key := predicateKey(p)
			if existing, ok := predicates[key]; ok {
				v.addError(c.Position, "duplicate discriminator value %s (also used by case %q)", key, existing)
			} else {
				predicates[key] = c.Field.Name
			}
		}
		v.validateTypeName(c.Field.Type, c.Position)
	}
	if u.Default != nil {
		v.validateTypeName(u.Default.Type, u.Default.Position)
	}
}

func predicateKey(p ConstValue) string {
	switch p.Kind {
	case ConstBool:
		return fmt.Sprintf("%v", p.Bool)
	case ConstInt:
		return fmt.Sprintf("%d", p.Int)
	case ConstString:
		return fmt.Sprintf("%q", p.Str)
	default:
		return fmt.Sprintf("%v", p)
	}
}

func (v *validator) validateEnum(e *Enum) {
	values := map[uint32]string{}
	names := map[string]bool{}
	for _, en := range e.Enumerators {
		if names[en.Name] {
			v.addError(en.Position, "duplicate enumerator name %q in enum %q", en.Name, e.Name)
		} else {
			names[en.Name] = true
		}
		if existing, ok := values[en.Value]; ok {
			v.addError(en.Position, "duplicate enumerator value %d (also used by %q)", en.Value, existing)
		} else {
			values[en.Value] = en.Name
		}
	}
	if len(e.Enumerators) > 0 {
		if _, hasZero := values[0]; !hasZero {
			v.addWarning(e.Position, "enum %q has no zero-valued enumerator", e.Name)
		}
	}
}

// validateTypeName checks that a resolved (or still-unqualified, if
// resolution failed to bind it) type name corresponds to a primitive or a
// schema-map entry, without chasing typedef chains — that is C3's job and
// is re-checked by the codec at construction time (RootNotFoundError,
// UnknownTypeError).
func (v *validator) validateTypeName(name string, pos Position) {
	if IsPrimitive(NormalizeAlias(name)) {
		return
	}
	if _, ok := v.schema.Lookup(name); !ok {
		v.addError(pos, "undefined type %q", name)
	}
}

func (v *validator) addError(pos Position, format string, args ...any) {
	v.diags = append(v.diags, Diagnostic{Position: pos, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (v *validator) addWarning(pos Position, format string, args ...any) {
	v.diags = append(v.diags, Diagnostic{Position: pos, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// HasErrors reports whether diags contains any error-severity diagnostic.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
