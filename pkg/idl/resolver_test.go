package idl

import "testing"

func TestResolveSetsScopedNames(t *testing.T) {
	schema, perrs := Parse("test.idl", `
module outer {
    struct Point {
        int32 x;
    };

    enum Color {
        RED,
        GREEN
    };
};
`)
	if len(perrs) != 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	if errs := Resolve(schema); len(errs) != 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	outer := schema.Definitions[0].(*Module)
	if outer.Scoped != "outer" {
		t.Fatalf("expected module scoped name outer, got %q", outer.Scoped)
	}
	point := outer.Definitions[0].(*Struct)
	if point.Scoped != "outer::Point" {
		t.Fatalf("expected outer::Point, got %q", point.Scoped)
	}
	color := outer.Definitions[1].(*Enum)
	if color.Scoped != "outer::Color" {
		t.Fatalf("expected outer::Color, got %q", color.Scoped)
	}
	if color.Enumerators[0].Scoped != "outer::Color::RED" {
		t.Fatalf("expected outer::Color::RED, got %q", color.Enumerators[0].Scoped)
	}
}

func TestResolveRewritesFieldTypeToScopedName(t *testing.T) {
	schema, perrs := Parse("test.idl", `
module m {
    struct Inner {
        int32 v;
    };

    struct Outer {
        Inner field;
    };
};
`)
	if len(perrs) != 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	if errs := Resolve(schema); len(errs) != 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	m := schema.Definitions[0].(*Module)
	outer := m.Definitions[1].(*Struct)
	if outer.Fields[0].Type != "m::Inner" {
		t.Fatalf("expected field type rewritten to m::Inner, got %q", outer.Fields[0].Type)
	}
}

// An unresolved field type is not Resolve's concern: it leaves the name
// unchanged and lets the later schema-map lookup (C3) report UnknownType.
func TestResolveLeavesUnknownFieldTypeUnchanged(t *testing.T) {
	schema, perrs := Parse("test.idl", `
struct Bad {
    Missing field;
};
`)
	if len(perrs) != 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	if errs := Resolve(schema); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	s := schema.Definitions[0].(*Struct)
	if s.Fields[0].Type != "Missing" {
		t.Fatalf("expected unresolved type left as Missing, got %q", s.Fields[0].Type)
	}
}

func TestResolveReportsUnresolvedCaseLabel(t *testing.T) {
	schema, perrs := Parse("test.idl", `
union U switch (long) {
    case UNKNOWN_CONST: int32 v;
    default: int32 w;
};
`)
	if len(perrs) != 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	errs := Resolve(schema)
	if len(errs) == 0 {
		t.Fatal("expected a resolve error for an unresolved case label identifier")
	}
}

func TestResolveLeavesPrimitivesUntouched(t *testing.T) {
	schema, perrs := Parse("test.idl", `
struct Prim {
    int32 a;
    string b;
};
`)
	if len(perrs) != 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	if errs := Resolve(schema); len(errs) != 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	s := schema.Definitions[0].(*Struct)
	if s.Fields[0].Type != "int32" || s.Fields[1].Type != "string" {
		t.Fatalf("expected primitive types untouched, got %+v", s.Fields)
	}
}
