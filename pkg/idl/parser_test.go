package idl

import "testing"

func parseOK(t *testing.T, input string) *Schema {
	t.Helper()
	schema, errs := Parse("test.idl", input)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return schema
}

func TestParseStructFields(t *testing.T) {
	schema := parseOK(t, `
struct Point {
    int32 x;
    int32 y;
};
`)
	if len(schema.Definitions) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(schema.Definitions))
	}
	s, ok := schema.Definitions[0].(*Struct)
	if !ok {
		t.Fatalf("expected *Struct, got %T", schema.Definitions[0])
	}
	if s.Name != "Point" || len(s.Fields) != 2 {
		t.Fatalf("unexpected struct: %+v", s)
	}
	if s.Fields[0].Name != "x" || s.Fields[0].Type != "int32" {
		t.Fatalf("unexpected field 0: %+v", s.Fields[0])
	}
}

func TestParseArrayAndSequenceFields(t *testing.T) {
	schema := parseOK(t, `
struct Grid {
    int32 cells[4][4];
    sequence<string> labels;
    sequence<int32, 10> bounded;
    string<32> name;
};
`)
	s := schema.Definitions[0].(*Struct)
	cells := s.Fields[0]
	if len(cells.ArrayLengths) != 2 || cells.ArrayLengths[0] != 4 || cells.ArrayLengths[1] != 4 {
		t.Fatalf("unexpected array dims: %+v", cells.ArrayLengths)
	}
	labels := s.Fields[1]
	if !labels.IsSequence || labels.SequenceBound != 0 {
		t.Fatalf("unexpected unbounded sequence field: %+v", labels)
	}
	bounded := s.Fields[2]
	if !bounded.IsSequence || bounded.SequenceBound != 10 {
		t.Fatalf("unexpected bounded sequence field: %+v", bounded)
	}
	name := s.Fields[3]
	if name.StringUpperBound != 32 {
		t.Fatalf("unexpected bounded string field: %+v", name)
	}
}

func TestParseAnnotations(t *testing.T) {
	schema := parseOK(t, `
@appendable
struct Event {
    int64 timestamp;
    @optional
    @id(5)
    string note;
};
`)
	s := schema.Definitions[0].(*Struct)
	if !s.IsAppendable() {
		t.Fatal("expected @appendable struct")
	}
	note := s.Fields[1]
	if !note.IsOptional() {
		t.Fatal("expected @optional field")
	}
	id, ok := note.ID()
	if !ok || id != 5 {
		t.Fatalf("expected @id(5), got %d ok=%v", id, ok)
	}
}

func TestParseEnum(t *testing.T) {
	schema := parseOK(t, `
enum Color {
    RED,
    GREEN,
    BLUE
};
`)
	e := schema.Definitions[0].(*Enum)
	if len(e.Enumerators) != 3 {
		t.Fatalf("expected 3 enumerators, got %d", len(e.Enumerators))
	}
	for i, want := range []string{"RED", "GREEN", "BLUE"} {
		if e.Enumerators[i].Name != want {
			t.Fatalf("enumerator %d: got %s, want %s", i, e.Enumerators[i].Name, want)
		}
		if e.Enumerators[i].Value != uint32(i) {
			t.Fatalf("enumerator %d: got value %d, want %d", i, e.Enumerators[i].Value, i)
		}
	}
}

func TestParseUnion(t *testing.T) {
	schema := parseOK(t, `
union Shape switch (long) {
    case 0: double radius;
    case 1:
    case 2: double width;
    default: double base;
};
`)
	u := schema.Definitions[0].(*Union)
	if u.SwitchType != "long" {
		t.Fatalf("unexpected switch type: %s", u.SwitchType)
	}
	if len(u.Cases) != 2 {
		t.Fatalf("expected 2 cases (one with two predicates), got %d", len(u.Cases))
	}
	if len(u.Cases[1].Predicates) != 2 {
		t.Fatalf("expected case 1 to carry two predicates (fallthrough), got %d", len(u.Cases[1].Predicates))
	}
	if u.Default == nil {
		t.Fatal("expected a default case")
	}
}

func TestParseTypedefAndConst(t *testing.T) {
	schema := parseOK(t, `
typedef sequence<int32> IntList;
const int32 MAX_COUNT = 100;
`)
	td := schema.Definitions[0].(*Typedef)
	if td.Name != "IntList" || !td.IsSequence {
		t.Fatalf("unexpected typedef: %+v", td)
	}
	c := schema.Definitions[1].(*Constant)
	if c.Name != "MAX_COUNT" || c.Value.Int != 100 {
		t.Fatalf("unexpected constant: %+v", c)
	}
}

func TestParseNestedModule(t *testing.T) {
	schema := parseOK(t, `
module outer {
    module inner {
        struct Leaf {
            int32 v;
        };
    };
};
`)
	outer := schema.Definitions[0].(*Module)
	inner := outer.Definitions[0].(*Module)
	leaf := inner.Definitions[0].(*Struct)
	if leaf.Name != "Leaf" {
		t.Fatalf("unexpected nested struct: %+v", leaf)
	}
}

func TestParseCollectsMultipleErrorsAndResynchronizes(t *testing.T) {
	_, errs := Parse("test.idl", `
struct Bad1 {
    int32 x
};

struct Bad2 {
    int32 y
};
`)
	if len(errs) < 2 {
		t.Fatalf("expected parser to resynchronize and report multiple errors, got %d: %v", len(errs), errs)
	}
}
