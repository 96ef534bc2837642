package idl

import "testing"

func newCache(t *testing.T, src string) *Cache {
	t.Helper()
	schema, perrs := Parse("test.idl", src)
	if len(perrs) != 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	if errs := Resolve(schema); len(errs) != 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	m := BuildSchemaMap(schema)
	return NewCache(m)
}

func TestComplexInfoForStructAssignsDeclarationOrderIDs(t *testing.T) {
	c := newCache(t, `
struct S {
    int32 a;
    int32 b;
    @id(10)
    int32 c;
};
`)
	info, err := c.ComplexInfoFor("S")
	if err != nil {
		t.Fatalf("ComplexInfoFor: %v", err)
	}
	if info.Fields[0].ID != 1 || info.Fields[1].ID != 2 {
		t.Fatalf("expected positional ids 1, 2, got %d, %d", info.Fields[0].ID, info.Fields[1].ID)
	}
	if info.Fields[2].ID != 10 {
		t.Fatalf("expected explicit @id(10), got %d", info.Fields[2].ID)
	}
}

func TestComplexInfoFramingFlags(t *testing.T) {
	c := newCache(t, `
struct Final {
    int32 v;
};

@appendable
struct Appendable {
    int32 v;
};

@mutable
struct Mutable {
    int32 v;
};
`)
	final, err := c.ComplexInfoFor("Final")
	if err != nil {
		t.Fatalf("ComplexInfoFor Final: %v", err)
	}
	if final.UsesDelimiter || final.UsesMemberHeader {
		t.Fatalf("final struct should use neither delimiter nor member headers: %+v", final)
	}

	appendable, err := c.ComplexInfoFor("Appendable")
	if err != nil {
		t.Fatalf("ComplexInfoFor Appendable: %v", err)
	}
	if !appendable.UsesDelimiter || appendable.UsesMemberHeader {
		t.Fatalf("appendable struct should use delimiter but not member headers: %+v", appendable)
	}

	mutable, err := c.ComplexInfoFor("Mutable")
	if err != nil {
		t.Fatalf("ComplexInfoFor Mutable: %v", err)
	}
	if !mutable.UsesDelimiter || !mutable.UsesMemberHeader {
		t.Fatalf("mutable struct should use both delimiter and member headers: %+v", mutable)
	}
}

func TestDefaultPrimitiveZeroValues(t *testing.T) {
	c := newCache(t, `
struct S {
    int32 n;
    bool flag;
    string s;
    float64 f;
};
`)
	info, err := c.ComplexInfoFor("S")
	if err != nil {
		t.Fatalf("ComplexInfoFor: %v", err)
	}
	def, err := c.Default(info)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if def.Map["n"].Int != 0 || def.Map["flag"].Bool != false || def.Map["s"].Str != "" || def.Map["f"].Float != 0 {
		t.Fatalf("unexpected default: %+v", def)
	}
}

func TestDefaultHonorsDefaultAnnotation(t *testing.T) {
	c := newCache(t, `
struct S {
    @default(42)
    int32 n;
};
`)
	info, err := c.ComplexInfoFor("S")
	if err != nil {
		t.Fatalf("ComplexInfoFor: %v", err)
	}
	def, err := c.Default(info)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if def.Map["n"].Int != 42 {
		t.Fatalf("expected default 42, got %d", def.Map["n"].Int)
	}
}

func TestDefaultSkipsOptionalFieldsWithoutDefault(t *testing.T) {
	c := newCache(t, `
struct S {
    @optional
    string note;
    int32 required;
};
`)
	info, err := c.ComplexInfoFor("S")
	if err != nil {
		t.Fatalf("ComplexInfoFor: %v", err)
	}
	def, err := c.Default(info)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if _, ok := def.Map["note"]; ok {
		t.Fatalf("expected optional field without default to be absent, got %+v", def.Map)
	}
	if _, ok := def.Map["required"]; !ok {
		t.Fatal("expected required field present")
	}
}

func TestDefaultNestedFixedArray(t *testing.T) {
	c := newCache(t, `
struct S {
    int32 grid[2][3];
};
`)
	info, err := c.ComplexInfoFor("S")
	if err != nil {
		t.Fatalf("ComplexInfoFor: %v", err)
	}
	def, err := c.Default(info)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	grid := def.Map["grid"]
	if len(grid.List) != 2 {
		t.Fatalf("expected outer dim 2, got %d", len(grid.List))
	}
	if len(grid.List[0].List) != 3 {
		t.Fatalf("expected inner dim 3, got %d", len(grid.List[0].List))
	}
}

func TestDefaultSequenceIsEmptyList(t *testing.T) {
	c := newCache(t, `
struct S {
    sequence<int32> items;
};
`)
	info, err := c.ComplexInfoFor("S")
	if err != nil {
		t.Fatalf("ComplexInfoFor: %v", err)
	}
	def, err := c.Default(info)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(def.Map["items"].List) != 0 {
		t.Fatalf("expected empty sequence default, got %+v", def.Map["items"])
	}
}

func TestDefaultUnionTakesDefaultCase(t *testing.T) {
	c := newCache(t, `
union U switch (long) {
    case 0: int32 a;
    default: int32 b;
};
`)
	info, err := c.ComplexInfoFor("U")
	if err != nil {
		t.Fatalf("ComplexInfoFor: %v", err)
	}
	def, err := c.Default(info)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if def.Map[DiscriminatorKey].Int != 0 {
		t.Fatalf("expected discriminator 0, got %d", def.Map[DiscriminatorKey].Int)
	}
	if _, ok := def.Map["b"]; !ok {
		t.Fatalf("expected default case field b present, got %+v", def.Map)
	}
}

func TestDefaultUnionWithoutDefaultUsesZeroDiscriminatorCase(t *testing.T) {
	c := newCache(t, `
union U switch (long) {
    case 0: int32 a;
    case 1: int32 b;
};
`)
	info, err := c.ComplexInfoFor("U")
	if err != nil {
		t.Fatalf("ComplexInfoFor: %v", err)
	}
	def, err := c.Default(info)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if _, ok := def.Map["a"]; !ok {
		t.Fatalf("expected case-0 field a selected by zero discriminator, got %+v", def.Map)
	}
}

func TestDefaultIsDeepCopiedAcrossCalls(t *testing.T) {
	c := newCache(t, `
struct S {
    sequence<int32> items;
};
`)
	info, err := c.ComplexInfoFor("S")
	if err != nil {
		t.Fatalf("ComplexInfoFor: %v", err)
	}
	first, err := c.Default(info)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	first.Map["items"] = List(Int(1), Int(2))

	second, err := c.Default(info)
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(second.Map["items"].List) != 0 {
		t.Fatal("mutating one default's value leaked into a subsequent Default() call")
	}
}
