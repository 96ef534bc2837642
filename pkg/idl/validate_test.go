package idl

import "testing"

func validateSrc(t *testing.T, src string) []Diagnostic {
	t.Helper()
	schema, perrs := Parse("test.idl", src)
	if len(perrs) != 0 {
		t.Fatalf("parse errors: %v", perrs)
	}
	if errs := Resolve(schema); len(errs) != 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	m := BuildSchemaMap(schema)
	return Validate(schema, m)
}

func TestValidateCleanSchemaHasNoDiagnostics(t *testing.T) {
	diags := validateSrc(t, `
struct Point {
    int32 x;
    int32 y;
};
`)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestValidateDuplicateFieldName(t *testing.T) {
	diags := validateSrc(t, `
struct S {
    int32 x;
    string x;
};
`)
	if !HasErrors(diags) {
		t.Fatalf("expected a duplicate-field-name error, got %v", diags)
	}
}

func TestValidateDuplicateFieldID(t *testing.T) {
	diags := validateSrc(t, `
struct S {
    @id(1)
    int32 a;
    @id(1)
    int32 b;
};
`)
	if !HasErrors(diags) {
		t.Fatalf("expected a duplicate-field-id error, got %v", diags)
	}
}

func TestValidateUndefinedType(t *testing.T) {
	diags := validateSrc(t, `
struct S {
    Ghost field;
};
`)
	if !HasErrors(diags) {
		t.Fatalf("expected an undefined-type error, got %v", diags)
	}
}

func TestValidateDuplicateDiscriminatorValue(t *testing.T) {
	diags := validateSrc(t, `
union U switch (long) {
    case 0: int32 a;
    case 0: int32 b;
};
`)
	if !HasErrors(diags) {
		t.Fatalf("expected a duplicate-discriminator error, got %v", diags)
	}
}

func TestValidateEnumWithoutZeroValueWarns(t *testing.T) {
	// An enum whose enumerators start at @value(1) has no zero-valued
	// enumerator, which the validator reports as a warning, not an error.
	diags := validateSrc(t, `
enum Level {
    @value(1)
    LOW,
    HIGH
};
`)
	var sawWarning bool
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Fatalf("expected a warning for an enum with no zero-valued enumerator, got %v", diags)
	}
	if HasErrors(diags) {
		t.Fatalf("expected no errors, got %v", diags)
	}
}

func TestValidateSingleDefinitionIsNotDuplicate(t *testing.T) {
	diags := validateSrc(t, `
struct S {
    int32 v;
};
`)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics for a single definition, got %v", diags)
	}
}
