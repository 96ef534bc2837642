package idl

import "fmt"

// LoadError wraps the first stage of Load that failed, keeping the
// underlying parse/resolve/validate errors attached for callers that want
// to report all of them rather than just the summary text.
type LoadError struct {
	Stage  string
	Parse  []ParseError
	Resolve []ResolveError
	Diags  []Diagnostic
}

func (e *LoadError) Error() string {
	switch e.Stage {
	case "parse":
		return fmt.Sprintf("idl: %d parse error(s), first: %s", len(e.Parse), e.Parse[0].Error())
	case "resolve":
		return fmt.Sprintf("idl: %d name resolution error(s), first: %s", len(e.Resolve), e.Resolve[0].Error())
	case "validate":
		return fmt.Sprintf("idl: %d schema error(s), first: %s", len(e.Diags), e.Diags[0].Error())
	default:
		return "idl: load failed"
	}
}

// Loaded bundles every artifact of the load pipeline a codec needs.
type Loaded struct {
	Schema *Schema
	Map    *SchemaMap
	Cache  *Cache
	Diags  []Diagnostic // warnings only; Load fails on any error-severity diagnostic
}

// Load runs the full pipeline — parse, resolve names, build the schema map,
// validate, and construct a deserialization info cache — over one IDL
// source file. It is the convenience entry point; callers needing finer
// control (multiple files sharing one SchemaMap, custom diagnostic
// handling) should call Parse, Resolve, BuildSchemaMap, Validate, and
// NewCache directly.
func Load(filename, source string) (*Loaded, error) {
	schema, perrs := Parse(filename, source)
	if len(perrs) > 0 {
		return nil, &LoadError{Stage: "parse", Parse: perrs}
	}

	if rerrs := Resolve(schema); len(rerrs) > 0 {
		return nil, &LoadError{Stage: "resolve", Resolve: rerrs}
	}

	m := BuildSchemaMap(schema)

	diags := Validate(schema, m)
	if HasErrors(diags) {
		return nil, &LoadError{Stage: "validate", Diags: diags}
	}

	return &Loaded{Schema: schema, Map: m, Cache: NewCache(m), Diags: diags}, nil
}
