package codegen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/blockberries/omgidl/pkg/idl"
)

// GenerateGo walks schema (already parsed, resolved, and indexed — see
// idl.Resolve / idl.BuildSchemaMap) and emits one Go struct per IDL
// struct, one Go struct per IDL union (discriminator field plus one
// pointer field per case), and one typed uint32 constant block per enum.
func GenerateGo(schema *idl.SchemaMap, opts Options) ([]byte, error) {
	g := &goGen{schema: schema, opts: opts}

	var decls []string
	for _, name := range schema.Names() {
		def, _ := schema.Lookup(name)
		switch v := def.(type) {
		case *idl.Struct:
			d, err := g.structDecl(v)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		case *idl.Union:
			d, err := g.unionDecl(v)
			if err != nil {
				return nil, err
			}
			decls = append(decls, d)
		case *idl.Enum:
			decls = append(decls, g.enumDecl(v))
		}
	}

	tmpl := template.Must(template.New("file").Parse(fileTemplate))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		Package string
		Decls   []string
	}{Package: opts.Package, Decls: decls}); err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}
	return buf.Bytes(), nil
}

const fileTemplate = `// Code generated from an IDL schema. DO NOT EDIT.

package {{.Package}}

{{range .Decls}}{{.}}
{{end}}`

type goGen struct {
	schema *idl.SchemaMap
	opts   Options
}

func (g *goGen) typeName(scoped string) string {
	parts := strings.Split(scoped, "::")
	var b strings.Builder
	b.WriteString(g.opts.TypePrefix)
	for _, p := range parts {
		b.WriteString(ToPascalCase(p))
	}
	return b.String()
}

// goFieldType renders the Go type for an already-collapsed field: fixed
// array dimensions wrap the element type, a sequence becomes a slice,
// everything else is the scalar mapping.
func (g *goGen) goFieldType(r idl.ResolvedType) (string, error) {
	scalar, err := g.goScalarType(r)
	if err != nil {
		return "", err
	}
	t := scalar
	for range r.ArrayLengths {
		t = "[]" + t // dimensions collapse to nested slices; exact [N] sizing is a P2 convenience, not load-bearing for the wire
	}
	if r.IsSequence {
		t = "[]" + t
	}
	return t, nil
}

func (g *goGen) goScalarType(r idl.ResolvedType) (string, error) {
	if r.IsEnum {
		return g.typeName(r.Final), nil
	}
	switch r.Final {
	case "bool":
		return "bool", nil
	case "int8":
		return "int8", nil
	case "uint8", "byte", "octet", "char":
		return "uint8", nil
	case "int16":
		return "int16", nil
	case "uint16", "wchar":
		return "uint16", nil
	case "int32":
		return "int32", nil
	case "uint32":
		return "uint32", nil
	case "int64":
		return "int64", nil
	case "uint64":
		return "uint64", nil
	case "float32":
		return "float32", nil
	case "float64":
		return "float64", nil
	case "string", "wstring":
		return "string", nil
	default:
		if idl.IsPrimitive(r.Final) {
			return "", &GeneratorError{TypeName: r.Final, Message: "unmapped primitive"}
		}
		return g.typeName(r.Final), nil
	}
}

func (g *goGen) structDecl(s *idl.Struct) (string, error) {
	var b strings.Builder
	if g.opts.GenerateComments {
		fmt.Fprintf(&b, "// %s is generated from the IDL struct %q.\n", g.typeName(s.Scoped), s.Scoped)
	}
	fmt.Fprintf(&b, "type %s struct {\n", g.typeName(s.Scoped))
	for _, f := range s.Fields {
		resolved, err := g.schema.Collapse(f.Type, f.ArrayLengths, f.IsSequence, f.SequenceBound, f.StringUpperBound)
		if err != nil {
			return "", fmt.Errorf("struct %s field %s: %w", s.Scoped, f.Name, err)
		}
		goType, err := g.goFieldType(resolved)
		if err != nil {
			return "", fmt.Errorf("struct %s field %s: %w", s.Scoped, f.Name, err)
		}
		if f.IsOptional() {
			goType = "*" + goType
		}
		tag := fmt.Sprintf("`idl:\"%s", f.Name)
		if n, ok := f.ID(); ok {
			tag += fmt.Sprintf(",id=%d", n)
		}
		tag += "\"`"
		fmt.Fprintf(&b, "\t%s %s %s\n", ToPascalCase(f.Name), goType, tag)
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func (g *goGen) unionDecl(u *idl.Union) (string, error) {
	discResolved, err := g.schema.Collapse(u.SwitchType, nil, false, 0, 0)
	if err != nil {
		return "", fmt.Errorf("union %s: %w", u.Scoped, err)
	}
	discType, err := g.goScalarType(discResolved)
	if err != nil {
		return "", fmt.Errorf("union %s: %w", u.Scoped, err)
	}

	var b strings.Builder
	if g.opts.GenerateComments {
		fmt.Fprintf(&b, "// %s is generated from the IDL union %q. Exactly one case\n// field is meaningful at a time, selected by Discriminator.\n", g.typeName(u.Scoped), u.Scoped)
	}
	fmt.Fprintf(&b, "type %s struct {\n\tDiscriminator %s `idl:\"$discriminator\"`\n", g.typeName(u.Scoped), discType)

	allFields := make([]*idl.Field, 0, len(u.Cases)+1)
	for _, c := range u.Cases {
		allFields = append(allFields, c.Field)
	}
	if u.Default != nil {
		allFields = append(allFields, u.Default)
	}
	for _, f := range allFields {
		resolved, err := g.schema.Collapse(f.Type, f.ArrayLengths, f.IsSequence, f.SequenceBound, f.StringUpperBound)
		if err != nil {
			return "", fmt.Errorf("union %s case %s: %w", u.Scoped, f.Name, err)
		}
		goType, err := g.goFieldType(resolved)
		if err != nil {
			return "", fmt.Errorf("union %s case %s: %w", u.Scoped, f.Name, err)
		}
		fmt.Fprintf(&b, "\t%s *%s `idl:\"%s\"`\n", ToPascalCase(f.Name), goType, f.Name)
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func (g *goGen) enumDecl(e *idl.Enum) string {
	name := g.typeName(e.Scoped)
	var b strings.Builder
	if g.opts.GenerateComments {
		fmt.Fprintf(&b, "// %s is generated from the IDL enum %q. Enumerators demote\n// to plain uint32 on the wire.\n", name, e.Scoped)
	}
	fmt.Fprintf(&b, "type %s = uint32\n\nconst (\n", name)
	for _, en := range e.Enumerators {
		fmt.Fprintf(&b, "\t%s%s %s = %d\n", name, ToPascalCase(en.Name), name, en.Value)
	}
	b.WriteString(")\n")
	return b.String()
}
