// Package codegen emits idiomatic Go source from a resolved IDL schema
// (P2): one struct per IDL struct/union, one typed uint32 constant block
// per enum. The generated code is a convenience for callers who want
// static Go types alongside the dynamic pkg/idl.Value tree — it is never
// consumed by pkg/cdr, which stays Value-tree based.
package codegen

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Options configures Go source generation.
type Options struct {
	// Package is the generated file's package name.
	Package string

	// TypePrefix adds a prefix to every generated type name.
	TypePrefix string

	// GenerateComments includes a doc comment naming the source IDL type
	// above each generated declaration.
	GenerateComments bool
}

// DefaultOptions returns the default generation options.
func DefaultOptions() Options {
	return Options{Package: "idlgen", GenerateComments: true}
}

// titleCaser re-cases identifier words to PascalCase. Language-neutral
// (language.Und) since IDL identifiers carry no locale.
var titleCaser = cases.Title(language.Und)

// ToPascalCase converts an IDL identifier (snake_case or mixed) to Go
// PascalCase.
func ToPascalCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ToLower(p))
	}
	return strings.Join(parts, "")
}

// ToCamelCase converts an IDL identifier to Go lowerCamelCase.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

func splitName(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	var current strings.Builder
	for i, r := range s {
		if r == '_' || r == '-' || r == ':' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			continue
		}
		if i > 0 && isUpper(r) && !isUpper(rune(s[i-1])) {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// GoComment wraps text as a Go doc comment.
func GoComment(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "// " + line
	}
	return strings.Join(lines, "\n")
}

// GeneratorError reports a schema shape codegen cannot represent in Go.
type GeneratorError struct {
	TypeName string
	Message  string
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("codegen: %s: %s", e.TypeName, e.Message)
}
