// Package extract loads a Go package with golang.org/x/tools/go/packages,
// reads `idl:"name,id=N"` struct tags, and rebuilds an idl.Schema from
// them (P3) — used to detect drift between hand-written or generated Go
// bindings and the IDL schema they were supposed to track. This runs in
// the opposite direction from a typical schema-driven extractor: the
// wire contract's source of truth is always the IDL text, never the Go
// types, so Extract exists purely as a consistency check.
package extract

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// PackageLoader loads Go packages for struct-tag analysis.
type PackageLoader struct {
	config *packages.Config
}

// NewPackageLoader creates a loader configured to read names, type
// information, and syntax trees. Field tags are read from types.Struct.Tag,
// not from the syntax trees.
func NewPackageLoader() *PackageLoader {
	return &PackageLoader{
		config: &packages.Config{
			Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax,
		},
	}
}

// Load loads packages matching the given patterns.
func (l *PackageLoader) Load(patterns ...string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(l.config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("extract: failed to load packages: %w", err)
	}
	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("extract: package errors: %v", errs[0])
	}
	return pkgs, nil
}

// TypeInfo is one exported Go struct found in a loaded package, annotated
// with the `idl:"..."` tags on its fields.
type TypeInfo struct {
	Name    string
	PkgPath string
	Fields  []*FieldInfo
	GoType  types.Type
}

// FieldInfo is one struct field with a parsed idl tag.
type FieldInfo struct {
	GoName   string
	GoType   types.Type
	Tag      *StructTag
	Optional bool
}

// StructTag is a parsed `idl:"name,id=N"` struct tag.
type StructTag struct {
	Name string
	ID   int // 0 if absent
	Skip bool
}
