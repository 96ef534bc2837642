package extract

import "github.com/blockberries/omgidl/pkg/idl"

// Extractor ties the loader, collector, and builder into one call.
type Extractor struct {
	loader *PackageLoader
}

// NewExtractor creates a schema extractor.
func NewExtractor() *Extractor {
	return &Extractor{loader: NewPackageLoader()}
}

// Extract loads the Go packages matching patterns, collects their
// exported structs' idl tags, and builds an idl.Schema snapshot.
func (e *Extractor) Extract(patterns ...string) (*idl.Schema, error) {
	pkgs, err := e.loader.Load(patterns...)
	if err != nil {
		return nil, err
	}
	c := NewCollector(pkgs)
	if err := c.Collect(); err != nil {
		return nil, err
	}
	schema, err := Build(c.Types())
	if err != nil {
		return nil, err
	}
	return schema, nil
}
