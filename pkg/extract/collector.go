package extract

import (
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Collector walks loaded packages collecting exported structs and the
// `idl:"name,id=N"` tags on their fields.
type Collector struct {
	packages []*packages.Package
	types    []*TypeInfo
}

// NewCollector builds a Collector over already-loaded packages.
func NewCollector(pkgs []*packages.Package) *Collector {
	return &Collector{packages: pkgs}
}

// Collect walks every package's scope and records one TypeInfo per
// exported named struct type.
func (c *Collector) Collect() error {
	for _, pkg := range c.packages {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj := scope.Lookup(name)
			tn, ok := obj.(*types.TypeName)
			if !ok || !tn.Exported() {
				continue
			}
			st, ok := tn.Type().Underlying().(*types.Struct)
			if !ok {
				continue
			}
			c.types = append(c.types, c.collectStruct(pkg.PkgPath, tn.Name(), tn.Type(), st))
		}
	}
	return nil
}

// Types returns the collected structs in package-scope order.
func (c *Collector) Types() []*TypeInfo { return c.types }

func (c *Collector) collectStruct(pkgPath, name string, goType types.Type, st *types.Struct) *TypeInfo {
	info := &TypeInfo{Name: name, PkgPath: pkgPath, GoType: goType}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Exported() {
			continue
		}
		tag := parseTag(st.Tag(i), f.Name())
		if tag.Skip {
			continue
		}
		_, isPointer := f.Type().(*types.Pointer)
		info.Fields = append(info.Fields, &FieldInfo{
			GoName:   f.Name(),
			GoType:   f.Type(),
			Tag:      tag,
			Optional: isPointer,
		})
	}
	return info
}

func parseTag(tag, goFieldName string) *StructTag {
	st := &StructTag{Name: goFieldName}
	idlTag := reflect.StructTag(tag).Get("idl")
	if idlTag == "-" {
		st.Skip = true
		return st
	}
	if idlTag == "" {
		return st
	}
	parts := strings.Split(idlTag, ",")
	if parts[0] != "" {
		st.Name = parts[0]
	}
	for _, part := range parts[1:] {
		if n, ok := strings.CutPrefix(part, "id="); ok {
			if v, err := strconv.Atoi(n); err == nil {
				st.ID = v
			}
		}
	}
	return st
}
