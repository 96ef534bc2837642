package extract

import (
	"fmt"
	"go/types"

	"github.com/blockberries/omgidl/pkg/idl"
)

// Build turns collected Go struct information into an idl.Schema: one
// idl.Struct per exported Go struct, each field's IDL type name inferred
// from its Go type. The result is flat (no modules — Go packages don't
// nest the way IDL modules do) and is meant for diffing against a
// schema map built from the real IDL source, not for round-tripping.
func Build(collected []*TypeInfo) (*idl.Schema, error) {
	byGoType := make(map[string]string, len(collected))
	for _, t := range collected {
		byGoType[t.GoType.String()] = t.Name
	}

	defs := make([]idl.Definition, 0, len(collected))
	for _, t := range collected {
		s := &idl.Struct{Name: t.Name, Scoped: t.Name}
		for _, f := range t.Fields {
			idlType, arrayLengths, isSequence, err := goTypeToIDL(f.GoType, byGoType)
			if err != nil {
				return nil, fmt.Errorf("extract: %s.%s: %w", t.Name, f.GoName, err)
			}
			field := &idl.Field{Name: f.Tag.Name, Type: idlType, ArrayLengths: arrayLengths, IsSequence: isSequence}
			if f.Tag.ID != 0 {
				field.Annotations = append(field.Annotations, idl.Annotation{Name: "id", Arg: fmt.Sprint(f.Tag.ID)})
			}
			if f.Optional {
				field.Annotations = append(field.Annotations, idl.Annotation{Name: "optional"})
			}
			s.Fields = append(s.Fields, field)
		}
		defs = append(defs, s)
	}
	return &idl.Schema{Definitions: defs}, nil
}

// goTypeToIDL infers an IDL type reference for a Go type. Pointers are
// unwrapped (they mark @optional, handled by the caller); slices become
// sequences; arrays become fixed dimensions; named types referring to
// another collected struct resolve to that struct's name.
func goTypeToIDL(t types.Type, byGoType map[string]string) (typeName string, arrayLengths []int, isSequence bool, err error) {
	for {
		if p, ok := t.(*types.Pointer); ok {
			t = p.Elem()
			continue
		}
		break
	}
	switch v := t.(type) {
	case *types.Basic:
		name, ok := basicToIDL[v.Name()]
		if !ok {
			return "", nil, false, fmt.Errorf("unsupported Go basic type %q", v.Name())
		}
		return name, nil, false, nil
	case *types.Slice:
		elemName, elemDims, elemSeq, err := goTypeToIDL(v.Elem(), byGoType)
		if err != nil {
			return "", nil, false, err
		}
		if elemSeq || len(elemDims) > 0 {
			return "", nil, false, fmt.Errorf("nested slice/array composition is not representable")
		}
		return elemName, nil, true, nil
	case *types.Array:
		elemName, elemDims, elemSeq, err := goTypeToIDL(v.Elem(), byGoType)
		if err != nil {
			return "", nil, false, err
		}
		if elemSeq {
			return "", nil, false, fmt.Errorf("array of sequence is not representable")
		}
		return elemName, append([]int{int(v.Len())}, elemDims...), false, nil
	case *types.Named:
		if name, ok := byGoType[v.String()]; ok {
			return name, nil, false, nil
		}
		return "", nil, false, fmt.Errorf("unrecognized named Go type %q (not among extracted structs)", v.String())
	default:
		return "", nil, false, fmt.Errorf("unsupported Go type %T", t)
	}
}

var basicToIDL = map[string]string{
	"bool":    "bool",
	"int8":    "int8",
	"uint8":   "uint8",
	"int16":   "int16",
	"uint16":  "uint16",
	"int32":   "int32",
	"uint32":  "uint32",
	"int64":   "int64",
	"uint64":  "uint64",
	"float32": "float32",
	"float64": "float64",
	"string":  "string",
}
