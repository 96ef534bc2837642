// Package flatten implements C7, the flat export view: a derived,
// denormalized listing of message definitions built from the schema map
// (C3). Nothing in the codec reads this view back; it exists for
// downstream consumers that want one flat record per struct/union/enum
// instead of walking the schema map themselves.
package flatten

import (
	"sort"
	"strconv"

	"github.com/blockberries/omgidl/pkg/idl"
)

// Kind distinguishes the shape of a flattened Record.
type Kind string

const (
	KindStruct    Kind = "struct"
	KindUnion     Kind = "union"
	KindEnum      Kind = "enum"
	KindConstants Kind = "constants"
)

// FieldRecord is one flattened field, pseudo-field (enumerator or
// constant), or union case.
type FieldRecord struct {
	Name       string
	Type       string // canonical primitive, "string"/"wstring", or a scoped complex/enum name
	IsComplex  bool   // Type names a struct or union
	EnumType   string // non-empty when Type is demoted from an enum; the enum's scoped name
	IsArray    bool
	ArrayLengths []int
	IsSequence bool
	IsConstant bool
	Value      string // formatted constant/enumerator value, set when IsConstant

	// Predicates holds this case's integer discriminator values, set only
	// on union case field records. A case reached only via the union's
	// default carries no predicates.
	Predicates []int64
	IsDefault  bool
}

// Record is one flattened message definition.
type Record struct {
	Name   string
	Kind   Kind
	Fields []FieldRecord
}

// Flatten derives the C7 view from schema (already resolved and indexed;
// see idl.Resolve and idl.BuildSchemaMap). Typedef chains are collapsed
// via schema.Collapse so every field's Type is terminal.
func Flatten(schema *idl.SchemaMap) ([]Record, error) {
	var records []Record
	var topLevelConsts []FieldRecord

	for _, name := range schema.Names() {
		def, _ := schema.Lookup(name)
		switch v := def.(type) {
		case *idl.Struct:
			rec, err := flattenStruct(schema, v)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		case *idl.Union:
			rec, err := flattenUnion(schema, v)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		case *idl.Enum:
			records = append(records, flattenEnum(v))
		case *idl.Constant:
			if !scoped(v.Scoped, v.Name) {
				topLevelConsts = append(topLevelConsts, constantField(v))
			}
		}
	}

	if len(topLevelConsts) > 0 {
		sort.SliceStable(topLevelConsts, func(i, j int) bool { return topLevelConsts[i].Name < topLevelConsts[j].Name })
		records = append(records, Record{Kind: KindConstants, Fields: topLevelConsts})
	}

	return records, nil
}

// scoped reports whether name carries an enclosing-module prefix, i.e.
// its scoped form differs from its bare form.
func scoped(scopedName, bareName string) bool {
	return scopedName != bareName
}

func flattenStruct(schema *idl.SchemaMap, s *idl.Struct) (Record, error) {
	fields := make([]FieldRecord, 0, len(s.Fields))
	for _, f := range s.Fields {
		fr, err := flattenField(schema, f)
		if err != nil {
			return Record{}, err
		}
		fields = append(fields, fr)
	}
	return Record{Name: s.Scoped, Kind: KindStruct, Fields: fields}, nil
}

func flattenUnion(schema *idl.SchemaMap, u *idl.Union) (Record, error) {
	var fields []FieldRecord
	for _, c := range u.Cases {
		fr, err := flattenField(schema, c.Field)
		if err != nil {
			return Record{}, err
		}
		for _, p := range c.Predicates {
			if p.Kind == idl.ConstInt {
				fr.Predicates = append(fr.Predicates, p.Int)
			} else if p.Kind == idl.ConstBool {
				if p.Bool {
					fr.Predicates = append(fr.Predicates, 1)
				} else {
					fr.Predicates = append(fr.Predicates, 0)
				}
			}
		}
		fields = append(fields, fr)
	}
	if u.Default != nil {
		fr, err := flattenField(schema, u.Default)
		if err != nil {
			return Record{}, err
		}
		fr.IsDefault = true
		fields = append(fields, fr)
	}
	return Record{Name: u.Scoped, Kind: KindUnion, Fields: fields}, nil
}

func flattenEnum(e *idl.Enum) Record {
	fields := make([]FieldRecord, 0, len(e.Enumerators))
	for _, en := range e.Enumerators {
		fields = append(fields, FieldRecord{
			Name:       en.Name,
			Type:       "uint32",
			IsConstant: true,
			Value:      formatUint(uint64(en.Value)),
		})
	}
	return Record{Name: e.Scoped, Kind: KindEnum, Fields: fields}
}

func constantField(c *idl.Constant) FieldRecord {
	return FieldRecord{Name: c.Name, Type: c.Type, IsConstant: true, Value: formatConst(c.Value)}
}

func flattenField(schema *idl.SchemaMap, f *idl.Field) (FieldRecord, error) {
	resolved, err := schema.Collapse(f.Type, f.ArrayLengths, f.IsSequence, f.SequenceBound, f.StringUpperBound)
	if err != nil {
		return FieldRecord{}, err
	}
	fr := FieldRecord{
		Name:         f.Name,
		Type:         resolved.Final,
		IsComplex:    !idl.IsPrimitive(resolved.Final) && !resolved.IsEnum,
		IsArray:      len(resolved.ArrayLengths) > 0,
		ArrayLengths: resolved.ArrayLengths,
		IsSequence:   resolved.IsSequence,
	}
	if resolved.IsEnum {
		fr.EnumType = resolved.Final
		fr.Type = "uint32"
	}
	return fr, nil
}

func formatConst(v idl.ConstValue) string {
	switch v.Kind {
	case idl.ConstInt:
		return formatInt(v.Int)
	case idl.ConstBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case idl.ConstFloat:
		return formatFloat(v.Float)
	case idl.ConstString:
		return v.Str
	case idl.ConstIdent:
		return v.Str
	default:
		return ""
	}
}

func formatInt(n int64) string      { return strconv.FormatInt(n, 10) }
func formatUint(n uint64) string    { return strconv.FormatUint(n, 10) }
func formatFloat(f float64) string  { return strconv.FormatFloat(f, 'g', -1, 64) }
