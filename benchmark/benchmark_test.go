// Package benchmark compares pkg/cdr's OMG CDR encoding against a
// hand-rolled Protocol Buffers wire-format encoder (protowire) and
// encoding/json, across a few representative message shapes.
package benchmark

import (
	"encoding/json"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/blockberries/omgidl/pkg/cdr"
	"github.com/blockberries/omgidl/pkg/idl"
)

func loadSchema(src string) *idl.SchemaMap {
	loaded, err := idl.Load("bench.idl", src)
	if err != nil {
		panic(err)
	}
	return loaded.Map
}

// ============================================================================
// Small Message (Baseline)
// ============================================================================

var smallMessageSchema = loadSchema(`
struct SmallMessage {
    int64 id;
    string name;
    bool active;
};
`)

func makeSmallMessageValue() idl.Value {
	return idl.Map(map[string]idl.Value{
		"id":     idl.Int(12345),
		"name":   idl.Str("test-item"),
		"active": idl.Bool(true),
	})
}

type jsonSmallMessage struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func encodeProtoSmallMessage() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(12345))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, "test-item")
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	return b
}

func decodeProtoSmallMessage(data []byte) (id int64, name string, active bool) {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			id = int64(v)
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			name = v
			data = data[n:]
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			active = v != 0
			data = data[n:]
		}
	}
	return
}

func BenchmarkSmallMessage_CDR_Encode(b *testing.B) {
	w, err := cdr.NewWriter(smallMessageSchema, "SmallMessage", cdr.KindCDRLE)
	if err != nil {
		b.Fatalf("NewWriter: %v", err)
	}
	v := makeSmallMessageValue()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = w.Write(v)
	}
}

func BenchmarkSmallMessage_CDR_Decode(b *testing.B) {
	w, err := cdr.NewWriter(smallMessageSchema, "SmallMessage", cdr.KindCDRLE)
	if err != nil {
		b.Fatalf("NewWriter: %v", err)
	}
	data, err := w.Write(makeSmallMessageValue())
	if err != nil {
		b.Fatalf("Write: %v", err)
	}
	r, err := cdr.NewReader(smallMessageSchema, "SmallMessage")
	if err != nil {
		b.Fatalf("NewReader: %v", err)
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = r.Read(data)
	}
}

func BenchmarkSmallMessage_Protobuf_Encode(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = encodeProtoSmallMessage()
	}
}

func BenchmarkSmallMessage_Protobuf_Decode(b *testing.B) {
	data := encodeProtoSmallMessage()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, _ = decodeProtoSmallMessage(data)
	}
}

func BenchmarkSmallMessage_JSON_Encode(b *testing.B) {
	msg := jsonSmallMessage{ID: 12345, Name: "test-item", Active: true}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(msg)
	}
}

func BenchmarkSmallMessage_JSON_Decode(b *testing.B) {
	msg := jsonSmallMessage{ID: 12345, Name: "test-item", Active: true}
	data, _ := json.Marshal(msg)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var result jsonSmallMessage
		_ = json.Unmarshal(data, &result)
	}
}

// ============================================================================
// Point (scalar-heavy, float fields)
// ============================================================================

var pointSchema = loadSchema(`
struct Point {
    double x;
    double y;
    double z;
};
`)

func makePointValue() idl.Value {
	return idl.Map(map[string]idl.Value{
		"x": idl.Float(123.456),
		"y": idl.Float(789.012),
		"z": idl.Float(345.678),
	})
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func encodeProtoPoint() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(123.456))
	b = protowire.AppendTag(b, 2, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(789.012))
	b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(345.678))
	return b
}

func decodeProtoPoint(data []byte) (x, y, z float64) {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		data = data[n:]
		if typ != protowire.Fixed64Type {
			continue
		}
		v, n := protowire.ConsumeFixed64(data)
		data = data[n:]
		switch num {
		case 1:
			x = math.Float64frombits(v)
		case 2:
			y = math.Float64frombits(v)
		case 3:
			z = math.Float64frombits(v)
		}
	}
	return
}

func BenchmarkPoint_CDR_Encode(b *testing.B) {
	w, err := cdr.NewWriter(pointSchema, "Point", cdr.KindCDRLE)
	if err != nil {
		b.Fatalf("NewWriter: %v", err)
	}
	v := makePointValue()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = w.Write(v)
	}
}

func BenchmarkPoint_CDR_Decode(b *testing.B) {
	w, err := cdr.NewWriter(pointSchema, "Point", cdr.KindCDRLE)
	if err != nil {
		b.Fatalf("NewWriter: %v", err)
	}
	data, err := w.Write(makePointValue())
	if err != nil {
		b.Fatalf("Write: %v", err)
	}
	r, err := cdr.NewReader(pointSchema, "Point")
	if err != nil {
		b.Fatalf("NewReader: %v", err)
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = r.Read(data)
	}
}

func BenchmarkPoint_Protobuf_Encode(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = encodeProtoPoint()
	}
}

func BenchmarkPoint_Protobuf_Decode(b *testing.B) {
	data := encodeProtoPoint()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, _ = decodeProtoPoint(data)
	}
}

func BenchmarkPoint_JSON_Encode(b *testing.B) {
	msg := jsonPoint{X: 123.456, Y: 789.012, Z: 345.678}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(msg)
	}
}

func BenchmarkPoint_JSON_Decode(b *testing.B) {
	msg := jsonPoint{X: 123.456, Y: 789.012, Z: 345.678}
	data, _ := json.Marshal(msg)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var result jsonPoint
		_ = json.Unmarshal(data, &result)
	}
}

// ============================================================================
// Person (nested struct, mirrors a typical DDS sample with an embedded type)
// ============================================================================

var personSchema = loadSchema(`
struct Address {
    string street;
    string city;
};

struct Person {
    int64 id;
    string name;
    Address home;
};
`)

func makePersonValue() idl.Value {
	return idl.Map(map[string]idl.Value{
		"id":   idl.Int(42),
		"name": idl.Str("Ada Lovelace"),
		"home": idl.Map(map[string]idl.Value{
			"street": idl.Str("1 Infinite Loop"),
			"city":   idl.Str("Cupertino"),
		}),
	})
}

type jsonAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

type jsonPerson struct {
	ID   int64       `json:"id"`
	Name string      `json:"name"`
	Home jsonAddress `json:"home"`
}

func encodeProtoPerson() []byte {
	var home []byte
	home = protowire.AppendTag(home, 1, protowire.BytesType)
	home = protowire.AppendString(home, "1 Infinite Loop")
	home = protowire.AppendTag(home, 2, protowire.BytesType)
	home = protowire.AppendString(home, "Cupertino")

	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(42))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, "Ada Lovelace")
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendBytes(b, home)
	return b
}

func decodeProtoPerson(data []byte) (id int64, name, street, city string) {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			id = int64(v)
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			name = v
			data = data[n:]
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			data = data[n:]
			home := v
			for len(home) > 0 {
				hnum, htyp, hn := protowire.ConsumeTag(home)
				home = home[hn:]
				if htyp != protowire.BytesType {
					continue
				}
				hv, hn := protowire.ConsumeString(home)
				home = home[hn:]
				switch hnum {
				case 1:
					street = hv
				case 2:
					city = hv
				}
			}
		}
	}
	return
}

func BenchmarkPerson_CDR_Encode(b *testing.B) {
	w, err := cdr.NewWriter(personSchema, "Person", cdr.KindCDRLE)
	if err != nil {
		b.Fatalf("NewWriter: %v", err)
	}
	v := makePersonValue()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = w.Write(v)
	}
}

func BenchmarkPerson_CDR_Decode(b *testing.B) {
	w, err := cdr.NewWriter(personSchema, "Person", cdr.KindCDRLE)
	if err != nil {
		b.Fatalf("NewWriter: %v", err)
	}
	data, err := w.Write(makePersonValue())
	if err != nil {
		b.Fatalf("Write: %v", err)
	}
	r, err := cdr.NewReader(personSchema, "Person")
	if err != nil {
		b.Fatalf("NewReader: %v", err)
	}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = r.Read(data)
	}
}

func BenchmarkPerson_Protobuf_Encode(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = encodeProtoPerson()
	}
}

func BenchmarkPerson_Protobuf_Decode(b *testing.B) {
	data := encodeProtoPerson()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _, _, _ = decodeProtoPerson(data)
	}
}

func BenchmarkPerson_JSON_Encode(b *testing.B) {
	msg := jsonPerson{ID: 42, Name: "Ada Lovelace", Home: jsonAddress{Street: "1 Infinite Loop", City: "Cupertino"}}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = json.Marshal(msg)
	}
}

func BenchmarkPerson_JSON_Decode(b *testing.B) {
	msg := jsonPerson{ID: 42, Name: "Ada Lovelace", Home: jsonAddress{Street: "1 Infinite Loop", City: "Cupertino"}}
	data, _ := json.Marshal(msg)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var result jsonPerson
		_ = json.Unmarshal(data, &result)
	}
}
