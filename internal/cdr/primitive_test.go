package cdr

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		buf := AppendBool(nil, v)
		got, err := DecodeBool(buf)
		if err != nil {
			t.Fatalf("DecodeBool: %v", err)
		}
		if got != v {
			t.Fatalf("round trip bool: got %v, want %v", got, v)
		}
	}
}

func TestDecodeBoolTruncated(t *testing.T) {
	if _, err := DecodeBool(nil); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestUint8RoundTrip(t *testing.T) {
	buf := AppendUint8(nil, 200)
	got, err := DecodeUint8(buf)
	if err != nil {
		t.Fatalf("DecodeUint8: %v", err)
	}
	if got != 200 {
		t.Fatalf("got %d, want 200", got)
	}
}

func TestInt8RoundTripNegative(t *testing.T) {
	buf := AppendInt8(nil, -5)
	got, err := DecodeInt8(buf)
	if err != nil {
		t.Fatalf("DecodeInt8: %v", err)
	}
	if got != -5 {
		t.Fatalf("got %d, want -5", got)
	}
}

func TestFixedWidthRoundTripBothOrders(t *testing.T) {
	orders := []binary.ByteOrder{binary.LittleEndian, binary.BigEndian}
	for _, order := range orders {
		if buf := AppendUint16(nil, order, 0xABCD); true {
			got, err := DecodeUint16(buf, order)
			if err != nil || got != 0xABCD {
				t.Fatalf("uint16 round trip failed: got %d, err %v", got, err)
			}
		}
		if buf := AppendInt16(nil, order, -1000); true {
			got, err := DecodeInt16(buf, order)
			if err != nil || got != -1000 {
				t.Fatalf("int16 round trip failed: got %d, err %v", got, err)
			}
		}
		if buf := AppendUint32(nil, order, 0xDEADBEEF); true {
			got, err := DecodeUint32(buf, order)
			if err != nil || got != 0xDEADBEEF {
				t.Fatalf("uint32 round trip failed: got %d, err %v", got, err)
			}
		}
		if buf := AppendInt32(nil, order, -123456); true {
			got, err := DecodeInt32(buf, order)
			if err != nil || got != -123456 {
				t.Fatalf("int32 round trip failed: got %d, err %v", got, err)
			}
		}
		if buf := AppendUint64(nil, order, 0x0123456789ABCDEF); true {
			got, err := DecodeUint64(buf, order)
			if err != nil || got != 0x0123456789ABCDEF {
				t.Fatalf("uint64 round trip failed: got %d, err %v", got, err)
			}
		}
		if buf := AppendInt64(nil, order, -9007199254740993); true {
			got, err := DecodeInt64(buf, order)
			if err != nil || got != -9007199254740993 {
				t.Fatalf("int64 round trip failed: got %d, err %v", got, err)
			}
		}
	}
}

func TestFloat32RoundTripPreservesBitPattern(t *testing.T) {
	orders := []binary.ByteOrder{binary.LittleEndian, binary.BigEndian}
	values := []float32{0, -0, 1.5, -1.5, float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))}
	for _, order := range orders {
		for _, v := range values {
			buf := AppendFloat32(nil, order, v)
			got, err := DecodeFloat32(buf, order)
			if err != nil {
				t.Fatalf("DecodeFloat32: %v", err)
			}
			if math.Float32bits(got) != math.Float32bits(v) {
				t.Fatalf("float32 round trip changed bit pattern: %08x != %08x", math.Float32bits(got), math.Float32bits(v))
			}
		}
	}
}

func TestFloat64RoundTripPreservesBitPattern(t *testing.T) {
	order := binary.LittleEndian
	values := []float64{0, -0, math.Pi, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, v := range values {
		buf := AppendFloat64(nil, order, v)
		got, err := DecodeFloat64(buf, order)
		if err != nil {
			t.Fatalf("DecodeFloat64: %v", err)
		}
		if math.Float64bits(got) != math.Float64bits(v) {
			t.Fatalf("float64 round trip changed bit pattern: %016x != %016x", math.Float64bits(got), math.Float64bits(v))
		}
	}
}

func TestSizeOfPrimitive(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"bool", 1}, {"int8", 1}, {"uint8", 1}, {"byte", 1}, {"octet", 1}, {"char", 1},
		{"int16", 2}, {"uint16", 2}, {"wchar", 2},
		{"int32", 4}, {"uint32", 4}, {"float32", 4},
		{"int64", 8}, {"uint64", 8}, {"float64", 8},
		{"string", 0}, {"wstring", 0}, {"SomeStruct", 0},
	}
	for _, c := range cases {
		if got := SizeOfPrimitive(c.name); got != c.want {
			t.Fatalf("SizeOfPrimitive(%q) = %d, want %d", c.name, got, c.want)
		}
	}
}
