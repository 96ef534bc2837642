package cdr

import (
	"encoding/binary"
	"fmt"
)

// Kind identifies the CDR encapsulation variant carried in byte 1 of the
// 4-byte encapsulation header. Bit 0 of the kind selects little-endian
// byte order for the rest of the stream.
type Kind uint8

// Known encapsulation kinds, matching the RTPS/DDS-XTypes assigned values.
const (
	KindCDRBE Kind = 0x00
	KindCDRLE Kind = 0x01

	KindPLCDRBE Kind = 0x02
	KindPLCDRLE Kind = 0x03

	KindRTPSCDR2BE Kind = 0x06
	KindRTPSCDR2LE Kind = 0x07

	KindRTPSDelimitedCDR2BE Kind = 0x08
	KindRTPSDelimitedCDR2LE Kind = 0x09

	KindRTPSPLCDR2BE Kind = 0x0A
	KindRTPSPLCDR2LE Kind = 0x0B

	KindCDR2BE Kind = 0x10
	KindCDR2LE Kind = 0x11

	KindPLCDR2BE Kind = 0x12
	KindPLCDR2LE Kind = 0x13

	KindDelimitedCDR2BE Kind = 0x14
	KindDelimitedCDR2LE Kind = 0x15
)

// LittleEndian reports whether k selects little-endian byte order.
func (k Kind) LittleEndian() bool { return k&1 == 1 }

// ByteOrder returns the encoding/binary.ByteOrder implied by k.
func (k Kind) ByteOrder() binary.ByteOrder {
	if k.LittleEndian() {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Framing describes the header machinery a root-level encoding of kind k
// uses, independent of any particular type's own extensibility. Whether a
// given struct/union additionally uses a delimiter and/or member headers
// is a property of that type's own extensibility; Framing only says
// whether kind k is CDR2-family (and therefore requires root types to be
// wrapped in a delimiter when they are appendable/mutable) and whether it
// is a parameter-list family at all.
type Framing struct {
	CDR2       bool // CDR2 framing: appendable/mutable types carry a delimiter header.
	ParamList  bool // PL_CDR family: this kind is only valid against mutable root types.
}

// FramingOf returns the Framing for a known kind, or an error for an
// unrecognized kind byte.
func FramingOf(k Kind) (Framing, error) {
	switch k {
	case KindCDRBE, KindCDRLE:
		return Framing{}, nil
	case KindPLCDRBE, KindPLCDRLE:
		return Framing{ParamList: true}, nil
	case KindRTPSCDR2BE, KindRTPSCDR2LE, KindRTPSDelimitedCDR2BE, KindRTPSDelimitedCDR2LE,
		KindCDR2BE, KindCDR2LE, KindDelimitedCDR2BE, KindDelimitedCDR2LE:
		return Framing{CDR2: true}, nil
	case KindRTPSPLCDR2BE, KindRTPSPLCDR2LE, KindPLCDR2BE, KindPLCDR2LE:
		return Framing{CDR2: true, ParamList: true}, nil
	default:
		return Framing{}, &BadEncapsulationError{Kind: byte(k)}
	}
}

// BadEncapsulationError is returned for an unrecognized encapsulation kind.
type BadEncapsulationError struct{ Kind byte }

func (e *BadEncapsulationError) Error() string {
	return fmt.Sprintf("cdr: unrecognized encapsulation kind 0x%02x", e.Kind)
}

// AppendHeader appends the 4-byte encapsulation header for kind k.
func AppendHeader(buf []byte, k Kind) []byte {
	return append(buf, 0x00, byte(k), 0x00, 0x00)
}

// DecodeHeader reads the encapsulation kind from the first 4 bytes of data.
func DecodeHeader(data []byte) (Kind, error) {
	if len(data) < EncapsulationHeaderSize {
		return 0, ErrTruncated
	}
	return Kind(data[1]), nil
}

// AppendDelimiterPlaceholder reserves 4 bytes for a CDR2 delimiter header
// and returns the offset at which the real length must later be patched
// in with PatchDelimiter.
func AppendDelimiterPlaceholder(buf []byte) (out []byte, at int) {
	at = len(buf)
	return append(buf, 0, 0, 0, 0), at
}

// PatchDelimiter writes the delimiter body length (the number of bytes
// following the 4-byte length field itself) at offset `at` in buf.
func PatchDelimiter(buf []byte, at int, order binary.ByteOrder, bodyLen uint32) {
	order.PutUint32(buf[at:at+4], bodyLen)
}

// DecodeDelimiter reads a CDR2 delimiter header (body length) from the
// first 4 bytes of data.
func DecodeDelimiter(data []byte, order binary.ByteOrder) (uint32, error) {
	return DecodeUint32(data, order)
}

// AppendMemberHeader appends a PL_CDR member header: (uint16 id, uint16 size).
func AppendMemberHeader(buf []byte, order binary.ByteOrder, id uint16, size uint16) []byte {
	buf = order.AppendUint16(buf, id)
	buf = order.AppendUint16(buf, size)
	return buf
}

// DecodeMemberHeader reads a PL_CDR member header, returning (id, size).
func DecodeMemberHeader(data []byte, order binary.ByteOrder) (id uint16, size uint16, err error) {
	if len(data) < 4 {
		return 0, 0, ErrTruncated
	}
	return order.Uint16(data[0:2]), order.Uint16(data[2:4]), nil
}

// AppendSentinel appends the 4-byte PL_CDR member-list terminator: a plain
// uint32 0 in the stream's own byte order, not the RTPS PID_SENTINEL
// (id=0x3F02) pair some strict implementations use.
func AppendSentinel(buf []byte, order binary.ByteOrder) []byte {
	return order.AppendUint32(buf, 0)
}
