package cdr

import (
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// wstringCodec is the UTF-16LE transcoder CDR wstrings are framed with: the
// wstring payload is always UTF-16LE, independent of the stream's own
// numeric endianness. Built once; encoding.Encoding values are safe for
// concurrent use.
var wstringCodec = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeUTF16LE transcodes a UTF-8 Go string to its UTF-16LE byte payload.
func EncodeUTF16LE(s string) ([]byte, error) {
	return wstringCodec.NewEncoder().Bytes([]byte(s))
}

// DecodeUTF16LE transcodes a UTF-16LE byte payload back to a UTF-8 Go string.
func DecodeUTF16LE(payload []byte) (string, error) {
	out, err := wstringCodec.NewDecoder().Bytes(payload)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// AppendString appends a CDR `string` (align 4, uint32 length-with-terminator,
// UTF-8 bytes, one NUL byte) in the given byte order.
func AppendString(buf []byte, order binary.ByteOrder, s string) []byte {
	buf = order.AppendUint32(buf, uint32(len(s)+1))
	buf = append(buf, s...)
	buf = append(buf, 0)
	return buf
}

// SizeOfString returns the encoded size of a CDR `string`, not counting
// leading alignment padding.
func SizeOfString(s string) int {
	return 4 + len(s) + 1
}

// DecodeString decodes a CDR `string` starting at data[0] (already aligned
// by the caller): reads the uint32 length-with-terminator, then that many
// bytes minus the trailing NUL. Returns the string and the number of bytes
// consumed (4 + length).
func DecodeString(data []byte, order binary.ByteOrder) (string, int, error) {
	length, err := DecodeUint32(data, order)
	if err != nil {
		return "", 0, err
	}
	if length == 0 {
		// A conforming writer always counts the terminator; treat 0 as empty.
		return "", 4, nil
	}
	total := 4 + int(length)
	if len(data) < total {
		return "", 0, ErrTruncated
	}
	return string(data[4 : total-1]), total, nil
}

// AppendWString appends a CDR `wstring` (align 4, uint32 byte-length of the
// UTF-16LE payload including its two-byte terminator, UTF-16LE payload,
// two NUL bytes) in the given byte order for the length prefix.
func AppendWString(buf []byte, order binary.ByteOrder, s string) ([]byte, error) {
	payload, err := EncodeUTF16LE(s)
	if err != nil {
		return nil, err
	}
	buf = order.AppendUint32(buf, uint32(len(payload)+2))
	buf = append(buf, payload...)
	buf = append(buf, 0, 0)
	return buf, nil
}

// SizeOfWString returns the encoded size of a CDR `wstring`, not counting
// leading alignment padding.
func SizeOfWString(s string) (int, error) {
	payload, err := EncodeUTF16LE(s)
	if err != nil {
		return 0, err
	}
	return 4 + len(payload) + 2, nil
}

// DecodeWString decodes a CDR `wstring` starting at data[0] (already
// aligned). Returns the string and the number of bytes consumed.
func DecodeWString(data []byte, order binary.ByteOrder) (string, int, error) {
	byteLen, err := DecodeUint32(data, order)
	if err != nil {
		return "", 0, err
	}
	if byteLen == 0 {
		return "", 4, nil
	}
	total := 4 + int(byteLen)
	if len(data) < total {
		return "", 0, ErrTruncated
	}
	s, err := DecodeUTF16LE(data[4 : total-2])
	if err != nil {
		return "", 0, err
	}
	return s, total, nil
}

// RuneCount returns the character count of s, used to check a bounded
// string's upper bound: the bound is compared against character count,
// not byte count.
func RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}
