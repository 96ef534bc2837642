package cdr

import "github.com/blockberries/omgidl/internal/cdr"

// Kind re-exports internal/cdr's encapsulation kind so callers never need
// to import the internal package directly.
type Kind = cdr.Kind

const (
	KindCDRBE = cdr.KindCDRBE
	KindCDRLE = cdr.KindCDRLE

	KindPLCDRBE = cdr.KindPLCDRBE
	KindPLCDRLE = cdr.KindPLCDRLE

	KindRTPSCDR2BE = cdr.KindRTPSCDR2BE
	KindRTPSCDR2LE = cdr.KindRTPSCDR2LE

	KindRTPSDelimitedCDR2BE = cdr.KindRTPSDelimitedCDR2BE
	KindRTPSDelimitedCDR2LE = cdr.KindRTPSDelimitedCDR2LE

	KindRTPSPLCDR2BE = cdr.KindRTPSPLCDR2BE
	KindRTPSPLCDR2LE = cdr.KindRTPSPLCDR2LE

	KindCDR2BE = cdr.KindCDR2BE
	KindCDR2LE = cdr.KindCDR2LE

	KindPLCDR2BE = cdr.KindPLCDR2BE
	KindPLCDR2LE = cdr.KindPLCDR2LE

	KindDelimitedCDR2BE = cdr.KindDelimitedCDR2BE
	KindDelimitedCDR2LE = cdr.KindDelimitedCDR2LE
)

// Limits holds resource limits for a Reader, set with Reader.SetLimits.
// Only MaxMessageSize is enforced, and only by Reader.Read; a Writer takes
// no Limits. Read's nesting check is a fixed depth of 128 and does not use
// MaxDepth.
type Limits struct {
	// MaxMessageSize caps the input size a Reader will accept. 0 means no
	// limit.
	MaxMessageSize int64

	// MaxDepth is a struct/union/sequence/array nesting limit. Neither
	// Reader nor Writer reads it.
	MaxDepth int

	// MaxSequenceLength is an element-count limit for unbounded sequences.
	// Neither Reader nor Writer reads it.
	MaxSequenceLength int
}

// DefaultLimits are generous limits suitable for trusted schemas and input.
var DefaultLimits = Limits{
	MaxMessageSize:    64 * 1024 * 1024,
	MaxDepth:          64,
	MaxSequenceLength: 1_000_000,
}

// SecureLimits are conservative limits for decoding untrusted input.
var SecureLimits = Limits{
	MaxMessageSize:    1 * 1024 * 1024,
	MaxDepth:          32,
	MaxSequenceLength: 10_000,
}
