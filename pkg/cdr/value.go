package cdr

import "github.com/blockberries/omgidl/pkg/idl"

// Value is the generic tree the codec reads into and writes from. It is
// idl.Value directly: pkg/idl already owns this type because C4's default
// computation needs to produce values of the same shape, and pkg/cdr
// depends on pkg/idl, not the reverse.
type Value = idl.Value

const DiscriminatorKey = idl.DiscriminatorKey
