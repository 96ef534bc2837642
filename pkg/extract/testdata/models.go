// Package testdata contains Go types used by extract's tests, standing
// in for hand-written bindings that should track an IDL schema.
package testdata

// Address mirrors an IDL struct named "Address".
type Address struct {
	Street  string `idl:"street,id=1"`
	City    string `idl:"city,id=2"`
	Country string `idl:"country,id=3"`
}

// User mirrors an IDL struct named "User", with an optional trailing
// field and one nested struct reference.
type User struct {
	ID      int64    `idl:"id,id=1"`
	Name    string   `idl:"name,id=2"`
	Tags    []string `idl:"tags,id=3"`
	Home    Address  `idl:"home,id=4"`
	Note    *string  `idl:"note,id=5"`
	private string
}
