package tree

import "github.com/google/uuid"

// Id is an opaque, globally-unique, stable identifier for a live instance.
// It is never reused within a process.
type Id [16]byte

// Nil is the reserved identifier meaning "no instance" — used as the
// sentinel parent of the root instance.
var Nil Id

// NewId mints a fresh, process-unique identifier.
func NewId() Id {
	return Id(uuid.New())
}

func (id Id) String() string {
	return uuid.UUID(id).String()
}

// MarshalText renders id the same way String does, so an Id can be used
// directly as a map key or struct field in encoding/json and encoding/xml
// output without a bespoke wrapper type.
func (id Id) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// IsNil reports whether id is the reserved sentinel value.
func (id Id) IsNil() bool {
	return id == Nil
}
