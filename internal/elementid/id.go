package elementid

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is the structured representation of a unique element identifier.
type ID uuid.UUID

// Nil is the zero ID. No element is ever assigned it.
var Nil ID

// New returns a fresh random ID.
func New() ID {
	return ID(uuid.New())
}

// Parse creates an ID from its canonical string representation.
func Parse(raw string) (ID, error) {
	if raw == "" {
		return Nil, fmt.Errorf("identifier cannot be empty")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return Nil, fmt.Errorf("invalid identifier %q: %w", raw, err)
	}
	return ID(u), nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(raw string) ID {
	id, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// String serializes the ID into its canonical string representation.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero ID.
func (id ID) IsNil() bool {
	return id == Nil
}

// MarshalText lets IDs be used as JSON values and map keys.
func (id ID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText parses the canonical form; an empty input yields Nil.
func (id *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*id = Nil
		return nil
	}
	var u uuid.UUID
	if err := u.UnmarshalText(data); err != nil {
		return fmt.Errorf("invalid identifier %q: %w", string(data), err)
	}
	*id = ID(u)
	return nil
}

// Less orders IDs bytewise, for deterministic output.
func (id ID) Less(other ID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}
