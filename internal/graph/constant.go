package graph

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Constant is a typed value embedded in an input port or used as the
// default of a variable declaration.
type Constant struct {
	value cty.Value
}

// NewConstant wraps v. A zero cty.Value becomes a dynamic null.
func NewConstant(v cty.Value) *Constant {
	if v == cty.NilVal {
		v = cty.NullVal(cty.DynamicPseudoType)
	}
	return &Constant{value: v}
}

// Value returns the wrapped value.
func (c *Constant) Value() cty.Value {
	if c == nil {
		return cty.NilVal
	}
	return c.value
}

// Type returns the type of the wrapped value.
func (c *Constant) Type() cty.Type {
	if c == nil {
		return cty.NilType
	}
	return c.value.Type()
}

// Equal reports whether two constants hold the same value.
func (c *Constant) Equal(o *Constant) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.value.RawEquals(o.value)
}

type constantDoc struct {
	Type  json.RawMessage `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the type and the value with go-cty's JSON codec.
func (c *Constant) MarshalJSON() ([]byte, error) {
	ty := c.value.Type()
	typeJSON, err := ctyjson.MarshalType(ty)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constant type: %w", err)
	}
	valueJSON, err := ctyjson.Marshal(c.value, ty)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constant value: %w", err)
	}
	return json.Marshal(constantDoc{Type: typeJSON, Value: valueJSON})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Constant) UnmarshalJSON(data []byte) error {
	var doc constantDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	ty, err := ctyjson.UnmarshalType(doc.Type)
	if err != nil {
		return fmt.Errorf("failed to decode constant type: %w", err)
	}
	v, err := ctyjson.Unmarshal(doc.Value, ty)
	if err != nil {
		return fmt.Errorf("failed to decode constant value: %w", err)
	}
	c.value = v
	return nil
}
