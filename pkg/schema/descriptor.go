// Package schema turns loosely-structured model replies into validated typed
// objects. A Descriptor declares the fields a reply must carry; Validate is
// the strict stage and Repair the salvage stage of the output cascade.
package schema

import (
	"fmt"
	"sort"
)

// FieldType enumerates the scalar types a descriptor field can declare.
type FieldType string

const (
	// TypeString is a free-form or enum-constrained string field.
	TypeString FieldType = "string"
	// TypeNumber is a float field, optionally range-constrained.
	TypeNumber FieldType = "number"
	// TypeInteger is an integer field, optionally range-constrained.
	TypeInteger FieldType = "integer"
	// TypeBoolean is a true/false field.
	TypeBoolean FieldType = "boolean"
)

// Field declares the constraints for one descriptor field.
//
//nolint:govet // fieldalignment: declaration order mirrors constraint precedence
type Field struct {
	Type     FieldType
	Enum     []string // non-empty restricts a string field to these values
	Minimum  *float64 // inclusive lower bound for number/integer fields
	Maximum  *float64 // inclusive upper bound for number/integer fields
	Optional bool     // absent fields are an error unless Optional
}

// Descriptor declares the object shape a model reply must conform to.
type Descriptor struct {
	Name   string
	Fields map[string]Field
}

// NewDescriptor creates a named descriptor over the given fields.
func NewDescriptor(name string, fields map[string]Field) *Descriptor {
	return &Descriptor{Name: name, Fields: fields}
}

// FieldNames returns the declared field names in stable order.
func (d *Descriptor) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkField validates a single decoded value against its field constraints
// and returns the normalized value.
func checkField(name string, field *Field, value any) (any, error) {
	switch field.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: expected string, got %T", name, value)
		}
		if len(field.Enum) > 0 {
			for _, allowed := range field.Enum {
				if s == allowed {
					return s, nil
				}
			}
			return nil, fmt.Errorf("field %q: value %q not in enum %v", name, s, field.Enum)
		}
		return s, nil

	case TypeNumber, TypeInteger:
		f, ok := value.(float64) // encoding/json decodes all numbers as float64
		if !ok {
			return nil, fmt.Errorf("field %q: expected number, got %T", name, value)
		}
		if field.Type == TypeInteger && f != float64(int64(f)) {
			return nil, fmt.Errorf("field %q: expected integer, got %v", name, f)
		}
		if field.Minimum != nil && f < *field.Minimum {
			return nil, fmt.Errorf("field %q: %v below minimum %v", name, f, *field.Minimum)
		}
		if field.Maximum != nil && f > *field.Maximum {
			return nil, fmt.Errorf("field %q: %v above maximum %v", name, f, *field.Maximum)
		}
		return f, nil

	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("field %q: expected boolean, got %T", name, value)
		}
		return b, nil

	default:
		return nil, fmt.Errorf("field %q: unknown field type %q", name, field.Type)
	}
}

// Float returns a pointer to f, for Minimum/Maximum literals.
func Float(f float64) *float64 {
	return &f
}
