package feed

import (
	"errors"
	"fmt"
)

// Errors for record construction
var (
	ErrUnknownField = errors.New("feed: field not declared by schema")
)

// FieldValue is one cell of a feed record. NotApplicable marks fields the
// schema declares but the record legitimately has no value for; it is
// distinct from a computed empty value and renders as an empty string.
type FieldValue struct {
	value string
	na    bool
}

// Value constructs a computed field value
func Value(s string) FieldValue {
	return FieldValue{value: s}
}

// NotApplicable constructs the explicit absence marker
func NotApplicable() FieldValue {
	return FieldValue{na: true}
}

// IsApplicable returns false for the absence marker
func (v FieldValue) IsApplicable() bool {
	return !v.na
}

// String renders the value; not-applicable renders as empty string
func (v FieldValue) String() string {
	if v.na {
		return ""
	}
	return v.value
}

// Record is one destination-schema row. Fields are resolved against the
// schema's declared order at construction; every record of one schema carries
// the identical field set in identical order.
type Record struct {
	schema Schema
	values []FieldValue
}

// NewRecord creates an empty record for a schema with every field marked
// not applicable.
func NewRecord(schema Schema) *Record {
	values := make([]FieldValue, len(schema.Fields))
	for i := range values {
		values[i] = NotApplicable()
	}
	return &Record{schema: schema, values: values}
}

// Schema returns the schema the record was built for
func (r *Record) Schema() Schema {
	return r.schema
}

// Set assigns a field value; the field must be declared by the schema
func (r *Record) Set(field string, value FieldValue) error {
	idx := r.schema.FieldIndex(field)
	if idx < 0 {
		return fmt.Errorf("%w: %s (schema %s)", ErrUnknownField, field, r.schema.Name)
	}
	r.values[idx] = value
	return nil
}

// Get returns the value of a field and whether the field is declared
func (r *Record) Get(field string) (FieldValue, bool) {
	idx := r.schema.FieldIndex(field)
	if idx < 0 {
		return FieldValue{}, false
	}
	return r.values[idx], true
}

// Values returns the rendered field values in schema order
func (r *Record) Values() []string {
	out := make([]string, len(r.values))
	for i, v := range r.values {
		out[i] = v.String()
	}
	return out
}

// Fields returns the field names in schema order
func (r *Record) Fields() []string {
	return r.schema.Fields
}
