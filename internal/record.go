package internal

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Record is a struct that contains a set of fields and their corresponding values.
// It is used to represent one JSON object decoded from a backend response.
// Field order matters for shape detection, so we keep them in a separate slice.
type Record struct {
	fields []string
	values []any
}

func NewRecord(fields []string, values []any) *Record {
	return &Record{
		fields: fields,
		values: values,
	}
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

func (r *Record) Fields() []string {
	return r.fields
}

func (r *Record) Values() []any {
	return r.values
}

// Set appends a field, or replaces its value when the field already exists.
func (r *Record) Set(field string, value any) {
	for i, f := range r.fields {
		if f == field {
			r.values[i] = value
			return
		}
	}
	r.fields = append(r.fields, field)
	r.values = append(r.values, value)
}

// Get returns the value stored under exactly key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	for i, field := range r.fields {
		if field == key {
			return r.values[i], true
		}
	}
	return nil, false
}

// GetFold returns the first value, in insertion order, whose key matches
// key case-insensitively.
func (r *Record) GetFold(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	for i, field := range r.fields {
		if strings.EqualFold(field, key) {
			return r.values[i], true
		}
	}
	return nil, false
}

// Lookup tries an exact match first and falls back to a case-insensitive one.
func (r *Record) Lookup(key string) (any, bool) {
	if v, ok := r.Get(key); ok {
		return v, true
	}
	return r.GetFold(key)
}

func (r *Record) Map() map[string]any {
	m := make(map[string]any)
	for i, field := range r.fields {
		m[field] = r.values[i]
	}
	return m
}

// MarshalJSON encodes the record as a JSON object, keeping field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
