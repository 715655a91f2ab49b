package export

import (
	"bytes"
	"encoding/json"
)

// Record is a JSON object that remembers its key order.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a record from alternating key/value pairs.
func NewRecord(pairs ...any) Record {
	rec := Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		rec.Set(key, pairs[i+1])
	}
	return rec
}

// Keys returns the field names in insertion order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	if r.values == nil {
		return nil, false
	}
	value, ok := r.values[key]
	return value, ok
}

// Set stores value under key, appending the key on first use.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// UnmarshalJSON decodes an object keeping key order. Numbers stay json.Number.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return NewError(KindValidation, "invalid record", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return NewError(KindValidation, "record must be a JSON object", nil)
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return NewError(KindValidation, "invalid record key", err)
		}
		key, ok := tok.(string)
		if !ok {
			return NewError(KindValidation, "invalid record key", nil)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return NewError(KindValidation, "invalid record value", err)
		}
		r.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return NewError(KindValidation, "invalid record", err)
	}
	return nil
}

// MarshalJSON encodes the record with its original key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
