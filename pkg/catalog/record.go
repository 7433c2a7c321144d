package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// RawRecord is a source record as it arrived: an ordered set of keys with
// opaque values. Nested objects are *RawRecord, arrays are []any, numbers
// are float64. Key order is the order the source wrote them in, which is
// what gives region maps their source order.
type RawRecord struct {
	keys   []string
	values map[string]any
}

// NewRawRecord returns an empty record.
func NewRawRecord() *RawRecord {
	return &RawRecord{values: make(map[string]any)}
}

// FromMap builds a record from a Go map. Keys are sorted since maps carry
// no order; nested maps and slices are converted recursively.
func FromMap(m map[string]any) *RawRecord {
	r := NewRawRecord()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.Set(k, convertValue(m[k]))
	}
	return r
}

func convertValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return FromMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = convertValue(e)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return v
	}
}

// Set stores a value, appending the key if it is new.
func (r *RawRecord) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Lookup returns the value for key and whether the key is present.
func (r *RawRecord) Lookup(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Get returns the value for key, or nil.
func (r *RawRecord) Get(key string) any {
	v, _ := r.Lookup(key)
	return v
}

// Keys returns the keys in source order.
func (r *RawRecord) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r *RawRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// MarshalJSON writes the keys in order.
func (r *RawRecord) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping key order at every depth.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := DecodeValue(dec)
	if err != nil {
		return err
	}
	rec, ok := v.(*RawRecord)
	if !ok {
		return fmt.Errorf("expected object, got %T", v)
	}
	*r = *rec
	return nil
}

// DecodeValue reads one JSON value from dec. Objects become *RawRecord.
func DecodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			rec := NewRawRecord()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := DecodeValue(dec)
				if err != nil {
					return nil, err
				}
				rec.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return rec, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := DecodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		// string, float64, bool, nil
		return tok, nil
	}
}

// DecodeDocument decodes a whole JSON document and rejects trailing data.
func DecodeDocument(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := DecodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}
