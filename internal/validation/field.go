package validation

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field captures a raw JSON value so handlers can tell "absent" from "present"
// and coerce loosely typed client input (numbers sent as strings and so on).
type Field struct {
	raw json.RawMessage
}

func (f *Field) UnmarshalJSON(b []byte) error {
	f.raw = append(f.raw[:0], b...)
	return nil
}

// Present reports whether the field was sent with a non-null value.
func (f Field) Present() bool {
	return len(f.raw) > 0 && !bytes.Equal(f.raw, []byte("null"))
}

// Text returns the value when it is a JSON string.
func (f Field) Text() (string, bool) {
	if !f.Present() || f.raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(f.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Number returns the value when it is a JSON number literal.
func (f Field) Number() (float64, bool) {
	if !f.Present() || f.raw[0] == '"' {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(f.raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// Int coerces a JSON integer or a string of decimal digits.
func (f Field) Int() (int64, bool) {
	if s, ok := f.Text(); ok {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return v, err == nil
	}
	n, ok := f.Number()
	if !ok || n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
		return 0, false
	}
	return int64(n), true
}

// Float coerces a JSON number or a numeric string.
func (f Field) Float() (float64, bool) {
	if s, ok := f.Text(); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return f.Number()
}

// FieldOf builds a Field from a Go value. Used by tests and the fixture loader.
func FieldOf(v any) Field {
	b, err := json.Marshal(v)
	if err != nil {
		return Field{}
	}
	return Field{raw: b}
}
