package market

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// flexFloat decodes a JSON number, a numeric string or null. Anything else
// leaves it unset. Strings are API payloads, so they use a plain "." decimal.
type flexFloat struct {
	v  float64
	ok bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	*f = flexFloat{}
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.set(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			f.set(n)
		}
	}
	return nil
}

func (f *flexFloat) set(n float64) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return
	}
	f.v, f.ok = n, true
}

// positive returns a pointer to the value when it is set and above zero.
func (f flexFloat) positive() *float64 {
	if !f.ok || f.v <= 0 {
		return nil
	}
	v := f.v
	return &v
}

// id returns the value as a type identifier, or 0.
func (f flexFloat) id() int64 {
	if !f.ok || f.v <= 0 || f.v != math.Trunc(f.v) {
		return 0
	}
	return int64(f.v)
}

// decodeList accepts either a JSON array or a single object and returns the
// raw elements.
func decodeList(raw json.RawMessage) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil
		}
		return list
	case '{':
		return []json.RawMessage{raw}
	default:
		return nil
	}
}
