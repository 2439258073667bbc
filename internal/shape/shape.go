// Package shape maps loosely typed API response envelopes onto a canonical
// ordered slice of records.
//
// The backend does not wrap its list responses uniformly: the same kind of
// list may come back bare, under "data", under "devices" or under "items".
// A Matcher recognizes one envelope; a Matcher list is tried in order and
// the first hit wins. When nothing matches the result is an empty slice,
// never an error.
package shape

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Matcher recognizes one response envelope and extracts its records.
type Matcher struct {
	Name    string
	Test    func(payload any) bool
	Extract func(payload any) []any
}

// Bare matches a payload that is itself a JSON array.
func Bare() Matcher {
	return Matcher{
		Name: "array",
		Test: func(payload any) bool {
			_, ok := payload.([]any)
			return ok
		},
		Extract: func(payload any) []any {
			return payload.([]any)
		},
	}
}

// Field matches an array nested under the given object keys.
func Field(path ...string) Matcher {
	return Matcher{
		Name: strings.Join(path, "."),
		Test: func(payload any) bool {
			_, ok := lookup(payload, path).([]any)
			return ok
		},
		Extract: func(payload any) []any {
			return lookup(payload, path).([]any)
		},
	}
}

// Envelope lists, in priority order, per endpoint family.
var (
	DeviceList    = []Matcher{Bare(), Field("data"), Field("devices")}
	SensorList    = []Matcher{Bare(), Field("data")}
	DeviceHistory = []Matcher{Field("items"), Field("data", "items"), Bare()}
	VoiceHistory  = []Matcher{Field("items"), Field("data", "items"), Bare()}
)

// Records returns the records of the first matching envelope. The returned
// slice is a copy; payload is never modified.
func Records(payload any, matchers []Matcher) []any {
	for _, m := range matchers {
		if m.Test == nil || m.Extract == nil || !m.Test(payload) {
			continue
		}
		src := m.Extract(payload)
		out := make([]any, len(src))
		copy(out, src)
		return out
	}
	return []any{}
}

// Match reports the name of the envelope that would be used for payload.
func Match(payload any, matchers []Matcher) (string, bool) {
	for _, m := range matchers {
		if m.Test != nil && m.Extract != nil && m.Test(payload) {
			return m.Name, true
		}
	}
	return "", false
}

// Int reads an integer at the given object path. Numbers encoded as JSON
// numbers, json.Number or decimal strings are accepted.
func Int(payload any, path ...string) (int, bool) {
	switch v := lookup(payload, path).(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func lookup(payload any, path []string) any {
	cur := payload
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}
