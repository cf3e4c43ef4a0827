// Package payload holds the inbound request shaping layer: a decoded JSON
// body is defaulted per operation and validated before anything is sent
// upstream. Unrecognized fields are always forwarded untouched.
package payload

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Payload is one inbound request body. It lives for a single
// request/response cycle and is never persisted.
type Payload map[string]any

// ValidationError reports a request that is still incomplete after
// defaulting. It is raised before any network call.
type ValidationError struct {
	Operation string
	Missing   []string
	Reason    string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s: missing required fields: %s", e.Operation, strings.Join(e.Missing, ", "))
}

// Clone copies the payload one level deep plus any nested string-keyed maps,
// so defaulting never mutates the caller's decoded body.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		if m, ok := v.(map[string]any); ok {
			inner := make(map[string]any, len(m))
			for ik, iv := range m {
				inner[ik] = iv
			}
			out[k] = inner
			continue
		}
		out[k] = v
	}
	return out
}

// Has reports whether key is present and not falsy (nil, empty string,
// zero number, false, empty map or sequence).
func (p Payload) Has(key string) bool {
	v, ok := p[key]
	if !ok {
		return false
	}
	return !isFalsy(v)
}

// String returns the string value for key, or "" when absent or not a
// string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Number returns the numeric value for key. JSON decoding produces float64;
// integer values set programmatically are accepted too.
func (p Payload) Number(key string) (float64, bool) {
	switch n := p[key].(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Child returns the nested map under key, creating it when absent.
func (p Payload) Child(key string) map[string]any {
	if m, ok := p[key].(map[string]any); ok {
		return m
	}
	m := make(map[string]any)
	p[key] = m
	return m
}

// SetDefault sets key to value only when the current value is falsy.
func (p Payload) SetDefault(key string, value any) {
	if !p.Has(key) {
		p[key] = value
	}
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case float32:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

func setChildDefault(m map[string]any, key string, value any) {
	if cur, ok := m[key]; ok && !isFalsy(cur) {
		return
	}
	m[key] = value
}

func childString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// randomSuffix returns an 8-hex-character suffix, unique with very high
// probability across concurrent invocations. References only need to
// correlate with the provider, so no global sequence is involved.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
