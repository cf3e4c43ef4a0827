package normalize

import (
	"reflect"
	"testing"
	"time"
)

type address struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type customer struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Address *address `json:"address"`
	secret  string
}

type redirectLink string

func (l redirectLink) Href() string { return string(l) }

// linkedResource both enumerates fields and implements Linker; the field
// set must win.
type linkedResource struct {
	ID string `json:"id"`
}

func (linkedResource) Href() string { return "should-not-be-used" }

func TestValueIdentityOnNormalizedInput(t *testing.T) {
	in := map[string]any{
		"a": 1,
		"b": []any{1, 2, map[string]any{"c": true}},
	}
	got := Value(in)
	if !reflect.DeepEqual(got, in) {
		t.Errorf("Value(%v) = %v, want identical structure", in, got)
	}
}

func TestValueScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"int", 42, 42},
		{"float", 9.75, 9.75},
		{"string", "hello", "hello"},
		{"bytes", []byte("raw"), "raw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Value(tt.in); got != tt.want {
				t.Errorf("Value(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValueStructBecomesMapping(t *testing.T) {
	in := customer{
		Name:    "Mark Reilly",
		Email:   "mark@example.com",
		Address: &address{City: "London", Country: "GB"},
		secret:  "hidden",
	}
	want := map[string]any{
		"name":  "Mark Reilly",
		"email": "mark@example.com",
		"address": map[string]any{
			"city":    "London",
			"country": "GB",
		},
	}
	if got := Value(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Value(customer) = %v, want %v", got, want)
	}
}

func TestValuePointerToStruct(t *testing.T) {
	in := &address{City: "Dublin", Country: "IE"}
	want := map[string]any{"city": "Dublin", "country": "IE"}
	if got := Value(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Value(*address) = %v, want %v", got, want)
	}
	var nilAddr *address
	if got := Value(nilAddr); got != nil {
		t.Errorf("Value(nil *address) = %v, want nil", got)
	}
}

func TestValueLinkUnwrapping(t *testing.T) {
	link := redirectLink("https://example.com/r")
	if got := Value(link); got != "https://example.com/r" {
		t.Errorf("Value(redirectLink) = %v, want the href string", got)
	}
}

func TestValueFieldSetShadowsLink(t *testing.T) {
	// A value exposing both an enumerable field set and a link capability
	// normalizes as a mapping; the href shortcut is unreachable for it.
	in := linkedResource{ID: "lnk_1"}
	want := map[string]any{"id": "lnk_1"}
	if got := Value(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Value(linkedResource) = %v, want %v", got, want)
	}
}

func TestValueSequenceOfStructs(t *testing.T) {
	in := []address{{City: "Lisbon", Country: "PT"}, {City: "Madrid", Country: "ES"}}
	want := []any{
		map[string]any{"city": "Lisbon", "country": "PT"},
		map[string]any{"city": "Madrid", "country": "ES"},
	}
	if got := Value(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Value([]address) = %v, want %v", got, want)
	}
}

func TestValueFallbackToString(t *testing.T) {
	// time.Time has no exported fields, so it degrades to its string form
	// rather than an empty mapping.
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	got := Value(ts)
	s, ok := got.(string)
	if !ok || s == "" {
		t.Fatalf("Value(time.Time) = %v (%T), want non-empty string", got, got)
	}

	type opaque struct{ hidden int }
	if _, ok := Value(opaque{hidden: 1}).(string); !ok {
		t.Errorf("Value(opaque struct) should degrade to a string")
	}

	if _, ok := Value(map[int]string{1: "x"}).(string); !ok {
		t.Errorf("Value(non-string-keyed map) should degrade to a string")
	}
}

// The contract only covers acyclic inputs; a cyclic graph does not
// terminate. This test pins the documented limitation without exercising it.
func TestValueAcyclicContract(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	_ = cyclic // deliberately not passed to Value
}

func TestValueOnlyProducesPlainShapes(t *testing.T) {
	in := map[string]any{
		"customer": customer{Name: "A", Email: "a@b.com"},
		"links":    []any{redirectLink("https://x/y"), &address{City: "Rome"}},
		"when":     time.Unix(0, 0).UTC(),
	}
	assertPlain(t, Value(in))
}

func assertPlain(t *testing.T, v any) {
	t.Helper()
	switch tv := v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
	case map[string]any:
		for _, el := range tv {
			assertPlain(t, el)
		}
	case []any:
		for _, el := range tv {
			assertPlain(t, el)
		}
	default:
		t.Errorf("normalized output contains residual structured value %v (%T)", v, v)
	}
}
