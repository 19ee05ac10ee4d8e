package shape

import (
	"bytes"
	"container/list"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

type point struct{ X, Y int }

type tagSet map[string]struct{}

type counter struct{ n int }

func (c counter) Len() int { return c.n }

type brokenLen struct{}

func (brokenLen) Len() int { panic("no length") }

func TestIsEmpty(t *testing.T) {
	var nilSlice []int
	var nilMap map[string]int
	var nilPtr *point
	var nilList *list.List
	var nilFunc func()
	zero := 0
	empty := ""
	word := "x"

	populated := list.New()
	populated.PushBack(1)

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		// Absent
		{"nil", nil, true},
		{"nil slice", nilSlice, true},
		{"nil map", nilMap, true},
		{"nil pointer", nilPtr, true},
		{"nil sized", nilList, true},
		{"nil func", nilFunc, true},

		// Sequence
		{"empty slice", []int{}, true},
		{"slice", []int{1}, false},
		{"empty any slice", []any{}, true},
		{"zero array", [0]int{}, true},
		{"array", [2]int{}, false},

		// Text
		{"empty string", "", true},
		{"string", "x", false},
		{"pointer to empty string", &empty, true},
		{"pointer to string", &word, false},
		{"json number", json.Number("0"), false},
		{"empty buffer", &bytes.Buffer{}, true},
		{"buffer", bytes.NewBufferString("x"), false},
		{"empty builder", &strings.Builder{}, true},

		// Object
		{"empty object", map[string]any{}, true},
		{"object", map[string]any{"a": 1}, false},

		// Set
		{"empty set", map[int]struct{}{}, true},
		{"set", map[int]struct{}{1: {}}, false},
		{"empty named set", tagSet{}, true},
		{"empty list", list.New(), true},
		{"list", populated, false},
		{"sized zero", counter{}, true},
		{"sized", counter{n: 3}, false},

		// Map
		{"empty map", map[int]string{}, true},
		{"map", map[int]string{1: "a"}, false},

		// Other
		{"zero", 0, false},
		{"pointer to zero", &zero, false},
		{"false", false, false},
		{"float zero", 0.0, false},
		{"time", time.Time{}, false},
		{"struct", point{}, false},
		{"func", func() {}, false},
		{"panicking len", brokenLen{}, false},

		// reflect.Value is classified by what it holds
		{"reflected int", reflect.ValueOf(5), false},
		{"reflected empty slice", reflect.ValueOf([]int{}), true},
		{"reflected string", reflect.ValueOf("x"), false},
		{"zero reflect value", reflect.Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEmpty(tt.value); got != tt.want {
				t.Errorf("IsEmpty(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestOf(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"nil", nil, Absent},
		{"slice", []string{"a"}, Sequence},
		{"string", "abc", Text},
		{"object", map[string]any{}, Object},
		{"object interface", map[string]interface{}{"k": nil}, Object},
		{"set", map[string]struct{}{}, Set},
		{"sized", counter{}, Set},
		{"buffer", &bytes.Buffer{}, Text},
		{"builder", &strings.Builder{}, Text},
		{"reflected int", reflect.ValueOf(5), Other},
		{"reflected map", reflect.ValueOf(map[int]string{}), Map},
		{"map", map[string]int{}, Map},
		{"int keyed any map", map[int]any{}, Map},
		{"number", 3.14, Other},
		{"bool", true, Other},
		{"struct pointer", &point{}, Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Of(tt.value); got != tt.want {
				t.Errorf("Of(%#v) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestIsEmpty_JSONValues(t *testing.T) {
	// Values decoded from JSON are the shapes a browser template passes around.
	tests := []struct {
		raw  string
		want bool
	}{
		{`null`, true},
		{`[]`, true},
		{`[1]`, false},
		{`""`, true},
		{`"x"`, false},
		{`{}`, true},
		{`{"a":1}`, false},
		{`0`, false},
		{`false`, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var v any
			if err := json.Unmarshal([]byte(tt.raw), &v); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.raw, err)
			}
			if got := IsEmpty(v); got != tt.want {
				t.Errorf("IsEmpty(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	if got := Set.String(); got != "set" {
		t.Errorf("Set.String() = %q, want %q", got, "set")
	}
	if got := Kind(99).String(); got != "other" {
		t.Errorf("Kind(99).String() = %q, want %q", got, "other")
	}
}
