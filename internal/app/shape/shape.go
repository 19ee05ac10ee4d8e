// Package shape classifies arbitrary values by structural kind and decides
// whether they are empty. Templates and handlers use it to choose between a
// placeholder and real content.
package shape

import (
	"reflect"
)

// Kind is the closed set of shapes the emptiness predicate understands.
type Kind int

const (
	Other    Kind = iota // numbers, bools, times, structs, funcs: never empty
	Absent               // nil of any kind
	Sequence             // slices and arrays
	Text                 // strings and text buffers
	Object               // plain keyed mappings (map[string]any)
	Set                  // map[K]struct{} or anything Sized
	Map                  // every other map
)

var kindNames = [...]string{
	Other:    "other",
	Absent:   "absent",
	Sequence: "sequence",
	Text:     "text",
	Object:   "object",
	Set:      "set",
	Map:      "map",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "other"
	}
	return kindNames[k]
}

// Sized is implemented by set-like collections that report their
// cardinality, e.g. container/list.List or a custom set type.
type Sized interface {
	Len() int
}

// textBuffer matches string builders such as *bytes.Buffer and
// *strings.Builder, which are Text rather than sets.
type textBuffer interface {
	Sized
	String() string
}

var emptyStruct = reflect.TypeOf(struct{}{})

// Of returns the kind of v. Common concrete types are resolved by a type
// switch; everything else goes through reflection.
func Of(v any) Kind {
	k, _ := classify(v)
	return k
}

// IsEmpty reports whether v is absent or structurally empty for its kind.
// Kinds outside the six collection shapes are never empty, so 0 and false
// are not empty.
func IsEmpty(v any) bool {
	k, n := classify(v)
	switch k {
	case Absent:
		return true
	case Other:
		return false
	default:
		return n == 0
	}
}

// classify returns the kind of v and, for collection kinds, its length.
func classify(v any) (Kind, int) {
	switch x := v.(type) {
	case nil:
		return Absent, 0
	case string:
		return Text, len(x)
	case []any:
		if x == nil {
			return Absent, 0
		}
		return Sequence, len(x)
	case map[string]any:
		if x == nil {
			return Absent, 0
		}
		return Object, len(x)
	case reflect.Value:
		return classifyValue(x)
	case textBuffer:
		if isNil(reflect.ValueOf(x)) {
			return Absent, 0
		}
		return sizedLen(Text, x)
	case Sized:
		if isNil(reflect.ValueOf(x)) {
			return Absent, 0
		}
		return sizedLen(Set, x)
	}
	return classifyValue(reflect.ValueOf(v))
}

// sizedLen calls Len on a caller-supplied type. A Len that panics leaves
// the value classified as Other.
func sizedLen(k Kind, s Sized) (kind Kind, n int) {
	defer func() {
		if recover() != nil {
			kind, n = Other, 0
		}
	}()
	return k, s.Len()
}

func classifyValue(rv reflect.Value) (Kind, int) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Absent, 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Absent, 0
		}
		elem := rv.Elem()
		if elem.CanInterface() {
			return classify(elem.Interface())
		}
		return classifyValue(elem)
	case reflect.Slice:
		if rv.IsNil() {
			return Absent, 0
		}
		return Sequence, rv.Len()
	case reflect.Array:
		return Sequence, rv.Len()
	case reflect.String:
		return Text, rv.Len()
	case reflect.Map:
		if rv.IsNil() {
			return Absent, 0
		}
		t := rv.Type()
		switch {
		case t.Elem() == emptyStruct:
			return Set, rv.Len()
		case t.Key().Kind() == reflect.String && t.Elem().Kind() == reflect.Interface:
			return Object, rv.Len()
		default:
			return Map, rv.Len()
		}
	case reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return Absent, 0
		}
		return Other, 0
	default:
		return Other, 0
	}
}

func isNil(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}
