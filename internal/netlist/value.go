package netlist

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the parameter value types that may
// appear in a design database. Only String, Int, Bool, List and Dict
// implement it.
//
// Floats are deliberately excluded: every physical quantity in the
// database is expressed in integer database units (nanometers, number
// of segments, number of fingers), which keeps content-addressed master
// identity deterministic across platforms.
type Value interface {
	paramValue() // sealed
}

// String is a string parameter value (e.g. threshold intent "lvt").
type String string

func (String) paramValue() {}

// Int is an integer parameter value. Always int64.
// Physical dimensions are integers in database units.
type Int int64

func (Int) paramValue() {}

// Bool is a boolean parameter value.
type Bool bool

func (Bool) paramValue() {}

// List is an ordered list of parameter values.
type List []Value

func (List) paramValue() {}

// Dict is a string-keyed map of parameter values.
// Use SortedKeys for deterministic iteration.
type Dict map[string]Value

func (Dict) paramValue() {}

// Params is the parameter dictionary handed to generators.
type Params = Dict

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code
// units). Go's sort.Strings compares UTF-8 bytes, which produces a
// different order for keys outside the BMP.
func (d Dict) SortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required
// by RFC 8785. utf16.Encode handles surrogate pairs correctly.
func compareKeysRFC8785(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ua) < len(ub):
		return -1
	case len(ua) > len(ub):
		return 1
	default:
		return 0
	}
}

// FromAny converts a decoded YAML/JSON value into a Value.
// Floats are rejected; specs must use integer database units.
func FromAny(v any) (Value, error) {
	return toValue(v)
}
