package sim

import (
	"fmt"
	"sort"
)

// Corner scales the first-order device model. Mobility multiplies
// transconductance; the threshold shift moves the effective overdrive.
type Corner struct {
	Name     string
	Mobility float64 // relative to typical
	VthMV    int64   // threshold shift, mV
}

// corner table: typical, fast and slow process, plus the skewed
// corners used for ratioed logic.
var corners = map[string]Corner{
	"tt": {Name: "tt", Mobility: 1.00, VthMV: 0},
	"ff": {Name: "ff", Mobility: 1.15, VthMV: -30},
	"ss": {Name: "ss", Mobility: 0.85, VthMV: 30},
	"fs": {Name: "fs", Mobility: 1.05, VthMV: 15},
	"sf": {Name: "sf", Mobility: 0.95, VthMV: -15},
}

// LookupCorner resolves a corner name from a spec.
func LookupCorner(name string) (Corner, error) {
	c, ok := corners[name]
	if !ok {
		return Corner{}, fmt.Errorf("sim: unknown corner %q (have %v)", name, CornerNames())
	}
	return c, nil
}

// CornerNames returns the known corner names, sorted.
func CornerNames() []string {
	names := make([]string, 0, len(corners))
	for n := range corners {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
