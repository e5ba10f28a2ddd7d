package spec

import "sort"

// validCorners is the process corner vocabulary a testbench may
// request. The simulator carries a device model for each name.
var validCorners = map[string]bool{
	"tt": true,
	"ff": true,
	"ss": true,
	"fs": true,
	"sf": true,
}

// CornerNames returns the corner names a spec may use, sorted.
func CornerNames() []string {
	names := make([]string, 0, len(validCorners))
	for n := range validCorners {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
