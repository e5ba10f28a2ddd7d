package layout

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yrrapt/analogen/internal/netlist"
)

// Generator produces a layout from a parameter dictionary.
//
// Generators are pure: the same grid and parameters must produce the
// same layout, because the template database caches masters by the
// content hash of (generator name, params).
type Generator interface {
	// Name identifies the generator in specs and in the registry.
	Name() string

	// Generate builds the layout. Implementations must validate their
	// parameters and return descriptive errors for bad values.
	Generate(grid *Grid, params netlist.Params) (*Layout, error)
}

var (
	regMu    sync.RWMutex
	registry = make(map[string]Generator)
)

// Register adds a generator to the global registry.
// Panics on duplicate names; registration happens at init time.
func Register(g Generator) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[g.Name()]; dup {
		panic(fmt.Sprintf("layout: duplicate generator %q", g.Name()))
	}
	registry[g.Name()] = g
}

// Lookup returns the generator registered under name.
func Lookup(name string) (Generator, error) {
	regMu.RLock()
	defer regMu.RUnlock()
	g, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("layout: unknown generator %q (have %v)", name, Names())
	}
	return g, nil
}

// Names returns registered generator names, sorted.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// intParam extracts a required positive integer parameter.
func intParam(params netlist.Params, key string) (int64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", key)
	}
	n, ok := v.(netlist.Int)
	if !ok {
		return 0, fmt.Errorf("parameter %q: expected integer, got %T", key, v)
	}
	if n <= 0 {
		return 0, fmt.Errorf("parameter %q: must be positive, got %d", key, n)
	}
	return int64(n), nil
}

// stringParam extracts an optional string parameter with a default.
func stringParam(params netlist.Params, key, def string) (string, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(netlist.String)
	if !ok {
		return "", fmt.Errorf("parameter %q: expected string, got %T", key, v)
	}
	return string(s), nil
}
