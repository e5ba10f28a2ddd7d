package layout

import (
	"fmt"
	"sync"

	"github.com/yrrapt/analogen/internal/netlist"
)

// Master is a generated layout cached by content hash.
type Master struct {
	ID        string
	Generator string
	Params    netlist.Params
	Layout    *Layout
}

// Database is the template database: it memoizes generated masters so
// that the same generator with the same parameters is generated once.
//
// Thread-safety: safe for concurrent use; generation happens outside
// the lock, so two concurrent first requests for the same master may
// both generate, with one result discarded. Generators are pure, so
// the duplicate work is harmless.
type Database struct {
	grid *Grid

	mu      sync.Mutex
	masters map[string]*Master
}

// NewDatabase creates an empty template database on the given grid.
func NewDatabase(grid *Grid) *Database {
	return &Database{grid: grid, masters: make(map[string]*Master)}
}

// Grid returns the routing grid masters are generated on.
func (db *Database) Grid() *Grid { return db.grid }

// NewMaster returns the master for (generator, params), generating it
// on first use. The second return reports whether the master came from
// the cache.
func (db *Database) NewMaster(generator string, params netlist.Params) (*Master, bool, error) {
	id, err := netlist.MasterID(generator, params)
	if err != nil {
		return nil, false, fmt.Errorf("master %s: %w", generator, err)
	}

	db.mu.Lock()
	if m, ok := db.masters[id]; ok {
		db.mu.Unlock()
		return m, true, nil
	}
	db.mu.Unlock()

	gen, err := Lookup(generator)
	if err != nil {
		return nil, false, err
	}
	lay, err := gen.Generate(db.grid, params)
	if err != nil {
		return nil, false, fmt.Errorf("generate %s: %w", generator, err)
	}

	m := &Master{ID: id, Generator: generator, Params: params, Layout: lay}
	db.mu.Lock()
	if prev, ok := db.masters[id]; ok {
		m = prev
	} else {
		db.masters[id] = m
	}
	db.mu.Unlock()
	return m, false, nil
}

// Len returns the number of cached masters.
func (db *Database) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.masters)
}
