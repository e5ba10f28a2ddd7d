// Package flow orchestrates the generation flow: layout generation,
// extraction, schematic generation, LVS, testbench expansion and
// simulation, with every stage recorded as an ordered trace in the
// results database.
//
// A run either completes every stage or stops at the first failure;
// a failed stage marks the run failed and no later stage executes.
package flow

import (
	"log/slog"

	"github.com/yrrapt/analogen/internal/layout"
	"github.com/yrrapt/analogen/internal/store"
)

// Project is a session handle: the results database, the layout
// template database, and the logger flows run under. One Project can
// serve many runs; the template database caches masters across them.
type Project struct {
	store *store.Store
	db    *layout.Database
	log   *slog.Logger
}

// ProjectOption configures a Project.
type ProjectOption func(*Project)

// WithGrid sets the routing grid layouts are generated on.
func WithGrid(grid *layout.Grid) ProjectOption {
	return func(p *Project) {
		p.db = layout.NewDatabase(grid)
	}
}

// WithLogger sets the project logger.
func WithLogger(log *slog.Logger) ProjectOption {
	return func(p *Project) {
		p.log = log
	}
}

// NewProject creates a project over an open results database. The
// default routing grid and slog.Default are used unless overridden.
func NewProject(s *store.Store, opts ...ProjectOption) *Project {
	p := &Project{
		store: s,
		db:    layout.NewDatabase(layout.DefaultGrid()),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the results database.
func (p *Project) Store() *store.Store { return p.store }

// Database returns the layout template database.
func (p *Project) Database() *layout.Database { return p.db }

// Logger returns the project logger.
func (p *Project) Logger() *slog.Logger { return p.log }
