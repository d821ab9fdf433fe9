package graph

import (
	"log/slog"

	"github.com/roach88/lineage/internal/store"
)

// Default bounds for the graph algorithms. Neither is derived from a hard
// requirement; both are configurable because arbitrarily deep provenance
// chains beyond these bounds will silently under-detect cycles or truncate
// traversal.
const (
	// DefaultCycleCheckDepth caps the reverse path search run before every
	// edge insert. A cycle whose back-path is longer than this goes
	// undetected and the edge is admitted.
	DefaultCycleCheckDepth = 20

	// DefaultTraversalDepth is the hop count used when a caller asks for a
	// graph without specifying one.
	DefaultTraversalDepth = 3

	// DefaultMaxTraversalDepth caps caller-supplied traversal depths.
	DefaultMaxTraversalDepth = 20
)

// Limits bounds the engine's graph algorithms.
type Limits struct {
	// CycleCheckDepth caps the path search in the acyclicity check.
	CycleCheckDepth int

	// TraversalDepth is the default hop count for ArtifactGraph.
	TraversalDepth int

	// MaxTraversalDepth caps caller-supplied depths.
	MaxTraversalDepth int
}

// DefaultLimits returns the default bounds.
func DefaultLimits() Limits {
	return Limits{
		CycleCheckDepth:   DefaultCycleCheckDepth,
		TraversalDepth:    DefaultTraversalDepth,
		MaxTraversalDepth: DefaultMaxTraversalDepth,
	}
}

// Engine is the provenance graph engine.
//
// The engine holds no mutable state between calls - all state lives in the
// row store, so one Engine serves any number of concurrent callers. Each
// operation runs as a single storage transaction; mutation safety is
// delegated to the store's transactional guarantees.
type Engine struct {
	store  *store.Store
	clock  Clock
	ids    IDGenerator
	limits Limits
	log    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock (tests).
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDGenerator replaces the id generator (tests).
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithLimits replaces the graph algorithm bounds.
func WithLimits(l Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithLogger replaces the logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine backed by the given store.
// Defaults: UTC wall clock, UUIDv7 ids, DefaultLimits, slog default logger.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		clock:  UTCClock{},
		ids:    UUIDv7Generator{},
		limits: DefaultLimits(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.limits.CycleCheckDepth <= 0 {
		e.limits.CycleCheckDepth = DefaultCycleCheckDepth
	}
	if e.limits.TraversalDepth <= 0 {
		e.limits.TraversalDepth = DefaultTraversalDepth
	}
	if e.limits.MaxTraversalDepth <= 0 {
		e.limits.MaxTraversalDepth = DefaultMaxTraversalDepth
	}
	return e
}
