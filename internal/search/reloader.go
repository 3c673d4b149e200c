package search

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ReloadPolicy selects when a Reloader re-derives the corpus
// representation.
type ReloadPolicy int

const (
	// ReloadNever serves from the representation built at startup for the
	// lifetime of the process: stale-but-consistent.
	ReloadNever ReloadPolicy = iota

	// ReloadEveryQuery rebuilds the representation immediately before every
	// query. No caching, no snapshot guarantee against concurrent writers.
	ReloadEveryQuery

	// ReloadOnChange rebuilds lazily on the first query after MarkStale,
	// typically driven by a file watcher.
	ReloadOnChange
)

func (p ReloadPolicy) String() string {
	switch p {
	case ReloadNever:
		return "never"
	case ReloadEveryQuery:
		return "every-query"
	case ReloadOnChange:
		return "on-change"
	default:
		return "unknown"
	}
}

// Reloader composes a base strategy with a reload policy, keeping
// freshness decisions out of the strategies themselves.
type Reloader struct {
	base   Algorithm
	policy ReloadPolicy
	logger *slog.Logger
	stale  atomic.Bool
}

var _ Algorithm = (*Reloader)(nil)

// NewReloader wraps base with the given policy.
func NewReloader(base Algorithm, policy ReloadPolicy, logger *slog.Logger) *Reloader {
	return &Reloader{base: base, policy: policy, logger: logger}
}

func (r *Reloader) Name() string { return r.base.Name() }

// Reload passes through to the base strategy.
func (r *Reloader) Reload() error { return r.base.Reload() }

// MarkStale flags the representation for rebuild before the next query.
// Only meaningful under ReloadOnChange.
func (r *Reloader) MarkStale() {
	r.stale.Store(true)
}

// Search applies the reload policy, then queries the base strategy.
func (r *Reloader) Search(query string) (bool, error) {
	switch r.policy {
	case ReloadEveryQuery:
		if err := r.base.Reload(); err != nil {
			return false, fmt.Errorf("reload before query: %w", err)
		}
	case ReloadOnChange:
		if r.stale.CompareAndSwap(true, false) {
			if err := r.base.Reload(); err != nil {
				// Keep the stale flag so the next query retries.
				r.stale.Store(true)
				return false, fmt.Errorf("reload after change: %w", err)
			}
			r.logger.Debug("corpus reloaded after change", slog.String("algorithm", r.base.Name()))
		}
	}
	return r.base.Search(query)
}
