// Package search implements exact full-line membership queries against a
// corpus file, behind a pluggable Algorithm interface with interchangeable
// strategies.
//
// Every strategy answers the same question: does some line of the current
// corpus equal the query byte-for-byte, excluding the line terminator?
// They differ only in build versus query cost.
package search

import (
	"log/slog"
	"sync"

	"github.com/haystackd/haystackd/internal/corpus"
)

// Algorithm is one interchangeable search strategy.
type Algorithm interface {
	// Name identifies the strategy in logs.
	Name() string

	// Reload re-derives the internal representation from the corpus file.
	Reload() error

	// Search reports whether some line of the current corpus equals the
	// query exactly. An error means the query could not be evaluated, not
	// that it is absent.
	Search(query string) (bool, error)
}

// lineStore holds raw corpus lines for the strategies that scan
// line-by-line. Reload swaps the slice atomically under the lock; Search
// paths take a snapshot so a concurrent reload never mutates a scan in
// progress.
type lineStore struct {
	path  string
	mu    sync.RWMutex
	lines []string
}

func (s *lineStore) Reload() error {
	lines, err := corpus.Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	return nil
}

func (s *lineStore) snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lines
}

// Linear scans the ordered line list. O(n·m) worst case, no build cost
// beyond the load. It is the default and the fallback for unknown
// algorithm names.
type Linear struct {
	lineStore
	logger *slog.Logger
}

var _ Algorithm = (*Linear)(nil)

// NewLinear creates the linear-scan strategy over the given corpus path.
func NewLinear(path string, logger *slog.Logger) *Linear {
	return &Linear{lineStore: lineStore{path: path}, logger: logger}
}

func (l *Linear) Name() string { return "linear" }

func (l *Linear) Search(query string) (bool, error) {
	for _, line := range l.snapshot() {
		if line == query {
			return true, nil
		}
	}
	return false, nil
}
