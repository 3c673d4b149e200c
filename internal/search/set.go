package search

import (
	"log/slog"
	"sync"

	"github.com/haystackd/haystackd/internal/corpus"
)

// Set keeps the corpus as a hash set of lines. O(n) build, O(1) average
// query; the best choice for large static files.
type Set struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	members map[string]struct{}
}

var _ Algorithm = (*Set)(nil)

// NewSet creates the hash-set strategy over the given corpus path.
func NewSet(path string, logger *slog.Logger) *Set {
	return &Set{path: path, logger: logger}
}

func (s *Set) Name() string { return "set" }

func (s *Set) Reload() error {
	lines, err := corpus.Load(s.path)
	if err != nil {
		return err
	}
	members := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		members[line] = struct{}{}
	}
	s.mu.Lock()
	s.members = members
	s.mu.Unlock()
	return nil
}

func (s *Set) Search(query string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[query]
	return ok, nil
}
