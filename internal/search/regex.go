package search

import (
	"fmt"
	"log/slog"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// regexCacheSize bounds the compiled-pattern cache. Benchmarks replay the
// same small query set, so even a modest cache removes recompilation from
// the hot path.
const regexCacheSize = 256

// Regex compiles the query as a pattern and matches it against entire
// lines, anchored at both ends. A query with no metacharacters degrades to
// exact equality; an invalid pattern is a per-query error.
type Regex struct {
	lineStore
	logger *slog.Logger
	cache  *lru.Cache[string, *regexp.Regexp]
}

var _ Algorithm = (*Regex)(nil)

// NewRegex creates the regex strategy over the given corpus path.
func NewRegex(path string, logger *slog.Logger) *Regex {
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[string, *regexp.Regexp](regexCacheSize)
	return &Regex{lineStore: lineStore{path: path}, logger: logger, cache: cache}
}

func (r *Regex) Name() string { return "regex" }

func (r *Regex) Search(query string) (bool, error) {
	re, err := r.compile(query)
	if err != nil {
		return false, fmt.Errorf("compile query pattern: %w", err)
	}
	for _, line := range r.snapshot() {
		if re.MatchString(line) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Regex) compile(query string) (*regexp.Regexp, error) {
	if re, ok := r.cache.Get(query); ok {
		return re, nil
	}
	re, err := regexp.Compile(`\A(?:` + query + `)\z`)
	if err != nil {
		return nil, err
	}
	r.cache.Add(query, re)
	return re, nil
}
