package search

import "log/slog"

// RabinKarp keeps raw lines and compares polynomial fingerprints. Anchored
// to full-line equality, the rolling window never slides: only lines of the
// query's length are fingerprinted, and hash collisions are confirmed
// byte-wise.
type RabinKarp struct {
	lineStore
	logger *slog.Logger
}

var _ Algorithm = (*RabinKarp)(nil)

// primeRK is the multiplier for the polynomial rolling hash.
const primeRK = 16777619

// NewRabinKarp creates the Rabin-Karp strategy over the given corpus path.
func NewRabinKarp(path string, logger *slog.Logger) *RabinKarp {
	return &RabinKarp{lineStore: lineStore{path: path}, logger: logger}
}

func (r *RabinKarp) Name() string { return "rabin-karp" }

func (r *RabinKarp) Search(query string) (bool, error) {
	queryHash := hashRK(query)
	for _, line := range r.snapshot() {
		if len(line) != len(query) {
			continue
		}
		if hashRK(line) == queryHash && line == query {
			return true, nil
		}
	}
	return false, nil
}

func hashRK(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*primeRK + uint32(s[i])
	}
	return h
}
