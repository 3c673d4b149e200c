package search

import "log/slog"

// BoyerMoore keeps raw lines and compares each candidate with the
// Boyer-Moore bad-character rule, built once per query. The match is
// anchored to full-line equality: only lines of the query's length are
// examined, where an occurrence and equality coincide.
type BoyerMoore struct {
	lineStore
	logger *slog.Logger
}

var _ Algorithm = (*BoyerMoore)(nil)

// NewBoyerMoore creates the Boyer-Moore strategy over the given corpus path.
func NewBoyerMoore(path string, logger *slog.Logger) *BoyerMoore {
	return &BoyerMoore{lineStore: lineStore{path: path}, logger: logger}
}

func (b *BoyerMoore) Name() string { return "boyer-moore" }

func (b *BoyerMoore) Search(query string) (bool, error) {
	table := badCharTable(query)
	for _, line := range b.snapshot() {
		if len(line) != len(query) {
			continue
		}
		if boyerMooreMatch(line, query, table) {
			return true, nil
		}
	}
	return false, nil
}

// badCharTable maps each pattern byte to its last position in the pattern;
// absent bytes stay -1.
func badCharTable(pattern string) [256]int {
	var table [256]int
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(pattern); i++ {
		table[pattern[i]] = i
	}
	return table
}

// boyerMooreMatch reports whether pattern occurs in text using the
// bad-character rule. Callers anchor full-line equality by only passing
// text of the pattern's length.
func boyerMooreMatch(text, pattern string, table [256]int) bool {
	n, m := len(text), len(pattern)
	if m == 0 {
		return n == 0
	}
	s := 0
	for s <= n-m {
		j := m - 1
		for j >= 0 && pattern[j] == text[s+j] {
			j--
		}
		if j < 0 {
			return true
		}
		shift := j - table[text[s+j]]
		if shift < 1 {
			shift = 1
		}
		s += shift
	}
	return false
}
