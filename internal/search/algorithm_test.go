package search

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haystackd/haystackd/internal/logging"
)

// allStrategies builds every registered strategy over the given corpus
// path, reloaded and ready to query.
func allStrategies(t *testing.T, path string) []Algorithm {
	t.Helper()
	logger := logging.Discard()
	algs := []Algorithm{
		NewLinear(path, logger),
		NewSet(path, logger),
		NewAutomaton(path, logger),
		NewBoyerMoore(path, logger),
		NewRabinKarp(path, logger),
		NewRegex(path, logger),
	}
	for _, alg := range algs {
		require.NoError(t, alg.Reload(), "reload %s", alg.Name())
	}
	return algs
}

func writeCorpus(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExactMatchContract(t *testing.T) {
	path := writeCorpus(t,
		"test string 1",
		"test string 2",
		"héllo wörld",
		"日本語の行",
		"spaced out line",
	)

	tests := []struct {
		query string
		want  bool
	}{
		{"test string 1", true},
		{"test string 2", true},
		{"test string 3", false},
		{"test string", false},   // strict prefix of a stored line
		{"string 1", false},      // strict suffix
		{"est string", false},    // interior substring
		{"test string 1 ", false},
		{" test string 1", false},
		{"héllo wörld", true},
		{"日本語の行", true},
		{"日本語", false},
		{"spaced out line", true},
	}

	for _, alg := range allStrategies(t, path) {
		for _, tt := range tests {
			got, err := alg.Search(tt.query)
			require.NoError(t, err, "%s: %q", alg.Name(), tt.query)
			assert.Equal(t, tt.want, got, "%s: %q", alg.Name(), tt.query)
		}
	}
}

func TestRandomizedMembership(t *testing.T) {
	// Given: a corpus of known lines and queries drawn half from it, half
	// guaranteed absent.
	rng := rand.New(rand.NewSource(42))
	lines := make([]string, 500)
	present := make(map[string]bool, len(lines))
	for i := range lines {
		lines[i] = fmt.Sprintf("line %04d payload %d", i, rng.Intn(1<<20))
		present[lines[i]] = true
	}
	path := writeCorpus(t, lines...)

	algs := allStrategies(t, path)

	for i := 0; i < 200; i++ {
		var query string
		if rng.Intn(2) == 0 {
			query = lines[rng.Intn(len(lines))]
		} else {
			query = fmt.Sprintf("absent %04d payload %d", i, rng.Intn(1<<20))
		}
		for _, alg := range algs {
			got, err := alg.Search(query)
			require.NoError(t, err)
			assert.Equal(t, present[query], got, "%s: %q", alg.Name(), query)
		}
	}
}

func TestSearchIsIdempotent(t *testing.T) {
	path := writeCorpus(t, "alpha", "beta")

	for _, alg := range allStrategies(t, path) {
		for i := 0; i < 3; i++ {
			got, err := alg.Search("alpha")
			require.NoError(t, err)
			assert.True(t, got, "%s call %d", alg.Name(), i)

			got, err = alg.Search("gamma")
			require.NoError(t, err)
			assert.False(t, got, "%s call %d", alg.Name(), i)
		}
	}
}

func TestEmptyCorpus(t *testing.T) {
	path := writeCorpus(t)

	for _, alg := range allStrategies(t, path) {
		got, err := alg.Search("anything")
		require.NoError(t, err)
		assert.False(t, got, alg.Name())
	}
}

func TestEmptyLineInCorpus(t *testing.T) {
	// A blank corpus line is a legitimate member.
	path := writeCorpus(t, "alpha", "", "beta")

	for _, alg := range allStrategies(t, path) {
		got, err := alg.Search("")
		require.NoError(t, err)
		assert.True(t, got, alg.Name())
	}
}

func TestReloadMissingFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	logger := logging.Discard()

	algs := []Algorithm{
		NewLinear(path, logger),
		NewSet(path, logger),
		NewAutomaton(path, logger),
		NewBoyerMoore(path, logger),
		NewRabinKarp(path, logger),
		NewRegex(path, logger),
	}
	for _, alg := range algs {
		require.Error(t, alg.Reload(), alg.Name())
	}
}

func TestRegexPatternQueries(t *testing.T) {
	path := writeCorpus(t, "test string 1", "test string 22")
	logger := logging.Discard()

	re := NewRegex(path, logger)
	require.NoError(t, re.Reload())

	// Pattern anchored to the whole line.
	got, err := re.Search(`test string \d`)
	require.NoError(t, err)
	assert.True(t, got)

	// The pattern must cover the entire line, not a prefix of it.
	got, err = re.Search(`test string`)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = re.Search(`test string \d+`)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestRegexInvalidPattern(t *testing.T) {
	path := writeCorpus(t, "alpha")
	re := NewRegex(path, logging.Discard())
	require.NoError(t, re.Reload())

	_, err := re.Search("([unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile query pattern")
}

func TestBoyerMooreMatch(t *testing.T) {
	table := badCharTable("abc")
	assert.True(t, boyerMooreMatch("abc", "abc", table))
	assert.False(t, boyerMooreMatch("abd", "abc", table))
	assert.True(t, boyerMooreMatch("xxabc", "abc", table))
	assert.False(t, boyerMooreMatch("ab", "abc", table))

	empty := badCharTable("")
	assert.True(t, boyerMooreMatch("", "", empty))
	assert.False(t, boyerMooreMatch("x", "", empty))
}

func TestHashRKDistinguishes(t *testing.T) {
	assert.Equal(t, hashRK("same"), hashRK("same"))
	assert.NotEqual(t, hashRK("abc"), hashRK("abd"))
}

func BenchmarkStrategies(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "corpus.txt")
	content := make([]byte, 0, 1<<20)
	for i := 0; i < 50000; i++ {
		content = append(content, fmt.Sprintf("test string %d\n", i)...)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		b.Fatal(err)
	}
	logger := logging.Discard()

	strategies := []Algorithm{
		NewLinear(path, logger),
		NewSet(path, logger),
		NewAutomaton(path, logger),
		NewBoyerMoore(path, logger),
		NewRabinKarp(path, logger),
		NewRegex(path, logger),
	}
	for _, alg := range strategies {
		if err := alg.Reload(); err != nil {
			b.Fatal(err)
		}
		b.Run(alg.Name(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := alg.Search("test string 49999"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
