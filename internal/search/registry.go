package search

import (
	"log/slog"
	"strings"
)

// Factory constructs one strategy over a corpus path.
type Factory func(path string, logger *slog.Logger) Algorithm

// DefaultAlgorithm is the fallback for unknown or empty names.
const DefaultAlgorithm = "linear"

// registry maps normalized algorithm names to constructors. Populated once
// at startup; no runtime reflection.
var registry = map[string]Factory{
	"linear":      func(path string, logger *slog.Logger) Algorithm { return NewLinear(path, logger) },
	"set":         func(path string, logger *slog.Logger) Algorithm { return NewSet(path, logger) },
	"ahocorasick": func(path string, logger *slog.Logger) Algorithm { return NewAutomaton(path, logger) },
	"automaton":   func(path string, logger *slog.Logger) Algorithm { return NewAutomaton(path, logger) },
	"boyermoore":  func(path string, logger *slog.Logger) Algorithm { return NewBoyerMoore(path, logger) },
	"rabinkarp":   func(path string, logger *slog.Logger) Algorithm { return NewRabinKarp(path, logger) },
	"regex":       func(path string, logger *slog.Logger) Algorithm { return NewRegex(path, logger) },
}

// New resolves name to a strategy over the given corpus path. Names are
// case-insensitive and separator-insensitive ("Boyer-Moore", "boyer_moore"
// and " boyermoore " all resolve the same). An unknown name logs an error
// and falls back to the linear strategy; resolution is never fatal.
func New(name, path string, logger *slog.Logger) Algorithm {
	factory, ok := registry[normalize(name)]
	if !ok {
		logger.Error("unknown search algorithm, falling back to default",
			slog.String("algorithm", name),
			slog.String("fallback", DefaultAlgorithm))
		factory = registry[DefaultAlgorithm]
	}
	alg := factory(path, logger)
	logger.Info("search algorithm selected", slog.String("algorithm", alg.Name()))
	return alg
}

// Names returns the canonical registry names, for help text.
func Names() []string {
	return []string{"linear", "set", "ahocorasick", "boyermoore", "rabinkarp", "regex"}
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
	return name
}
