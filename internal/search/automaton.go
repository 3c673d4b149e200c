package search

import (
	"log/slog"
	"sync"

	"github.com/haystackd/haystackd/internal/corpus"
)

// Automaton builds an Aho-Corasick-style byte trie over all corpus lines
// as keys and answers membership by walking the query through it. A query
// matches iff the walk consumes every byte and ends on an accepting node.
//
// Failure links are not needed: the probe is the whole query, never a text
// the patterns slide over, so only the goto function and accepting marks
// of the automaton are ever exercised.
type Automaton struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
	root   *trieNode
}

type trieNode struct {
	children  map[byte]*trieNode
	accepting bool
}

var _ Algorithm = (*Automaton)(nil)

// NewAutomaton creates the trie-based strategy over the given corpus path.
func NewAutomaton(path string, logger *slog.Logger) *Automaton {
	return &Automaton{path: path, logger: logger}
}

func (a *Automaton) Name() string { return "aho-corasick" }

func (a *Automaton) Reload() error {
	lines, err := corpus.Load(a.path)
	if err != nil {
		return err
	}
	root := &trieNode{}
	for _, line := range lines {
		node := root
		for i := 0; i < len(line); i++ {
			b := line[i]
			if node.children == nil {
				node.children = make(map[byte]*trieNode)
			}
			next, ok := node.children[b]
			if !ok {
				next = &trieNode{}
				node.children[b] = next
			}
			node = next
		}
		node.accepting = true
	}
	a.mu.Lock()
	a.root = root
	a.mu.Unlock()
	return nil
}

func (a *Automaton) Search(query string) (bool, error) {
	a.mu.RLock()
	node := a.root
	a.mu.RUnlock()
	if node == nil {
		return false, nil
	}
	for i := 0; i < len(query); i++ {
		next, ok := node.children[query[i]]
		if !ok {
			return false, nil
		}
		node = next
	}
	return node.accepting, nil
}
