package flavor

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/mb-14/gomarkov"
)

// Corpus is a small bundle of seed lines trained into an order-2 Markov
// chain at startup, following the teacher's per-personality training loop
// (pkg/pcg/dialogue.go's trainMarkovChain).
type Corpus struct {
	Name  string
	Lines []string
}

// defaultCorpora ship with the server; operators may register additional
// corpora via Book.Train for custom monster classes.
var defaultCorpora = []Corpus{
	{
		Name: "feral",
		Lines: []string{
			"you should not have come here",
			"this ground belongs to the pack now",
			"turn back while you still can",
			"the hunt has already begun for you",
			"your scent gave you away long ago",
		},
	},
	{
		Name: "undead",
		Lines: []string{
			"death is not the end you imagined",
			"join us in the long quiet dark",
			"your warmth will not last much longer",
			"we remember every name that falls here",
			"the grave keeps better company than the living",
		},
	},
}

// trained wraps a chain with the seed phrases (the opening word pairs of
// each training line) generation can start from.
type trained struct {
	chain *gomarkov.Chain
	seeds [][]string
}

// Book holds one trained chain per named corpus.
type Book struct {
	mu     sync.RWMutex
	chains map[string]*trained
}

// NewBook trains the bundled default corpora and returns a ready Book.
func NewBook() *Book {
	b := &Book{chains: make(map[string]*trained)}
	for _, c := range defaultCorpora {
		b.Train(c.Name, c.Lines)
	}
	return b
}

// Train (re)trains the named corpus, replacing any existing chain.
func (b *Book) Train(name string, lines []string) {
	chain := gomarkov.NewChain(2)
	var seeds [][]string
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) > 2 {
			chain.Add(words)
			seeds = append(seeds, words[:2])
		}
	}
	b.mu.Lock()
	b.chains[name] = &trained{chain: chain, seeds: seeds}
	b.mu.Unlock()
}

// Generate produces one flavor line from the named corpus, seeded with one
// of its training lines' opening word pair. It returns an error if the
// corpus is unknown or generation fails, in which case callers should fall
// back to a literal line rather than surface the error to a client.
func (b *Book) Generate(corpus string) (string, error) {
	b.mu.RLock()
	t, ok := b.chains[corpus]
	b.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("flavor: unknown corpus %q", corpus)
	}
	if len(t.seeds) == 0 {
		return "", fmt.Errorf("flavor: corpus %q has no training data", corpus)
	}

	seed := t.seeds[rand.Intn(len(t.seeds))]
	generated, err := t.chain.Generate(seed)
	if err != nil {
		return "", fmt.Errorf("flavor: markov generation failed: %w", err)
	}
	return strings.Join(seed, " ") + " " + generated, nil
}
