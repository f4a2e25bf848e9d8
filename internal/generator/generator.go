// Package generator builds word cards for reading sessions.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces randomized word cards.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Card draws count words from the pool. Every word is used once before any
// word repeats, and a refill never places the same word twice in a row.
func (g *Generator) Card(words []string, count int) []string {
	if len(words) == 0 || count <= 0 {
		return []string{}
	}
	result := make([]string, 0, count)
	for len(result) < count {
		batch := append([]string(nil), words...)
		g.rnd.Shuffle(len(batch), func(i, j int) { batch[i], batch[j] = batch[j], batch[i] })
		avoidRepeat(result, batch)
		for _, w := range batch {
			if len(result) == count {
				break
			}
			result = append(result, w)
		}
	}
	return result
}

// WeightedCard draws count words with a bias toward weak words. weak maps a
// word to its misread rate in [0,1]; each word gets weight 1 + rate*factor.
// Words are drawn without replacement until the pool is exhausted.
func (g *Generator) WeightedCard(words []string, count int, weak map[string]float64, factor float64) []string {
	if len(words) == 0 || count <= 0 {
		return []string{}
	}
	if len(weak) == 0 || factor <= 0 {
		return g.Card(words, count)
	}
	result := make([]string, 0, count)
	for len(result) < count {
		pool := append([]string(nil), words...)
		weights := make([]float64, len(pool))
		total := 0.0
		for i, word := range pool {
			w := 1.0 + weak[word]*factor
			weights[i] = w
			total += w
		}
		for len(pool) > 0 && len(result) < count {
			idx := g.pick(weights, total)
			if n := len(result); n > 0 && len(pool) > 1 && pool[idx] == result[n-1] {
				idx = (idx + 1) % len(pool)
			}
			result = append(result, pool[idx])
			total -= weights[idx]
			pool = append(pool[:idx], pool[idx+1:]...)
			weights = append(weights[:idx], weights[idx+1:]...)
		}
	}
	return result
}

func (g *Generator) pick(weights []float64, total float64) int {
	r := g.rnd.Float64() * total
	acc := 0.0
	for j, w := range weights {
		acc += w
		if r <= acc {
			return j
		}
	}
	return len(weights) - 1
}

func avoidRepeat(prev, batch []string) {
	if len(prev) == 0 || len(batch) < 2 {
		return
	}
	if batch[0] == prev[len(prev)-1] {
		batch[0], batch[1] = batch[1], batch[0]
	}
}
