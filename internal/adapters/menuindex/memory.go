// Package menuindex provides the in-memory embedding index.
// Clean Architecture: Adapter implementing ports.MenuIndex.
// The corpus and its embeddings form an immutable snapshot; reloads replace
// the whole snapshot under the write lock so scans never see a torn state.
package menuindex

import (
	"fmt"
	"math"
	"sync"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/ports"
)

// MemoryIndex is a full-scan in-memory index over the menu corpus.
type MemoryIndex struct {
	mu         sync.RWMutex
	items      []entities.MenuItem
	embeddings [][]float32
}

// NewMemoryIndex creates an empty index; populate it with Swap.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Swap atomically replaces the corpus snapshot and its embeddings.
func (x *MemoryIndex) Swap(items []entities.MenuItem, embeddings [][]float32) error {
	if len(items) != len(embeddings) {
		return fmt.Errorf("index swap: %d items but %d embeddings", len(items), len(embeddings))
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.items = items
	x.embeddings = embeddings
	return nil
}

// Scan computes the dot product of the query vector against every item
// embedding. Vectors are unit-normalized upstream, so the dot product is the
// cosine similarity. Degenerate values score zero. Scores and items come from
// the same snapshot, taken under one lock acquisition, so a concurrent Swap
// can never pair scores with a different corpus.
func (x *MemoryIndex) Scan(query []float32) ([]ports.ItemScore, []entities.MenuItem) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	scores := make([]ports.ItemScore, len(x.embeddings))
	for i, emb := range x.embeddings {
		scores[i] = ports.ItemScore{Index: i, Score: dot(query, emb)}
	}
	return scores, x.items
}

// Items returns the current corpus snapshot.
func (x *MemoryIndex) Items() []entities.MenuItem {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.items
}

// Count returns the number of indexed items.
func (x *MemoryIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.items)
}

func dot(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0
	}
	return sum
}
