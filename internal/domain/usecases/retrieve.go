// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
// They contain NO framework code, NO external dependencies - just pure business logic.
package usecases

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/ports"
)

// nameBoost multiplies the similarity of items whose name appears verbatim
// in the query. Embeddings alone under-rank exact matches buried in a longer
// sentence; the boost privileges them.
const nameBoost = 1.25

// Retriever ranks menu items against a natural-language query.
type Retriever struct {
	embedder ports.EmbeddingService
	index    ports.MenuIndex
}

// NewRetriever creates a Retriever with injected dependencies.
func NewRetriever(embedder ports.EmbeddingService, index ports.MenuIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve returns at most topK items with boosted score >= threshold,
// in descending score order. Deterministic for a fixed corpus, fixed
// embeddings and fixed query: ties break on corpus position.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]entities.RetrievalResult, error) {
	if topK <= 0 {
		topK = 3
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	// Scores and items come from one snapshot read; a concurrent hot-reload
	// swap cannot tear them apart.
	scores, items := r.index.Scan(queryEmbedding)
	if len(scores) == 0 {
		return nil, nil
	}

	loweredQuery := strings.ToLower(query)
	for i, s := range scores {
		name := strings.ToLower(items[s.Index].Name)
		if name != "" && strings.Contains(loweredQuery, name) {
			scores[i].Score = s.Score * nameBoost
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Index < scores[j].Index
	})

	// Over-fetch 3x so the zero-nutrition filter can't starve the result set.
	pool := scores
	if len(pool) > 3*topK {
		pool = pool[:3*topK]
	}

	var results []entities.RetrievalResult
	for _, s := range pool {
		if s.Score < threshold {
			break // pool is sorted descending, nothing below clears it
		}
		item := items[s.Index]
		if item.ZeroNutrition() {
			continue
		}
		results = append(results, entities.RetrievalResult{Item: item, Score: s.Score})
		if len(results) == topK {
			break
		}
	}

	return results, nil
}
