package menuindex

import (
	"math"
	"sync"
	"testing"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
)

func TestMemoryIndex_ScanDotProduct(t *testing.T) {
	index := NewMemoryIndex()
	items := []entities.MenuItem{
		{Name: "Big Mac", Calories: 550},
		{Name: "McFlurry", Calories: 340},
	}
	embeddings := [][]float32{
		{1, 0},
		{0, 1},
	}
	if err := index.Swap(items, embeddings); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	scores, got := index.Scan([]float32{1, 0})
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0].Score != 1 || scores[1].Score != 0 {
		t.Errorf("unexpected scores: %+v", scores)
	}
	if scores[0].Index != 0 || scores[1].Index != 1 {
		t.Errorf("indices must follow corpus positions: %+v", scores)
	}
	if len(got) != 2 || got[0].Name != "Big Mac" {
		t.Errorf("scan should return the scored snapshot: %+v", got)
	}
}

func TestMemoryIndex_DegenerateQueryScoresZero(t *testing.T) {
	index := NewMemoryIndex()
	items := []entities.MenuItem{{Name: "Big Mac"}}
	if err := index.Swap(items, [][]float32{{0.6, 0.8}}); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	nan := float32(math.NaN())
	for _, query := range [][]float32{
		{nan, nan},
		{},
		{1}, // dimension mismatch
	} {
		scores, _ := index.Scan(query)
		if len(scores) != 1 || scores[0].Score != 0 {
			t.Errorf("degenerate query %v should score zero, got %+v", query, scores)
		}
	}
}

func TestMemoryIndex_ScanPairsScoresWithSnapshot(t *testing.T) {
	index := NewMemoryIndex()
	if err := index.Swap([]entities.MenuItem{{Name: "Old A"}, {Name: "Old B"}}, [][]float32{{1}, {0}}); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	scores, items := index.Scan([]float32{1})

	// A same-size swap after the scan must not affect the returned pair.
	if err := index.Swap([]entities.MenuItem{{Name: "New A"}, {Name: "New B"}}, [][]float32{{0}, {1}}); err != nil {
		t.Fatalf("swap failed: %v", err)
	}
	if items[0].Name != "Old A" || items[1].Name != "Old B" {
		t.Errorf("scan returned items from a different snapshot: %+v", items)
	}
	if scores[0].Score != 1 || scores[1].Score != 0 {
		t.Errorf("scores changed after swap: %+v", scores)
	}
}

func TestMemoryIndex_ConcurrentScanAndSwap(t *testing.T) {
	index := NewMemoryIndex()
	corpusA := []entities.MenuItem{{Name: "A1"}, {Name: "A2"}}
	corpusB := []entities.MenuItem{{Name: "B1"}, {Name: "B2"}}
	embA := [][]float32{{1, 0}, {0, 1}}
	embB := [][]float32{{0, 1}, {1, 0}}
	if err := index.Swap(corpusA, embA); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				scores, items := index.Scan([]float32{1, 0})
				if len(scores) != len(items) {
					t.Errorf("torn snapshot: %d scores for %d items", len(scores), len(items))
					return
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			if j%2 == 0 {
				index.Swap(corpusB, embB)
			} else {
				index.Swap(corpusA, embA)
			}
		}
	}()
	wg.Wait()
}

func TestMemoryIndex_SwapRejectsMismatch(t *testing.T) {
	index := NewMemoryIndex()
	err := index.Swap([]entities.MenuItem{{Name: "Big Mac"}}, nil)
	if err == nil {
		t.Fatal("expected error on item/embedding count mismatch")
	}
}

func TestMemoryIndex_SwapReplacesSnapshot(t *testing.T) {
	index := NewMemoryIndex()
	if err := index.Swap([]entities.MenuItem{{Name: "Old"}}, [][]float32{{1}}); err != nil {
		t.Fatalf("swap failed: %v", err)
	}
	if err := index.Swap([]entities.MenuItem{{Name: "New A"}, {Name: "New B"}}, [][]float32{{1}, {0}}); err != nil {
		t.Fatalf("swap failed: %v", err)
	}

	if index.Count() != 2 {
		t.Errorf("expected count 2 after swap, got %d", index.Count())
	}
	if index.Items()[0].Name != "New A" {
		t.Errorf("snapshot not replaced: %+v", index.Items())
	}
}
