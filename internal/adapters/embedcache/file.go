// Package embedcache persists item embeddings between restarts.
// Clean Architecture: Adapter implementing ports.EmbeddingCache.
// The cache is positional - row i belongs to corpus item i - so a cache
// whose row count differs from the corpus size is stale and ignored.
package embedcache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// FileCache stores embeddings as a JSON array-of-arrays next to the corpus.
type FileCache struct {
	path string
}

// NewFileCache creates a cache backed by the given file path.
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Load returns cached embeddings, or ok=false when the cache is absent,
// unreadable, or does not match the expected corpus size.
func (c *FileCache) Load(expectCount int) ([][]float32, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}

	var embeddings [][]float32
	if err := json.Unmarshal(data, &embeddings); err != nil {
		log.Printf("[WARN] embedding cache %s is corrupt, regenerating: %v", c.path, err)
		return nil, false
	}

	if len(embeddings) != expectCount {
		log.Printf("[WARN] embedding cache has %d rows but corpus has %d items, regenerating",
			len(embeddings), expectCount)
		return nil, false
	}

	return embeddings, true
}

// Save persists embeddings atomically (write temp file, then rename).
func (c *FileCache) Save(embeddings [][]float32) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data, err := json.Marshal(embeddings)
	if err != nil {
		return fmt.Errorf("encoding embeddings: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}

// Exists reports whether a cache file is present.
func (c *FileCache) Exists() bool {
	_, err := os.Stat(c.path)
	return err == nil
}
