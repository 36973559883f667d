// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"
	"time"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
)

// EmbeddingService generates unit-normalized vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a unit vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates unit vectors for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerationService is the opaque text-generation oracle.
// The Disabled variant is selected at startup when no oracle is configured,
// so callers never branch on nil.
type GenerationService interface {
	// Generate produces free text from a prompt. May fail or time out.
	Generate(ctx context.Context, prompt string) (string, error)

	// Available reports whether a real oracle backs this service.
	Available() bool
}

// ItemScore is a raw similarity score for the item at a corpus index.
type ItemScore struct {
	Index int
	Score float64
}

// MenuIndex holds an immutable corpus snapshot and its item embeddings.
// Scan is a full O(n) pass; snapshots are replaced wholesale via Swap.
type MenuIndex interface {
	// Scan computes the dot product of the query vector against every item
	// embedding and returns the scores together with the corpus snapshot
	// they were computed against, so callers never pair scores from one
	// snapshot with items from another. Degenerate values (NaN) score zero.
	Scan(query []float32) ([]ItemScore, []entities.MenuItem)

	// Items returns the current corpus snapshot.
	Items() []entities.MenuItem

	// Swap atomically replaces the corpus and its embeddings.
	Swap(items []entities.MenuItem, embeddings [][]float32) error

	// Count returns the number of indexed items.
	Count() int
}

// MenuSource loads the menu corpus from its external data source.
type MenuSource interface {
	Load(ctx context.Context) ([]entities.MenuItem, error)
}

// EmbeddingCache persists item embeddings between restarts.
// A cache whose row count differs from the corpus size is stale and ignored.
type EmbeddingCache interface {
	// Load returns cached embeddings, or ok=false when the cache is absent
	// or does not match the expected corpus size.
	Load(expectCount int) (embeddings [][]float32, ok bool)

	// Save persists embeddings aligned positionally with the corpus.
	Save(embeddings [][]float32) error

	// Exists reports whether a cache file is present.
	Exists() bool
}

// SessionStore owns all session records. Exchanges are append-only, trimmed
// from the oldest end at the history cap, and whole sessions are evicted
// once their latest exchange passes the staleness window.
type SessionStore interface {
	// Context returns up to maxHistory recent exchanges formatted as
	// alternating turns, or "" for an unknown or empty session.
	Context(sessionID string, maxHistory int) string

	// Append records one exchange, creating the session if absent.
	Append(sessionID, userText, assistantText string, now time.Time)

	// History returns a copy of the session's exchanges, oldest first.
	History(sessionID string) []entities.Exchange

	// EvictStale removes sessions whose latest exchange is older than the
	// staleness window relative to now. Returns the number evicted.
	EvictStale(now time.Time) int

	// Clear removes one session immediately, independent of staleness.
	Clear(sessionID string) bool

	// ActiveCount returns the number of live sessions.
	ActiveCount() int
}

// SessionArchive is the optional durable record of session histories.
// Writes are best-effort; a failed save must never fail a request.
type SessionArchive interface {
	// LoadAll returns every archived session history.
	LoadAll(ctx context.Context) (map[string][]entities.Exchange, error)

	// SaveSession rewrites one session's archived history.
	SaveSession(ctx context.Context, sessionID string, history []entities.Exchange) error

	// DeleteSession removes one session from the archive.
	DeleteSession(ctx context.Context, sessionID string) error
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
