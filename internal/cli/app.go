// app.go wires adapters into the chat service for every command.
package cli

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/adapters/embedcache"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/adapters/embedding"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/adapters/llm"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/adapters/menudata"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/adapters/menuindex"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/adapters/sessionstore"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/config"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/ports"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/usecases"
)

// app holds the wired object graph for one process.
type app struct {
	cfg      *config.AppConfig
	chat     *usecases.ChatService
	source   *menudata.JSONSource
	cache    *embedcache.FileCache
	embedder ports.EmbeddingService
	index    *menuindex.MemoryIndex
	archive  ports.SessionArchive
	closers  []func() error
}

// buildApp loads the corpus, resolves the embedding cache, selects the
// generation oracle variant, restores archived sessions and assembles the
// chat service.
func buildApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	a := &app{
		cfg:      cfg,
		source:   menudata.NewJSONSource(cfg.Data.MenuPath),
		cache:    embedcache.NewFileCache(cfg.Data.EmbedCachePath),
		embedder: embedding.NewOllamaAdapter(cfg.Embedder.BaseURL, cfg.Embedder.Model, time.Duration(cfg.Embedder.TimeoutSecs)*time.Second),
		index:    menuindex.NewMemoryIndex(),
	}

	if err := a.reloadCorpus(ctx); err != nil {
		return nil, err
	}

	var generator ports.GenerationService = llm.Disabled{}
	if cfg.Generator.Enabled {
		generator = llm.NewOllamaAdapter(cfg.Generator.BaseURL, cfg.Generator.Model, time.Duration(cfg.Generator.TimeoutSecs)*time.Second)
		log.Printf("[INFO] generation oracle configured (model %s)", cfg.Generator.Model)
	} else {
		log.Printf("[INFO] generation oracle disabled, deterministic composer only")
	}

	sessions := sessionstore.NewMemoryStore()
	a.archive = sessionstore.NoopArchive{}
	if cfg.Data.PersistEnabled {
		archive, err := sessionstore.NewSQLiteArchive(cfg.Data.SessionsDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening session archive: %w", err)
		}
		a.archive = archive
		a.closers = append(a.closers, archive.Close)

		histories, err := archive.LoadAll(ctx)
		if err != nil {
			log.Printf("[WARN] loading archived sessions: %v", err)
		} else if len(histories) > 0 {
			sessions.Restore(histories)
			log.Printf("[INFO] restored %d archived sessions", len(histories))
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	composer := usecases.NewComposer(generator, a.index, rng, time.Duration(cfg.Generator.TimeoutSecs)*time.Second)
	retriever := usecases.NewRetriever(a.embedder, a.index)
	a.chat = usecases.NewChatService(retriever, composer, sessions, a.archive, a.index, a.cache, generator)

	return a, nil
}

// reloadCorpus loads the menu, resolves embeddings (cache or oracle) and
// swaps the new snapshot into the index.
func (a *app) reloadCorpus(ctx context.Context) error {
	items, err := a.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading menu corpus: %w", err)
	}

	embeddings, ok := a.cache.Load(len(items))
	if !ok {
		log.Printf("[INFO] computing embeddings for %d menu items...", len(items))
		texts := make([]string, len(items))
		for i, item := range items {
			texts[i] = menudata.EmbedText(item)
		}
		embeddings, err = a.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding menu corpus: %w", err)
		}
		if err := a.cache.Save(embeddings); err != nil {
			log.Printf("[WARN] saving embedding cache: %v", err)
		}
	} else {
		log.Printf("[INFO] loaded %d cached embeddings", len(embeddings))
	}

	return a.index.Swap(items, embeddings)
}

// warmCache recomputes every embedding from the oracle and rewrites the
// cache, ignoring any existing cache file.
func (a *app) warmCache(ctx context.Context) error {
	items, err := a.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading menu corpus: %w", err)
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = menudata.EmbedText(item)
	}
	embeddings, err := a.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding menu corpus: %w", err)
	}
	if err := a.cache.Save(embeddings); err != nil {
		return fmt.Errorf("saving embedding cache: %w", err)
	}
	return a.index.Swap(items, embeddings)
}

func (a *app) close() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			log.Printf("[WARN] closing: %v", err)
		}
	}
}
