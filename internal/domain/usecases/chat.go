// Package usecases - chat.go wires retrieval, session context and composition
// into one request/response cycle.
package usecases

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/ports"
)

const (
	// DefaultTopK and DefaultThreshold are the per-request retrieval knobs.
	DefaultTopK      = 3
	DefaultThreshold = 0.25

	// contextMaxHistory bounds how many prior exchanges feed the prompt.
	contextMaxHistory = 3

	minQueryLen = 2

	shortQueryResponse = "Pertanyaan Anda terlalu pendek. Coba tanyakan tentang menu tertentu, misalnya \"berapa kalori Big Mac?\""
)

// ChatService is the per-request orchestrator. No persistent state across
// requests except via the session store.
type ChatService struct {
	retriever *Retriever
	composer  *Composer
	sessions  ports.SessionStore
	archive   ports.SessionArchive
	index     ports.MenuIndex
	cache     ports.EmbeddingCache
	llm       ports.GenerationService
	topK      int
	threshold float64
	now       func() time.Time
}

// NewChatService creates the orchestrator with injected dependencies.
func NewChatService(
	retriever *Retriever,
	composer *Composer,
	sessions ports.SessionStore,
	archive ports.SessionArchive,
	index ports.MenuIndex,
	cache ports.EmbeddingCache,
	llm ports.GenerationService,
) *ChatService {
	return &ChatService{
		retriever: retriever,
		composer:  composer,
		sessions:  sessions,
		archive:   archive,
		index:     index,
		cache:     cache,
		llm:       llm,
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
		now:       time.Now,
	}
}

// Chat runs one full request cycle. Domain-expected failures (short input,
// empty retrieval, oracle failure) are absorbed into normal responses; only
// unexpected faults return an error.
func (s *ChatService) Chat(ctx context.Context, message, sessionID string) (*entities.ChatResult, error) {
	now := s.now()
	s.sessions.EvictStale(now)

	if sessionID == "" {
		sessionID = "default"
	}

	if utf8.RuneCountInString(strings.TrimSpace(message)) < minQueryLen {
		return &entities.ChatResult{
			Response:      shortQueryResponse,
			RelevantItems: []entities.MenuItem{},
			SessionID:     sessionID,
		}, nil
	}

	results, err := s.retriever.Retrieve(ctx, message, s.topK, s.threshold)
	if err != nil {
		return nil, err
	}

	// Nothing cleared the threshold: templated suggestions, no oracle call,
	// and the turn is not recorded so unanswered queries don't crowd out
	// grounded exchanges from the bounded history.
	if len(results) == 0 {
		return &entities.ChatResult{
			Response:      s.composer.NoMatchResponse(),
			RelevantItems: []entities.MenuItem{},
			SessionID:     sessionID,
		}, nil
	}

	convoContext := s.sessions.Context(sessionID, contextMaxHistory)
	answer := s.composer.Compose(ctx, message, results, convoContext)
	s.sessions.Append(sessionID, message, answer, now)
	s.persistSession(sessionID)

	items := make([]entities.MenuItem, len(results))
	for i, r := range results {
		items[i] = r.Item
	}
	return &entities.ChatResult{
		Response:      answer,
		RelevantItems: items,
		SessionID:     sessionID,
	}, nil
}

// persistSession archives the session history best-effort, off the request
// path. A failed save never fails the request.
func (s *ChatService) persistSession(sessionID string) {
	history := s.sessions.History(sessionID)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.archive.SaveSession(ctx, sessionID, history); err != nil {
			log.Printf("[WARN] archiving session %q: %v", sessionID, err)
		}
	}()
}

// Menu returns the full corpus snapshot.
func (s *ChatService) Menu() []entities.MenuItem {
	return s.index.Items()
}

// MenuByCategory filters the corpus by case-insensitive exact category match.
func (s *ChatService) MenuByCategory(category string) []entities.MenuItem {
	items := []entities.MenuItem{}
	for _, item := range s.index.Items() {
		if strings.EqualFold(item.Category, category) {
			items = append(items, item)
		}
	}
	return items
}

// Popular returns limit randomly sampled non-zero-nutrition items.
func (s *ChatService) Popular(limit int) []entities.MenuItem {
	if limit <= 0 {
		limit = 5
	}
	return s.composer.SampleMenu(limit)
}

// ClearSession removes a session's history immediately, independent of the
// staleness window, in both the live store and the archive.
func (s *ChatService) ClearSession(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		sessionID = "default"
	}
	cleared := s.sessions.Clear(sessionID)
	if err := s.archive.DeleteSession(ctx, sessionID); err != nil {
		log.Printf("[WARN] clearing archived session %q: %v", sessionID, err)
	}
	return cleared
}

// Health reports the component status snapshot.
func (s *ChatService) Health() entities.HealthStatus {
	return entities.HealthStatus{
		Status:           "ok",
		MenuItems:        s.index.Count(),
		EmbeddingCache:   s.cache.Exists(),
		OracleConfigured: s.llm.Available(),
		ActiveSessions:   s.sessions.ActiveCount(),
	}
}
