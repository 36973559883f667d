// Package sessionstore provides session history adapters.
// Clean Architecture: Adapters implementing ports.SessionStore and
// ports.SessionArchive. The memory store exclusively owns all live session
// records; the SQLite archive is the optional durability layer.
package sessionstore

import (
	"strings"
	"sync"
	"time"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
)

const (
	// historyCap is the maximum number of retained exchanges per session.
	historyCap = 10

	// staleAfter is the staleness window: a session whose latest exchange is
	// older than this is evicted wholesale.
	staleAfter = time.Hour

	// contextAssistantLen bounds assistant text in the formatted context to
	// keep prompt size in check.
	contextAssistantLen = 150
)

// session serializes read-modify-append per session id. Requests for
// different sessions never block each other.
type session struct {
	mu        sync.Mutex
	exchanges []entities.Exchange
}

// MemoryStore is the in-memory session store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewMemoryStore creates an empty session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*session)}
}

// Restore seeds the store from archived histories, trimming to the cap.
func (s *MemoryStore) Restore(histories map[string][]entities.Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, history := range histories {
		if len(history) == 0 {
			continue
		}
		if len(history) > historyCap {
			history = history[len(history)-historyCap:]
		}
		s.sessions[id] = &session{exchanges: append([]entities.Exchange(nil), history...)}
	}
}

// Context returns the most recent maxHistory exchanges formatted as
// alternating user/assistant turns, or "" for an unknown or empty session.
func (s *MemoryStore) Context(sessionID string, maxHistory int) string {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return ""
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(sess.exchanges) == 0 {
		return ""
	}
	if maxHistory <= 0 {
		maxHistory = 3
	}

	recent := sess.exchanges
	if len(recent) > maxHistory {
		recent = recent[len(recent)-maxHistory:]
	}

	var sb strings.Builder
	for _, ex := range recent {
		sb.WriteString("Pengguna: " + ex.UserText + "\n")
		sb.WriteString("Asisten: " + truncate(ex.AssistantText, contextAssistantLen) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Append records one exchange at the tail, creating the session if absent,
// then trims the history to the cap from the oldest end.
func (s *MemoryStore) Append(sessionID, userText, assistantText string, now time.Time) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.exchanges = append(sess.exchanges, entities.Exchange{
		UserText:      userText,
		AssistantText: assistantText,
		At:            now,
	})
	if len(sess.exchanges) > historyCap {
		sess.exchanges = sess.exchanges[len(sess.exchanges)-historyCap:]
	}
}

// History returns a copy of the session's exchanges, oldest first.
func (s *MemoryStore) History(sessionID string) []entities.Exchange {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return append([]entities.Exchange(nil), sess.exchanges...)
}

// EvictStale removes sessions whose latest exchange is older than the
// staleness window relative to now. Returns the number evicted.
func (s *MemoryStore) EvictStale(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		stale := len(sess.exchanges) == 0 ||
			now.Sub(sess.exchanges[len(sess.exchanges)-1].At) > staleAfter
		sess.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Clear removes one session immediately. Reports whether it existed.
func (s *MemoryStore) Clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}

// ActiveCount returns the number of live sessions.
func (s *MemoryStore) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
