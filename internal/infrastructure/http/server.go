// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle. Thin
// plumbing only; every operation delegates to the chat service.
package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/usecases"
)

// Server is the HTTP server for the nutrition chat API.
type Server struct {
	chat       *usecases.ChatService
	addr       string
	corsOrigin string
}

// NewServer creates a new HTTP server.
func NewServer(chat *usecases.ChatService, addr, corsOrigin string) *Server {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Server{chat: chat, addr: addr, corsOrigin: corsOrigin}
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/menu", s.handleMenu)
	mux.HandleFunc("/api/menu/category/", s.handleMenuByCategory)
	mux.HandleFunc("/api/menu/popular", s.handlePopular)
	mux.HandleFunc("/api/session/clear", s.handleClearSession)
	mux.HandleFunc("/api/health", s.handleHealth)

	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.corsMiddleware(loggingMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can be slow
	}

	log.Printf("[INFO] nutrition chat server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

// handleChat processes one chat cycle.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := s.chat.Chat(r.Context(), req.Message, req.SessionID)
	if err != nil {
		log.Printf("[ERROR] chat: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// handleMenu returns all menu items.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	items := s.chat.Menu()
	writeJSON(w, map[string]any{"items": items, "total": len(items)})
}

// handleMenuByCategory returns items whose category matches, case-insensitive.
func (s *Server) handleMenuByCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimPrefix(r.URL.Path, "/api/menu/category/")
	if category == "" {
		http.Error(w, "Category required", http.StatusBadRequest)
		return
	}
	items := s.chat.MenuByCategory(category)
	writeJSON(w, map[string]any{"items": items, "total": len(items)})
}

// handlePopular returns randomly sampled non-zero-nutrition items.
func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	items := s.chat.Popular(limit)
	writeJSON(w, map[string]any{"items": items, "total": len(items)})
}

// handleClearSession removes one session's history immediately.
func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	cleared := s.chat.ClearSession(r.Context(), req.SessionID)
	writeJSON(w, map[string]any{"cleared": cleared, "session_id": req.SessionID})
}

// handleHealth returns the component status snapshot.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.chat.Health())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encoding response: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
