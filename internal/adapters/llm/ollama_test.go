package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerate_SendsBoundedOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Stream {
			t.Error("streaming must be disabled")
		}
		if req.Options.Temperature != 0.7 || req.Options.NumPredict != 256 {
			t.Errorf("unexpected options: %+v", req.Options)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "Big Mac mengandung 550 kkal.", Done: true})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "llama3.2", 5*time.Second)
	got, err := adapter.Generate(context.Background(), "berapa kalori big mac")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got != "Big Mac mengandung 550 kkal." {
		t.Errorf("response = %q", got)
	}
	if !adapter.Available() {
		t.Error("ollama adapter must report available")
	}
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "llama3.2", 5*time.Second)
	if _, err := adapter.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestDisabled(t *testing.T) {
	var d Disabled
	if d.Available() {
		t.Error("disabled oracle must report unavailable")
	}
	if _, err := d.Generate(context.Background(), "prompt"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
