package sessionstore

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
)

func TestMemoryStore_HistoryCap(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()

	for i := 0; i < 11; i++ {
		store.Append("sess", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i), base.Add(time.Duration(i)*time.Second))
	}

	history := store.History("sess")
	if len(history) != 10 {
		t.Fatalf("expected history capped at 10, got %d", len(history))
	}
	if history[0].UserText != "q1" {
		t.Errorf("oldest exchange should have been trimmed, got %q first", history[0].UserText)
	}
	if history[9].UserText != "q10" {
		t.Errorf("newest exchange missing, got %q last", history[9].UserText)
	}
}

func TestMemoryStore_ContextFormatting(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.Append("sess", "berapa kalori big mac", "Big Mac punya 550 kkal", now)
	store.Append("sess", "kalau gulanya", "Gulanya 9 gram", now)

	got := store.Context("sess", 3)
	want := "Pengguna: berapa kalori big mac\n" +
		"Asisten: Big Mac punya 550 kkal\n" +
		"Pengguna: kalau gulanya\n" +
		"Asisten: Gulanya 9 gram"
	if got != want {
		t.Errorf("context = %q, want %q", got, want)
	}
}

func TestMemoryStore_ContextWindowAndTruncation(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	long := strings.Repeat("x", 400)
	for i := 0; i < 5; i++ {
		store.Append("sess", fmt.Sprintf("q%d", i), long, now)
	}

	got := store.Context("sess", 3)
	if strings.Count(got, "Pengguna:") != 3 {
		t.Errorf("expected 3 turns in context, got %d", strings.Count(got, "Pengguna:"))
	}
	if strings.Contains(got, "q0") || strings.Contains(got, "q1") {
		t.Error("context should only include the most recent turns")
	}
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "Asisten: ") && len([]rune(line)) > len("Asisten: ")+150 {
			t.Errorf("assistant text not truncated to 150 chars: %d", len([]rune(line)))
		}
	}
}

func TestMemoryStore_ContextUnknownSession(t *testing.T) {
	store := NewMemoryStore()
	if got := store.Context("nobody", 3); got != "" {
		t.Errorf("unknown session should yield empty context, got %q", got)
	}
}

func TestMemoryStore_StalenessEviction(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	store.Append("stale", "q", "a", now.Add(-61*time.Minute))
	store.Append("fresh", "q", "a", now.Add(-59*time.Minute))

	evicted := store.EvictStale(now)
	if evicted != 1 {
		t.Errorf("expected 1 evicted session, got %d", evicted)
	}
	if len(store.History("stale")) != 0 {
		t.Error("session 61 minutes old should be evicted")
	}
	if len(store.History("fresh")) != 1 {
		t.Error("session 59 minutes old should remain")
	}
}

func TestMemoryStore_EvictionUsesLatestExchange(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	// Old first exchange but a recent one keeps the session alive.
	store.Append("sess", "q1", "a1", now.Add(-3*time.Hour))
	store.Append("sess", "q2", "a2", now.Add(-5*time.Minute))

	if evicted := store.EvictStale(now); evicted != 0 {
		t.Errorf("session with a recent exchange must survive, evicted %d", evicted)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	store.Append("sess", "q", "a", time.Now())

	if !store.Clear("sess") {
		t.Error("clearing an existing session should report true")
	}
	if store.Clear("sess") {
		t.Error("clearing a missing session should report false")
	}
	if store.ActiveCount() != 0 {
		t.Errorf("expected no sessions, got %d", store.ActiveCount())
	}
}

func TestMemoryStore_Restore(t *testing.T) {
	store := NewMemoryStore()
	source := NewMemoryStore()
	base := time.Now()
	for i := 0; i < 12; i++ {
		source.Append("sess", fmt.Sprintf("q%d", i), "a", base)
	}

	store.Restore(map[string][]entities.Exchange{"sess": source.History("sess")})

	if got := len(store.History("sess")); got != 10 {
		t.Errorf("restore should trim to the cap, got %d", got)
	}
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.Append(fmt.Sprintf("sess-%d", n%5), "q", "a", now)
		}(i)
	}
	wg.Wait()

	if store.ActiveCount() != 5 {
		t.Errorf("expected 5 sessions, got %d", store.ActiveCount())
	}
	if got := len(store.History("sess-0")); got != 10 {
		t.Errorf("expected capped history of 10, got %d", got)
	}
}
