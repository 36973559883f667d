// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// MenuItem represents one sellable product with its tracked nutrition fields.
// JSON tags match the corpus file and the API contract of the original service.
type MenuItem struct {
	Name     string  `json:"nama_menu"`
	Category string  `json:"kategori"`
	Calories float64 `json:"Kalori"`
	SugarG   float64 `json:"Gula"`
	SodiumMg float64 `json:"Garam"`
	FatG     float64 `json:"Lemak"`
}

// ZeroNutrition reports whether every tracked field is zero.
// Such entries (plain water and the like) are placeholders and must never
// be surfaced as informative answers.
func (m MenuItem) ZeroNutrition() bool {
	return m.Calories == 0 && m.SugarG == 0 && m.SodiumMg == 0 && m.FatG == 0
}

// RetrievalResult pairs a menu item with its post-boost similarity score.
type RetrievalResult struct {
	Item  MenuItem
	Score float64
}

// Exchange is one user/assistant turn in a session history.
type Exchange struct {
	UserText      string
	AssistantText string
	At            time.Time
}

// ChatResult is the answer to one chat cycle.
type ChatResult struct {
	Response      string     `json:"response"`
	RelevantItems []MenuItem `json:"relevant_items"`
	SessionID     string     `json:"session_id"`
}

// IntentTags is the structured output of the keyword intent classifier.
// Best-effort heuristic; a tag set, not a guarantee.
type IntentTags struct {
	Diet       bool
	MuscleGain bool
	Condition  bool
	MealTiming bool
	MacroPref  bool
}

// Any reports whether at least one intent was detected.
func (t IntentTags) Any() bool {
	return t.Diet || t.MuscleGain || t.Condition || t.MealTiming || t.MacroPref
}

// Labels returns the detected tags as human-readable labels for the prompt.
func (t IntentTags) Labels() []string {
	var labels []string
	if t.Diet {
		labels = append(labels, "sedang diet / menurunkan berat badan")
	}
	if t.MuscleGain {
		labels = append(labels, "ingin menambah massa otot")
	}
	if t.Condition {
		labels = append(labels, "menyebut kondisi kesehatan (diabetes/hipertensi/kolesterol)")
	}
	if t.MealTiming {
		labels = append(labels, "bertanya soal waktu makan")
	}
	if t.MacroPref {
		labels = append(labels, "punya preferensi kandungan gizi tertentu")
	}
	return labels
}

// HealthStatus is the process/component status snapshot served by /api/health.
type HealthStatus struct {
	Status           string `json:"status"`
	MenuItems        int    `json:"menu_items"`
	EmbeddingCache   bool   `json:"embedding_cache"`
	OracleConfigured bool   `json:"oracle_configured"`
	ActiveSessions   int    `json:"active_sessions"`
}
