// Package usecases - compose.go builds the grounded natural-language answer.
//
// Two-path design: the generation oracle is the primary path; a deterministic
// template composer takes over whenever the oracle is unavailable, errors,
// times out, or fails the quality gate. Compose never returns an error - the
// fallback always produces a valid answer.
package usecases

import (
	"context"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/ports"
)

const (
	// minAnswerLen is the quality gate: stripped oracle output shorter than
	// this is treated as a failed generation.
	minAnswerLen = 20

	// Reference daily values used for aggregate percentages.
	refFatG     = 70.0
	refSugarG   = 50.0
	refSodiumMg = 2000.0

	// Per-item thresholds that trigger health tips.
	tipCalories = 600.0
	tipSugarG   = 30.0
	tipSodiumMg = 1000.0
	tipFatG     = 25.0

	maxTips        = 3
	maxSuggestions = 3
)

// detailKeywords flag that the user wants the full nutrition breakdown
// appended to the generated answer.
var detailKeywords = []string{
	"detail", "lengkap", "rinci", "bandingkan", "banding", "vs",
	"nutrisi", "kandungan", "compare",
}

// boilerplatePrefixes are prefixes the oracle tends to prepend; stripped
// before the quality gate.
var boilerplatePrefixes = []string{
	"jawaban:", "answer:", "jawab:", "respon:", "response:",
}

// Composer builds answers from retrieval results, optionally via the
// generation oracle.
type Composer struct {
	llm     ports.GenerationService
	index   ports.MenuIndex
	rngMu   sync.Mutex // *rand.Rand is not safe for concurrent use
	rng     *rand.Rand
	timeout time.Duration
}

// NewComposer creates a Composer. The rng drives suggestion sampling and is
// injected so tests can seed it.
func NewComposer(llm ports.GenerationService, index ports.MenuIndex, rng *rand.Rand, timeout time.Duration) *Composer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Composer{llm: llm, index: index, rng: rng, timeout: timeout}
}

// Compose produces the answer text for a query and its retrieval results.
// convoContext is the formatted prior conversation, possibly empty.
func (c *Composer) Compose(ctx context.Context, query string, results []entities.RetrievalResult, convoContext string) string {
	if !c.llm.Available() {
		return c.Fallback(query, results)
	}

	prompt := c.buildPrompt(query, results, convoContext)

	genCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.llm.Generate(genCtx, prompt)
	if err != nil {
		log.Printf("[WARN] generation oracle failed, using fallback: %v", err)
		return c.Fallback(query, results)
	}

	answer := stripBoilerplate(raw)
	if n := utf8.RuneCountInString(answer); n < minAnswerLen {
		log.Printf("[WARN] oracle answer below quality gate (%d chars), using fallback", n)
		return c.Fallback(query, results)
	}

	var sb strings.Builder
	sb.WriteString(answer)
	if wantsDetail(query) {
		sb.WriteString("\n\n")
		sb.WriteString(detailBlock(results))
	}
	sb.WriteString("\n\n")
	sb.WriteString(healthTips(results))
	return sb.String()
}

// Fallback is the deterministic template composer.
func (c *Composer) Fallback(query string, results []entities.RetrievalResult) string {
	if len(results) == 0 {
		return c.NoMatchResponse()
	}

	top := results[0].Item
	var sb strings.Builder
	sb.WriteString("Berikut informasi nutrisi yang Anda tanyakan:\n\n")
	sb.WriteString("📍 **" + top.Name + "** (" + top.Category + ")\n")
	sb.WriteString("   • Kalori: " + formatNum(top.Calories) + " kkal\n")
	sb.WriteString("   • Gula: " + formatNum(top.SugarG) + " gram\n")
	sb.WriteString("   • Garam: " + formatNum(top.SodiumMg) + " mg\n")
	sb.WriteString("   • Lemak: " + formatNum(top.FatG) + " gram\n\n")
	sb.WriteString(detailBlock(results))
	sb.WriteString("\n\n")
	sb.WriteString(healthTips(results))
	sb.WriteString("\n\nAda menu lain yang ingin Anda tanyakan?")
	return sb.String()
}

// NoMatchResponse is the templated answer when nothing was retrieved,
// with up to 3 randomly sampled non-zero-nutrition items as alternatives.
func (c *Composer) NoMatchResponse() string {
	var sb strings.Builder
	sb.WriteString("Maaf, saya tidak menemukan informasi menu yang sesuai dengan pertanyaan Anda. ")
	sb.WriteString("Bisakah Anda mencoba dengan nama menu yang lebih spesifik?")

	suggestions := c.SampleMenu(maxSuggestions)
	if len(suggestions) > 0 {
		sb.WriteString("\n\nMungkin Anda tertarik dengan menu berikut:\n")
		for _, item := range suggestions {
			sb.WriteString("• " + item.Name + " (" + item.Category + ")\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SampleMenu draws up to limit random non-zero-nutrition items from the
// current corpus snapshot.
func (c *Composer) SampleMenu(limit int) []entities.MenuItem {
	var pool []entities.MenuItem
	for _, item := range c.index.Items() {
		if !item.ZeroNutrition() {
			pool = append(pool, item)
		}
	}
	c.rngMu.Lock()
	c.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	c.rngMu.Unlock()
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// buildPrompt constructs the instruction prompt: persona, grounded nutrition
// context, detected intent, prior conversation, and the query.
func (c *Composer) buildPrompt(query string, results []entities.RetrievalResult, convoContext string) string {
	var sb strings.Builder
	sb.WriteString("Kamu adalah asisten gizi McDonald's yang ramah dan informatif. ")
	sb.WriteString("Jawab dalam bahasa Indonesia. ")
	sb.WriteString("Gunakan HANYA data nutrisi di bawah ini untuk semua klaim angka. ")
	sb.WriteString("Jangan pernah menyebut kandungan yang tidak ada dalam data (misalnya protein atau karbohidrat).\n\n")

	sb.WriteString(nutritionContext(results))

	if tags := DetectIntent(query); tags.Any() {
		sb.WriteString("\nKonteks pengguna yang terdeteksi:\n")
		for _, label := range tags.Labels() {
			sb.WriteString("- " + label + "\n")
		}
	}

	if convoContext != "" {
		sb.WriteString("\nPercakapan sebelumnya:\n")
		sb.WriteString(convoContext)
		sb.WriteString("\n")
	}

	sb.WriteString("\nPertanyaan: ")
	sb.WriteString(query)
	sb.WriteString("\n\nJawaban:")
	return sb.String()
}

// nutritionContext lists each retrieved item plus an aggregate summary with
// percentages of the reference daily values.
func nutritionContext(results []entities.RetrievalResult) string {
	var sb strings.Builder
	sb.WriteString("Informasi menu McDonald's yang relevan:\n\n")

	var sumCal, sumSugar, sumSodium, sumFat float64
	for _, r := range results {
		item := r.Item
		sb.WriteString("- " + item.Name + " (" + item.Category + ")\n")
		sb.WriteString("  Kalori: " + formatNum(item.Calories) + " kkal\n")
		sb.WriteString("  Gula: " + formatNum(item.SugarG) + " gram\n")
		sb.WriteString("  Garam: " + formatNum(item.SodiumMg) + " mg\n")
		sb.WriteString("  Lemak: " + formatNum(item.FatG) + " gram\n\n")

		sumCal += item.Calories
		sumSugar += item.SugarG
		sumSodium += item.SodiumMg
		sumFat += item.FatG
	}

	if n := float64(len(results)); n > 1 {
		sb.WriteString("Ringkasan gabungan " + strconv.Itoa(len(results)) + " menu di atas:\n")
		sb.WriteString("  Total kalori: " + formatNum(sumCal) + " kkal (rata-rata " + formatNum(sumCal/n) + ")\n")
		sb.WriteString("  Total gula: " + formatNum(sumSugar) + " g (" + formatPct(sumSugar, refSugarG) + " dari acuan harian 50 g)\n")
		sb.WriteString("  Total garam: " + formatNum(sumSodium) + " mg (" + formatPct(sumSodium, refSodiumMg) + " dari acuan harian 2000 mg)\n")
		sb.WriteString("  Total lemak: " + formatNum(sumFat) + " g (" + formatPct(sumFat, refFatG) + " dari acuan harian 70 g)\n")
	}
	return sb.String()
}

// detailBlock formats every retrieved item's full nutrition values.
func detailBlock(results []entities.RetrievalResult) string {
	var sb strings.Builder
	sb.WriteString("📊 Rincian nutrisi:\n")
	for _, r := range results {
		item := r.Item
		sb.WriteString("• " + item.Name + " (" + item.Category + "): ")
		sb.WriteString(formatNum(item.Calories) + " kkal, ")
		sb.WriteString("gula " + formatNum(item.SugarG) + " g, ")
		sb.WriteString("garam " + formatNum(item.SodiumMg) + " mg, ")
		sb.WriteString("lemak " + formatNum(item.FatG) + " g\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// healthTips evaluates the per-item thresholds. Each threshold triggers one
// canned tip; tips are deduplicated and capped. If nothing triggers across
// all items, a single balanced-choice affirmation is emitted.
func healthTips(results []entities.RetrievalResult) string {
	seen := make(map[string]bool)
	var tips []string
	add := func(tip string) {
		if !seen[tip] && len(tips) < maxTips {
			seen[tip] = true
			tips = append(tips, tip)
		}
	}

	for _, r := range results {
		item := r.Item
		if item.Calories > tipCalories {
			add("💡 Tips: Menu ini tinggi kalori. Seimbangkan dengan aktivitas fisik ya!")
		}
		if item.SugarG > tipSugarG {
			add("💡 Tips: Kandungan gulanya cukup tinggi. Batasi asupan gula harian Anda.")
		}
		if item.SodiumMg > tipSodiumMg {
			add("💡 Tips: Kandungan garamnya tinggi. Perbanyak minum air putih.")
		}
		if item.FatG > tipFatG {
			add("💡 Tips: Kandungan lemaknya tinggi. Imbangi dengan sayur dan buah.")
		}
	}

	if len(tips) == 0 {
		return "✅ Pilihan yang cukup seimbang untuk dinikmati!"
	}
	return strings.Join(tips, "\n")
}

// wantsDetail reports whether the query asks for a full breakdown.
func wantsDetail(query string) bool {
	return containsAny(strings.ToLower(query), detailKeywords)
}

// stripBoilerplate removes known prefixes the oracle tends to prepend.
func stripBoilerplate(text string) string {
	s := strings.TrimSpace(text)
	for changed := true; changed; {
		changed = false
		for _, prefix := range boilerplatePrefixes {
			if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
				s = strings.TrimSpace(s[len(prefix):])
				changed = true
			}
		}
	}
	return s
}

// formatNum renders a nutrition value without trailing zeros.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPct(v, ref float64) string {
	return strconv.FormatFloat(v/ref*100, 'f', 0, 64) + "%"
}
