// Package usecases - intent.go classifies coarse user intent from keywords.
package usecases

import (
	"strings"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
)

var (
	dietKeywords = []string{
		"diet", "turun berat", "menurunkan berat", "kurus", "langsing",
		"defisit kalori", "weight loss",
	}
	muscleKeywords = []string{
		"otot", "bulking", "massa otot", "muscle", "gym", "latihan beban",
	}
	conditionKeywords = []string{
		"diabetes", "gula darah", "hipertensi", "darah tinggi",
		"kolesterol", "jantung", "asam urat",
	}
	timingKeywords = []string{
		"sarapan", "makan siang", "makan malam", "sebelum olahraga",
		"setelah olahraga", "sebelum tidur", "breakfast", "lunch", "dinner",
	}
	macroKeywords = []string{
		"rendah kalori", "rendah gula", "rendah garam", "rendah lemak",
		"tinggi kalori", "low calorie", "low sugar", "low fat",
	}
)

// DetectIntent scans the query for intent keywords and returns a structured
// tag set. Pure function so the heuristic stays auditable and testable apart
// from text generation.
func DetectIntent(query string) entities.IntentTags {
	q := strings.ToLower(query)
	return entities.IntentTags{
		Diet:       containsAny(q, dietKeywords),
		MuscleGain: containsAny(q, muscleKeywords),
		Condition:  containsAny(q, conditionKeywords),
		MealTiming: containsAny(q, timingKeywords),
		MacroPref:  containsAny(q, macroKeywords),
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
