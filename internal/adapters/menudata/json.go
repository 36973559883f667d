// Package menudata loads the menu corpus from its JSON data source.
// Clean Architecture: Adapter implementing ports.MenuSource.
package menudata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/entities"
)

// JSONSource loads menu items from a JSON array file.
type JSONSource struct {
	path string
}

// NewJSONSource creates a loader for the given corpus file.
func NewJSONSource(path string) *JSONSource {
	return &JSONSource{path: path}
}

// Load reads and validates the corpus. Records missing required fields are
// logged as data-integrity warnings; missing numeric fields default to zero.
// Records without a name are dropped - they can never be retrieved by name
// nor reported meaningfully.
func (s *JSONSource) Load(ctx context.Context) ([]entities.MenuItem, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading menu data: %w", err)
	}

	var raw []entities.MenuItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing menu data: %w", err)
	}

	items := make([]entities.MenuItem, 0, len(raw))
	for i, item := range raw {
		if strings.TrimSpace(item.Name) == "" {
			log.Printf("[WARN] menu record %d has no name, skipping", i)
			continue
		}
		if strings.TrimSpace(item.Category) == "" {
			log.Printf("[WARN] menu record %q has no category", item.Name)
		}
		// Guard against negative values from hand-edited data.
		if item.Calories < 0 || item.SugarG < 0 || item.SodiumMg < 0 || item.FatG < 0 {
			log.Printf("[WARN] menu record %q has negative nutrition values, clamping to zero", item.Name)
			item.Calories = max0(item.Calories)
			item.SugarG = max0(item.SugarG)
			item.SodiumMg = max0(item.SodiumMg)
			item.FatG = max0(item.FatG)
		}
		items = append(items, item)
	}

	log.Printf("[INFO] loaded %d menu items from %s", len(items), s.path)
	return items, nil
}

// Path returns the corpus file path, used by the hot-reload watcher.
func (s *JSONSource) Path() string { return s.path }

// EmbedText renders the canonical text embedded for one item. The format is
// stable: changing it invalidates every cached embedding.
func EmbedText(item entities.MenuItem) string {
	return fmt.Sprintf("%s - %s: Kalori: %g, Gula: %gg, Garam: %gmg, Lemak: %gg",
		item.Name, item.Category, item.Calories, item.SugarG, item.SodiumMg, item.FatG)
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
