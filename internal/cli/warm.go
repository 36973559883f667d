// warm.go precomputes the embedding cache without serving.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/config"
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Recompute and persist the menu embedding cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.warmCache(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("Embedding cache rebuilt for %d menu items at %s\n", a.index.Count(), cfg.Data.EmbedCachePath)
		return nil
	},
}
