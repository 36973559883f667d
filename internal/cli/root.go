// Package cli implements the nutrichat CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "nutrichat",
	Short: "Retrieval-augmented nutrition chat backend for the McDonald's menu",
	Long: "nutrichat answers natural-language nutrition questions about a fixed menu.\n" +
		"It retrieves the most relevant items by embedding similarity and composes a\n" +
		"grounded answer, via a local LLM when configured or a deterministic fallback.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	RootCmd.AddCommand(serveCmd, askCmd, warmCmd)
}
