package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/cli"
)

func main() {
	// Missing .env is fine; config falls back to file values and defaults.
	_ = godotenv.Load()

	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
