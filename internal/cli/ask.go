// ask.go runs a single chat cycle from the terminal.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/config"
)

var askSessionID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one nutrition question and print the answer",
	Args:  cobra.MinimumNArgs(1),
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

		question := strings.Join(args, " ")
		result, err := a.chat.Chat(cmd.Context(), question, askSessionID)
		if err != nil {
			return err
		}

		fmt.Println(result.Response)
		if len(result.RelevantItems) > 0 {
			fmt.Println("\nMenu terkait:")
			for _, item := range result.RelevantItems {
				fmt.Printf("  - %s (%s)\n", item.Name, item.Category)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&askSessionID, "session", "s", "cli", "Session id for multi-turn context")
}
