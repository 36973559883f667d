// serve.go runs the HTTP API, with optional corpus hot-reload.
package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/richbruh/nutrition-mcd-chatbot/internal/adapters/filewatcher"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/config"
	"github.com/richbruh/nutrition-mcd-chatbot/internal/domain/ports"
	httpinfra "github.com/richbruh/nutrition-mcd-chatbot/internal/infrastructure/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the nutrition chat HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		if cfg.Data.WatchMenu {
			if err := watchCorpus(ctx, a); err != nil {
				log.Printf("[WARN] corpus watcher unavailable: %v", err)
			}
		}

		server := httpinfra.NewServer(a.chat, cfg.Server.Addr, cfg.Server.CORSOrigin)
		if err := server.Start(ctx); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// watchCorpus rebuilds the corpus snapshot whenever the menu file changes.
// The rebuild happens off-request; handlers keep scoring against the old
// snapshot until the new one is swapped in.
func watchCorpus(ctx context.Context, a *app) error {
	watcher, err := filewatcher.NewFSNotifyWatcher([]string{".json"})
	if err != nil {
		return err
	}

	menuPath := filepath.Clean(a.cfg.Data.MenuPath)
	events, err := watcher.Watch(ctx, filepath.Dir(menuPath))
	if err != nil {
		watcher.Stop()
		return err
	}

	go func() {
		defer watcher.Stop()
		for event := range events {
			if filepath.Clean(event.Path) != menuPath {
				continue
			}
			if event.Operation != ports.FileModified && event.Operation != ports.FileCreated {
				continue
			}
			log.Printf("[INFO] menu data changed, rebuilding corpus...")
			if err := a.reloadCorpus(ctx); err != nil {
				log.Printf("[ERROR] corpus reload failed, keeping previous snapshot: %v", err)
				continue
			}
			log.Printf("[INFO] corpus reloaded (%d items)", a.index.Count())
		}
	}()

	return nil
}
