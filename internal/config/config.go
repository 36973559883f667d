// Package config loads the application configuration.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	CORSOrigin string `yaml:"cors_origin"`
}

// DataConfig holds file paths for the corpus, cache and session archive.
type DataConfig struct {
	MenuPath       string `yaml:"menu_path"`
	EmbedCachePath string `yaml:"embed_cache_path"`
	SessionsDBPath string `yaml:"sessions_db_path"`
	PersistEnabled bool   `yaml:"persist_sessions"`
	WatchMenu      bool   `yaml:"watch_menu"`
}

// EmbedderConfig configures the embedding oracle.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeneratorConfig configures the generation oracle.
type GeneratorConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
}

// Load reads a config from the given path. A missing file yields defaults.
// Environment variables override file values afterwards.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{Addr: ":8000", CORSOrigin: "http://localhost:3000"},
		Data: DataConfig{
			MenuPath:       "data/mcd_nutrition.json",
			EmbedCachePath: "data/menu_embeddings.json",
			SessionsDBPath: "data/sessions.db",
			PersistEnabled: true,
			WatchMenu:      true,
		},
		Embedder:  EmbedderConfig{BaseURL: "http://localhost:11434", Model: "nomic-embed-text", TimeoutSecs: 60},
		Generator: GeneratorConfig{Enabled: true, BaseURL: "http://localhost:11434", Model: "llama3.2", TimeoutSecs: 120},
	}
}

func applyDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Data.MenuPath == "" {
		cfg.Data.MenuPath = def.Data.MenuPath
	}
	if cfg.Data.EmbedCachePath == "" {
		cfg.Data.EmbedCachePath = def.Data.EmbedCachePath
	}
	if cfg.Data.SessionsDBPath == "" {
		cfg.Data.SessionsDBPath = def.Data.SessionsDBPath
	}
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = def.Embedder.BaseURL
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = def.Embedder.TimeoutSecs
	}
	if cfg.Generator.BaseURL == "" {
		cfg.Generator.BaseURL = def.Generator.BaseURL
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = def.Generator.Model
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = def.Generator.TimeoutSecs
	}
}

// applyEnvOverrides lets deployment environments override the file without
// editing it, matching the original service's env-driven setup.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("NUTRICHAT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("NUTRICHAT_CORS_ORIGIN"); v != "" {
		cfg.Server.CORSOrigin = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.Embedder.BaseURL = v
		cfg.Generator.BaseURL = v
	}
	if v := os.Getenv("NUTRICHAT_MENU_PATH"); v != "" {
		cfg.Data.MenuPath = v
	}
	if v := os.Getenv("NUTRICHAT_GENERATION"); v != "" {
		cfg.Generator.Enabled = v == "1" || v == "true" || v == "on"
	}
}
