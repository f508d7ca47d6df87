// Package config manages the TOML configuration for dataset builds.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/lexibase/senselink/pkg/fetch"
	"github.com/lexibase/senselink/pkg/match"
	"github.com/lexibase/senselink/pkg/wiktextract"
)

// Config holds every tunable of a run.
type Config struct {
	Fetch   FetchConfig   `toml:"fetch"`
	Extract ExtractConfig `toml:"extract"`
	Match   MatchConfig   `toml:"match"`
	Export  ExportConfig  `toml:"export"`
}

// FetchConfig controls the dump download.
type FetchConfig struct {
	URL            string `toml:"url"`
	ChunkSize      int    `toml:"chunk_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ExtractConfig controls sense and quotation filtering.
type ExtractConfig struct {
	MinimumYear int    `toml:"minimum_year"`
	MaximumYear int    `toml:"maximum_year"`
	GlossEnd    string `toml:"gloss_end"`
}

// GlossEndOption maps the configured string onto the extractor's enum.
// Anything but "first" keeps the default last-gloss behavior.
func (c ExtractConfig) GlossEndOption() wiktextract.GlossEnd {
	if strings.EqualFold(c.GlossEnd, "first") {
		return wiktextract.FirstGloss
	}
	return wiktextract.LastGloss
}

// MatchConfig controls the embedding provider and the confidence gates.
type MatchConfig struct {
	Provider  string  `toml:"provider"`
	Model     string  `toml:"model"`
	Device    string  `toml:"device"`
	Endpoint  string  `toml:"endpoint"`
	Dimension int     `toml:"dimension"`
	Workers   int     `toml:"workers"`
	Threshold float64 `toml:"threshold"`
	Gap       float64 `toml:"gap"`
}

// ExportConfig controls the output sink.
type ExportConfig struct {
	BufferSize int `toml:"buffer_size"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	years := wiktextract.DefaultOptions()
	return &Config{
		Fetch: FetchConfig{
			URL:            fetch.DefaultURL,
			ChunkSize:      1 << 20,
			TimeoutSeconds: 60,
		},
		Extract: ExtractConfig{
			MinimumYear: years.MinimumYear,
			MaximumYear: years.MaximumYear,
			GlossEnd:    "last",
		},
		Match: MatchConfig{
			Provider:  "local",
			Model:     "sentence-transformers/all-MiniLM-L6-v2",
			Threshold: match.DefaultThreshold,
			Gap:       match.DefaultGap,
		},
		Export: ExportConfig{
			BufferSize: 1 << 20,
		},
	}
}

// LoadConfig reads path over the defaults, so keys absent from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// InitConfig loads the config at path, writing a default file first when
// none exists. Failing to write the file is not fatal; the defaults are
// used either way.
func InitConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, path); err != nil {
			log.Warnf("could not write default config to %s: %v", path, err)
			return cfg, nil
		}
		log.Debugf("created default config at %s", path)
		return cfg, nil
	}
	return LoadConfig(path)
}

// SaveConfig writes cfg as TOML, creating parent directories as needed.
func SaveConfig(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
