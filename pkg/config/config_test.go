package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/lexibase/senselink/pkg/wiktextract"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Match.Threshold != 0.75 || cfg.Match.Gap != 0.10 {
		t.Errorf("confidence gates = (%v, %v), want (0.75, 0.10)", cfg.Match.Threshold, cfg.Match.Gap)
	}
	year := time.Now().Year()
	if cfg.Extract.MaximumYear != year || cfg.Extract.MinimumYear != year-25 {
		t.Errorf("year window = [%d, %d], want [%d, %d]",
			cfg.Extract.MinimumYear, cfg.Extract.MaximumYear, year-25, year)
	}
	if cfg.Fetch.URL == "" || cfg.Fetch.ChunkSize != 1<<20 {
		t.Errorf("fetch defaults = %+v", cfg.Fetch)
	}
	if cfg.Extract.GlossEnd != "last" {
		t.Errorf("gloss end = %q, want last", cfg.Extract.GlossEnd)
	}
}

func TestGlossEndOption(t *testing.T) {
	cases := map[string]wiktextract.GlossEnd{
		"first": wiktextract.FirstGloss,
		"FIRST": wiktextract.FirstGloss,
		"last":  wiktextract.LastGloss,
		"":      wiktextract.LastGloss,
		"bogus": wiktextract.LastGloss,
	}
	for in, want := range cases {
		c := ExtractConfig{GlossEnd: in}
		if got := c.GlossEndOption(); got != want {
			t.Errorf("GlossEndOption(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[match]\nthreshold = 0.5\n\n[extract]\ngloss_end = \"first\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Match.Threshold != 0.5 {
		t.Errorf("threshold = %v, want the file's 0.5", cfg.Match.Threshold)
	}
	if cfg.Match.Gap != 0.10 {
		t.Errorf("gap = %v, want the default 0.10", cfg.Match.Gap)
	}
	if cfg.Extract.GlossEnd != "first" {
		t.Errorf("gloss end = %q, want first", cfg.Extract.GlossEnd)
	}
	if cfg.Fetch.URL != DefaultConfig().Fetch.URL {
		t.Errorf("url = %q, want the default", cfg.Fetch.URL)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestInitConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")

	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("init config: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("first init should return defaults, got %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// The second init must read the file it wrote.
	again, err := InitConfig(path)
	if err != nil {
		t.Fatalf("reinit config: %v", err)
	}
	if !reflect.DeepEqual(again, cfg) {
		t.Errorf("reloaded config differs: %+v vs %+v", again, cfg)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Match.Provider = "http"
	cfg.Match.Endpoint = "http://localhost:8080/embed"
	cfg.Export.BufferSize = 4096

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save config: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}
