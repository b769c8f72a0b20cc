package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if err := LowResourceConfig().Validate(); err != nil {
		t.Fatalf("Low resource config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ESCAPE_ADDR", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Quote.CacheSize != 5 {
		t.Errorf("Expected cache size 5, got %d", cfg.Quote.CacheSize)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escape.yaml")
	body := []byte("server:\n  addr: \":9000\"\ngame:\n  tick_rate: 250ms\nquote:\n  timeout: 2s\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ESCAPE_DB", "/tmp/other.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Expected :9000, got %q", cfg.Server.Addr)
	}
	if cfg.Game.TickRate != 250*time.Millisecond {
		t.Errorf("Expected 250ms tick, got %s", cfg.Game.TickRate)
	}
	if cfg.Quote.Timeout != 2*time.Second {
		t.Errorf("Expected 2s timeout, got %s", cfg.Quote.Timeout)
	}
	if cfg.Storage.Path != "/tmp/other.db" {
		t.Errorf("Env override ignored, got %q", cfg.Storage.Path)
	}
}

func TestValidateRejectsZeroTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Game.TickRate = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected an error for a zero tick rate")
	}
}

func TestEmptyQuoteURLDisablesQuotes(t *testing.T) {
	t.Setenv("ESCAPE_QUOTE_URL", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Quote.Enabled {
		t.Errorf("Expected quotes disabled")
	}
}
