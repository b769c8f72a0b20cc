// Package config holds the tunable settings of the game server.
// Values come from DefaultConfig, an optional YAML file and then env overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server, storage, game loop and quote settings.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Game    GameConfig    `yaml:"game"`
	Quote   QuoteConfig   `yaml:"quote"`
}

// ServerConfig covers the HTTP/WebSocket listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// Channel buffer sizes
	BroadcastChannelBuffer int `yaml:"broadcast_buffer"`
	ClientSendBuffer       int `yaml:"client_send_buffer"`

	// Minimum gap between two actions of one client
	ActionInterval time.Duration `yaml:"action_interval"`
}

// StorageConfig points at the SQLite file. An empty path keeps everything in memory.
type StorageConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// GameConfig tunes the progression loop.
type GameConfig struct {
	TickRate time.Duration `yaml:"tick_rate"`
}

// QuoteConfig configures the motivational quote lookup shown on completion.
type QuoteConfig struct {
	Enabled   bool          `yaml:"enabled"`
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheSize int           `yaml:"cache_size"`
}

// DefaultQuoteURL is the public quote API used when none is configured.
const DefaultQuoteURL = "https://api.quotable.io/random"

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                   ":8080",
			BroadcastChannelBuffer: 256,
			ClientSendBuffer:       64,
			ActionInterval:         50 * time.Millisecond,
		},
		Storage: StorageConfig{
			Path:         "data/escape.db",
			MaxOpenConns: runtime.NumCPU() * 2,
		},
		Game: GameConfig{
			TickRate: time.Second,
		},
		Quote: QuoteConfig{
			Enabled:   true,
			URL:       DefaultQuoteURL,
			Timeout:   5 * time.Second,
			CacheSize: 5,
		},
	}
}

// LowResourceConfig returns minimal settings for development and tests.
func LowResourceConfig() *Config {
	cfg := DefaultConfig()
	cfg.Server.BroadcastChannelBuffer = 16
	cfg.Server.ClientSendBuffer = 8
	cfg.Storage.Path = ""
	cfg.Storage.MaxOpenConns = 1
	cfg.Quote.Enabled = false
	return cfg
}

// Load reads path on top of the defaults and applies env overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("ESCAPE_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv("ESCAPE_DB"); ok {
		c.Storage.Path = v
	}
	if v, ok := os.LookupEnv("ESCAPE_QUOTE_URL"); ok {
		c.Quote.URL = v
		c.Quote.Enabled = v != ""
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.BroadcastChannelBuffer <= 0 || c.Server.ClientSendBuffer <= 0 {
		return errors.New("config: channel buffers must be positive")
	}
	if c.Game.TickRate <= 0 {
		return fmt.Errorf("config: game.tick_rate must be positive, got %s", c.Game.TickRate)
	}
	if c.Quote.Enabled {
		if c.Quote.URL == "" {
			return errors.New("config: quote.url is required when quotes are enabled")
		}
		if c.Quote.Timeout <= 0 {
			return errors.New("config: quote.timeout must be positive")
		}
	}
	if c.Quote.CacheSize <= 0 {
		return errors.New("config: quote.cache_size must be positive")
	}
	return nil
}
