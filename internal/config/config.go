package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "MARKETPULSE_CONFIG"
	listenAddrEnv = "LISTEN_ADDR"
	logLevelEnv   = "LOG_LEVEL"
	apiKeyEnv     = "MARKET_API_KEY"
	apiSecretEnv  = "MARKET_API_SECRET"
	baseURLEnv    = "MARKET_BASE_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Market  MarketConfig  `yaml:"market"`
	Refresh RefreshConfig `yaml:"refresh"`
	Render  RenderConfig  `yaml:"render"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the HTTP listener hosting the push channel.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// MarketConfig wires the upstream exchange API. Key and secret normally come
// from the environment; an empty secret degrades signing rather than failing.
type MarketConfig struct {
	BaseURL   string `yaml:"baseUrl"`
	APIKey    string `yaml:"apiKey"`
	APISecret string `yaml:"apiSecret"`
}

// RefreshConfig defines the polling cadence of the publication loop.
type RefreshConfig struct {
	NewsIntervalSec      int `yaml:"newsIntervalSec"`
	ScreeningIntervalSec int `yaml:"screeningIntervalSec"`
}

// NewsInterval resolves the news refresh cadence.
func (r RefreshConfig) NewsInterval() time.Duration {
	return time.Duration(r.NewsIntervalSec) * time.Second
}

// ScreeningInterval resolves the screening refresh cadence.
func (r RefreshConfig) ScreeningInterval() time.Duration {
	return time.Duration(r.ScreeningIntervalSec) * time.Second
}

// RenderConfig tunes the page rendering context.
type RenderConfig struct {
	TimeoutSec int `yaml:"timeoutSec"`
}

// Timeout resolves the per-page rendering deadline.
func (r RenderConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSec) * time.Second
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillZeroes()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(listenAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(baseURLEnv); v != "" {
		c.Market.BaseURL = v
	}

	if v := os.Getenv(apiKeyEnv); v != "" {
		c.Market.APIKey = v
	}

	if v := os.Getenv(apiSecretEnv); v != "" {
		c.Market.APISecret = v
	}
}

func (c *Config) fillZeroes() {
	def := defaultConfig()

	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = def.Market.BaseURL
	}
	if c.Refresh.NewsIntervalSec <= 0 {
		c.Refresh.NewsIntervalSec = def.Refresh.NewsIntervalSec
	}
	if c.Refresh.ScreeningIntervalSec <= 0 {
		c.Refresh.ScreeningIntervalSec = def.Refresh.ScreeningIntervalSec
	}
	if c.Render.TimeoutSec <= 0 {
		c.Render.TimeoutSec = def.Render.TimeoutSec
	}
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8090"},
		Market:  MarketConfig{BaseURL: "https://api.upmarket.example"},
		Refresh: RefreshConfig{
			NewsIntervalSec:      300,
			ScreeningIntervalSec: 180,
		},
		Render: RenderConfig{TimeoutSec: 25},
	}
}
