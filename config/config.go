package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration, loaded from a YAML file and
// overlaid with environment variables for endpoints, simulation mode and
// agent token costs. API credentials are not part of it.
type Config struct {
	Kraterm  KratermConfig  `yaml:"kraterm"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Symbols  []string       `yaml:"symbols"`
	Channels ChannelsConfig `yaml:"channels"`
	Auth     AuthConfig     `yaml:"auth"`
	Book     BookConfig     `yaml:"book"`
	Agent    AgentConfig    `yaml:"agent"`
	Risk     RiskConfig     `yaml:"risk"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// MetricsConfig controls the Prometheus HTTP exporter.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// KratermConfig carries basic service identity used for logging and metrics.
type KratermConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ExchangeConfig names the REST and WebSocket endpoints for the exchange.
// Defaults match Kraken's v2 API; values are overridable for simulation.
type ExchangeConfig struct {
	RESTBaseURL  string `yaml:"rest_base_url"`
	WSPublicURL  string `yaml:"ws_public_url"`
	WSPrivateURL string `yaml:"ws_private_url"`
	Simulate     bool   `yaml:"simulate"`
}

// ChannelsConfig sizes the event bus and command channels.
type ChannelsConfig struct {
	BusBuffer     int `yaml:"bus_buffer"`
	CommandBuffer int `yaml:"command_buffer"`
	AgentOutbound int `yaml:"agent_outbound_buffer"`
}

// AuthConfig controls token lifecycle timing.
type AuthConfig struct {
	WarningAfter time.Duration `yaml:"warning_after"`
	RefreshAfter time.Duration `yaml:"refresh_after"`
	HardExpiry   time.Duration `yaml:"hard_expiry"`
}

// BookConfig controls order book engine bounds and resync policy.
type BookConfig struct {
	MaxLevelsPerSide  int           `yaml:"max_levels_per_side"`
	ChecksumDepth     int           `yaml:"checksum_depth"`
	MaxResyncAttempts int           `yaml:"max_resync_attempts"`
	ResyncCooldown    time.Duration `yaml:"resync_cooldown"`
	ResyncDepth       int           `yaml:"resync_depth"`
}

// AgentConfig controls agent subprocess supervision.
type AgentConfig struct {
	Command           []string      `yaml:"command"`
	TickerThrottle    time.Duration `yaml:"ticker_throttle"`
	OutputLineCeiling int           `yaml:"output_line_ceiling"`
	TokenInputCost    float64       `yaml:"token_input_cost"`
	TokenOutputCost   float64       `yaml:"token_output_cost"`
}

// RiskConfig names the on-disk locations of the persisted risk files.
type RiskConfig struct {
	HardLimitsPath  string `yaml:"hard_limits_path"`
	AgentLimitsPath string `yaml:"agent_limits_path"`
}

// LoggingConfig mirrors the logger package's configuration surface.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// LoadConfig reads and validates the YAML configuration at path, applying
// environment variable overlays for exchange endpoints and simulation mode.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverlay(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Exchange: ExchangeConfig{
			RESTBaseURL:  "https://api.kraken.com",
			WSPublicURL:  "wss://ws.kraken.com/v2",
			WSPrivateURL: "wss://ws-auth.kraken.com/v2",
		},
		Symbols: []string{"BTC/USD", "ETH/USD"},
		Metrics: MetricsConfig{
			ListenAddr: ":2112",
		},
		Channels: ChannelsConfig{
			BusBuffer:     512,
			CommandBuffer: 32,
			AgentOutbound: 64,
		},
		Auth: AuthConfig{
			WarningAfter: 9 * time.Minute,
			RefreshAfter: 12 * time.Minute,
			HardExpiry:   15 * time.Minute,
		},
		Book: BookConfig{
			MaxLevelsPerSide:  1000,
			ChecksumDepth:     10,
			MaxResyncAttempts: 3,
			ResyncCooldown:    5 * time.Second,
			ResyncDepth:       25,
		},
		Agent: AgentConfig{
			TickerThrottle:    5 * time.Second,
			OutputLineCeiling: 500,
		},
		Risk: RiskConfig{
			HardLimitsPath:  "risk_limits.json",
			AgentLimitsPath: "agent_risk.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func applyEnvOverlay(cfg *Config) {
	if v := os.Getenv("KRAKEN_REST_URL"); v != "" {
		cfg.Exchange.RESTBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("KRAKEN_WS_PUBLIC_URL"); v != "" {
		cfg.Exchange.WSPublicURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("KRAKEN_WS_PRIVATE_URL"); v != "" {
		cfg.Exchange.WSPrivateURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("KRATERM_SIMULATE"); v != "" {
		cfg.Exchange.Simulate = strings.EqualFold(strings.TrimSpace(v), "true")
	}
	if v := os.Getenv("KRATERM_TOKEN_INPUT_COST"); v != "" {
		if cost, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			cfg.Agent.TokenInputCost = cost
		}
	}
	if v := os.Getenv("KRATERM_TOKEN_OUTPUT_COST"); v != "" {
		if cost, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			cfg.Agent.TokenOutputCost = cost
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Kraterm.Name == "" {
		cfg.Kraterm.Name = "kraterm"
	}
	if cfg.Exchange.RESTBaseURL == "" {
		return fmt.Errorf("exchange.rest_base_url is required")
	}
	if cfg.Exchange.WSPublicURL == "" {
		return fmt.Errorf("exchange.ws_public_url is required")
	}
	if cfg.Exchange.WSPrivateURL == "" {
		return fmt.Errorf("exchange.ws_private_url is required")
	}
	if cfg.Channels.BusBuffer <= 0 {
		return fmt.Errorf("channels.bus_buffer must be greater than 0")
	}
	if cfg.Channels.CommandBuffer <= 0 {
		return fmt.Errorf("channels.command_buffer must be greater than 0")
	}
	if cfg.Auth.RefreshAfter <= cfg.Auth.WarningAfter {
		return fmt.Errorf("auth.refresh_after must be greater than auth.warning_after")
	}
	if cfg.Auth.HardExpiry <= cfg.Auth.RefreshAfter {
		return fmt.Errorf("auth.hard_expiry must be greater than auth.refresh_after")
	}
	if cfg.Book.MaxLevelsPerSide <= 0 {
		return fmt.Errorf("book.max_levels_per_side must be greater than 0")
	}
	if cfg.Book.MaxResyncAttempts <= 0 {
		return fmt.Errorf("book.max_resync_attempts must be greater than 0")
	}
	if cfg.Book.ResyncCooldown <= 0 {
		return fmt.Errorf("book.resync_cooldown must be greater than 0")
	}
	return nil
}
