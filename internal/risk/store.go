package risk

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadHardLimits reads the operator's non-negotiable per-symbol limits.
// The file is treated as read-only: kraterm never writes it.
func LoadHardLimits(path string) (Config, error) {
	return loadConfig(path)
}

// LoadAgentLimits reads the advisory limits communicated to agents,
// which the operator may edit at runtime through SaveAgentLimits.
func LoadAgentLimits(path string) (Config, error) {
	return loadConfig(path)
}

func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read risk config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse risk config %s: %w", path, err)
	}
	if cfg.Symbols == nil {
		cfg.Symbols = make(map[string]SymbolOverrides)
	}
	return cfg, nil
}

// SaveAgentLimits writes cfg to path as pretty-printed JSON, replacing
// the file atomically via a temp-file rename so a crash mid-write never
// leaves a truncated file behind.
func SaveAgentLimits(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode risk config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write risk config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace risk config %s: %w", path, err)
	}
	return nil
}
