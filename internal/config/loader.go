package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir    string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	StorageDir   string `json:"storage_dir" yaml:"storage_dir" toml:"storage_dir"`
	DefaultModel string `json:"default_model" yaml:"default_model" toml:"default_model"`
	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`

	// Per-handle generation configuration, sanitized at handle construction.
	Accelerator string  `json:"accelerator" yaml:"accelerator" toml:"accelerator"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	TopK        int     `json:"top_k" yaml:"top_k" toml:"top_k"`
	TopP        float64 `json:"top_p" yaml:"top_p" toml:"top_p"`
	Temperature float64 `json:"temperature" yaml:"temperature" toml:"temperature"`

	// Grace period in milliseconds after a cancel before the session manager
	// abandons a stream that ignores interruption. 0 disables the watchdog.
	InterruptGraceMS int `json:"interrupt_grace_ms" yaml:"interrupt_grace_ms" toml:"interrupt_grace_ms"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
