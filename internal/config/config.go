// Package config loads runtime parameters from an optional config file
// (yaml/json/toml by extension) with environment overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the tool.
// Zero values mean "unspecified" and are replaced by defaults in the CLI.
type Config struct {
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir" env:"SUMMARIZATION_MODEL_DIR"`
	BudgetMB  int    `json:"budget_mb" yaml:"budget_mb" toml:"budget_mb" env:"SUMBENCH_BUDGET_MB"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" env:"SUMBENCH_LOG_LEVEL"`
	Addr      string `json:"addr" yaml:"addr" toml:"addr" env:"SUMBENCH_ADDR"`
	EngineCtx int    `json:"engine_ctx" yaml:"engine_ctx" toml:"engine_ctx"`
	Threads   int    `json:"threads" yaml:"threads" toml:"threads"`
}

// Load reads path (when non-empty) and then applies env overrides.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("env overrides: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	case ".json":
		return json.Unmarshal(b, cfg)
	case ".toml":
		return toml.Unmarshal(b, cfg)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
}
