package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pushchain/memo-clients/memoClient/constant"
	"github.com/spf13/cast"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	if cfg.NodeHome == "" {
		cfg.NodeHome = constant.DefaultNodeHome
	}

	// Compute budget defaults
	if cfg.ComputeUnitMargin == 0 {
		cfg.ComputeUnitMargin = constant.DefaultComputeUnitMargin
	}
	if cfg.ComputeUnitMargin < constant.MinComputeUnitMargin || cfg.ComputeUnitMargin > constant.MaxComputeUnitMargin {
		return fmt.Errorf("compute unit margin must be between %.2f and %.2f", constant.MinComputeUnitMargin, constant.MaxComputeUnitMargin)
	}
	if cfg.LightSimulationCU == 0 {
		cfg.LightSimulationCU = constant.LightSimulationCULimit
	}
	if cfg.HeavySimulationCU == 0 {
		cfg.HeavySimulationCU = constant.HeavySimulationCULimit
	}
	if cfg.LightFallbackCU == 0 {
		cfg.LightFallbackCU = constant.DefaultLightCULimit
	}
	if cfg.HeavyFallbackCU == 0 {
		cfg.HeavyFallbackCU = constant.DefaultHeavyCULimit
	}
	for _, limit := range []uint32{cfg.LightSimulationCU, cfg.HeavySimulationCU, cfg.LightFallbackCU, cfg.HeavyFallbackCU} {
		if limit > constant.MaxComputeUnitLimit {
			return fmt.Errorf("compute unit limits must not exceed %d", constant.MaxComputeUnitLimit)
		}
	}

	// Submission defaults
	if cfg.ConfirmTimeoutSeconds == 0 {
		cfg.ConfirmTimeoutSeconds = 60
	}
	if cfg.ConfirmPollIntervalMs == 0 {
		cfg.ConfirmPollIntervalMs = 500
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoffMs == 0 {
		cfg.RetryBackoffMs = 500
	}

	if cfg.RunLogDir == "" {
		cfg.RunLogDir = filepath.Join(cfg.NodeHome, constant.DatabasesSubdir)
	}

	if cfg.GuardrailMaxMints == 0 {
		cfg.GuardrailMaxMints = 1000
	}

	return nil
}

// ApplyEnv overrides fields from the environment. getenv is os.Getenv in
// production.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if raw := getenv(constant.EnvComputeUnitMargin); raw != "" {
		margin, err := cast.ToFloat64E(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constant.EnvComputeUnitMargin, err)
		}
		cfg.ComputeUnitMargin = margin
	}
	if raw := getenv(constant.EnvLogLevel); raw != "" {
		level, err := cast.ToIntE(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constant.EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}
	return validateConfig(cfg)
}

// Save writes the given config to <basePath>/config/memoclient_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, constant.ConfigSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, constant.ConfigFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads the config from <basePath>/config/memoclient_config.json and
// applies defaults.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, constant.ConfigSubdir, constant.ConfigFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.NodeHome == "" {
		cfg.NodeHome = basePath
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads the config under basePath, falling back to the
// embedded defaults when no file exists there.
func LoadOrDefault(basePath string) (Config, error) {
	cfg, err := Load(basePath)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	def, err := LoadDefaultConfig()
	if err != nil {
		return Config{}, err
	}
	def.NodeHome = basePath
	if err := validateConfig(def); err != nil {
		return Config{}, err
	}
	return *def, nil
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return &cfg, nil
}
