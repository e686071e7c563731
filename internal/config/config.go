package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Penalties maps finding severities to score deductions.
type Penalties struct {
	Info    int `yaml:"info" json:"info"`
	Warning int `yaml:"warning" json:"warning"`
	Error   int `yaml:"error" json:"error"`
}

// Config is the immutable configuration consumed by the analysis engine and
// the surrounding tool. It is assembled once, validated eagerly, and passed
// by value.
type Config struct {
	LineLengthLimit    int       `yaml:"lineLengthLimit" json:"lineLengthLimit"`
	LargeFileLimit     int       `yaml:"largeFileLimit" json:"largeFileLimit"`
	DeletionRatio      float64   `yaml:"deletionRatio" json:"deletionRatio"`
	DeletionMinRemoved int       `yaml:"deletionMinRemoved" json:"deletionMinRemoved"`
	Penalties          Penalties `yaml:"penalties" json:"penalties"`
	DisabledRules      []string  `yaml:"disabledRules,omitempty" json:"disabledRules,omitempty"`
	Workers            int       `yaml:"workers" json:"workers"`
	Format             string    `yaml:"format" json:"format"`
	FailOn             string    `yaml:"failOn" json:"failOn"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		LineLengthLimit:    120,
		LargeFileLimit:     400,
		DeletionRatio:      3.0,
		DeletionMinRemoved: 20,
		Penalties:          Penalties{Info: 1, Warning: 5, Error: 15},
		Workers:            1,
		Format:             "text",
		FailOn:             "none",
	}
}

// Validate rejects out-of-range settings before any diff is processed.
func (c Config) Validate() error {
	if c.LineLengthLimit <= 0 {
		return fmt.Errorf("lineLengthLimit must be positive, got %d", c.LineLengthLimit)
	}
	if c.LargeFileLimit <= 0 {
		return fmt.Errorf("largeFileLimit must be positive, got %d", c.LargeFileLimit)
	}
	if c.DeletionRatio <= 0 {
		return fmt.Errorf("deletionRatio must be positive, got %g", c.DeletionRatio)
	}
	if c.DeletionMinRemoved < 0 {
		return fmt.Errorf("deletionMinRemoved must not be negative, got %d", c.DeletionMinRemoved)
	}
	for name, p := range map[string]int{
		"info":    c.Penalties.Info,
		"warning": c.Penalties.Warning,
		"error":   c.Penalties.Error,
	} {
		if p < 0 || p > 100 {
			return fmt.Errorf("penalty for %s must be in [0,100], got %d", name, p)
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.FailOn {
	case "none", "info", "warning", "error":
	default:
		return fmt.Errorf("failOn must be one of none, info, warning, error; got %q", c.FailOn)
	}
	return nil
}

// RuleEnabled reports whether a rule ID is absent from DisabledRules.
func (c Config) RuleEnabled(id string) bool {
	for _, d := range c.DisabledRules {
		if d == id {
			return false
		}
	}
	return true
}

// Dir returns the platform-appropriate config directory for diffscope.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "diffscope"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "diffscope"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "diffscope"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "diffscope"), nil
	default:
		return filepath.Join(home, ".config", "diffscope"), nil
	}
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// fileConfig mirrors Config with pointers wherever zero is itself a valid
// setting, so an explicit 0 in the file is distinguishable from an absent key.
type fileConfig struct {
	LineLengthLimit    int           `yaml:"lineLengthLimit"`
	LargeFileLimit     int           `yaml:"largeFileLimit"`
	DeletionRatio      float64       `yaml:"deletionRatio"`
	DeletionMinRemoved *int          `yaml:"deletionMinRemoved"`
	Penalties          filePenalties `yaml:"penalties"`
	DisabledRules      []string      `yaml:"disabledRules"`
	Workers            int           `yaml:"workers"`
	Format             string        `yaml:"format"`
	FailOn             string        `yaml:"failOn"`
}

type filePenalties struct {
	Info    *int `yaml:"info"`
	Warning *int `yaml:"warning"`
	Error   *int `yaml:"error"`
}

// loadFileConfig reads the raw file layer from path, or from the default
// location when path is empty. A missing default file is not an error; a
// missing explicit path is.
func loadFileConfig(path string) (fileConfig, bool, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return fileConfig{}, false, err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, false, fmt.Errorf("parsing config file: %w", err)
	}
	return fc, true, nil
}

// LoadFile reads config from path, or from the default location when path is
// empty. Absent keys are left at their zero values.
func LoadFile(path string) (Config, bool, error) {
	fc, found, err := loadFileConfig(path)
	if err != nil || !found {
		return Config{}, found, err
	}
	var cfg Config
	mergeFile(&cfg, fc)
	return cfg, true, nil
}

// Save writes cfg to the default config file location.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags; only set keys apply.
// The result is validated before it is returned.
func Load(filePath string, overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, found, err := loadFileConfig(filePath)
	if err != nil {
		return Config{}, err
	}
	if found {
		mergeFile(&cfg, fileCfg)
	}
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func mergeFile(dst *Config, src fileConfig) {
	if src.LineLengthLimit > 0 {
		dst.LineLengthLimit = src.LineLengthLimit
	}
	if src.LargeFileLimit > 0 {
		dst.LargeFileLimit = src.LargeFileLimit
	}
	if src.DeletionRatio > 0 {
		dst.DeletionRatio = src.DeletionRatio
	}
	if src.DeletionMinRemoved != nil {
		dst.DeletionMinRemoved = *src.DeletionMinRemoved
	}
	if src.Penalties.Info != nil {
		dst.Penalties.Info = *src.Penalties.Info
	}
	if src.Penalties.Warning != nil {
		dst.Penalties.Warning = *src.Penalties.Warning
	}
	if src.Penalties.Error != nil {
		dst.Penalties.Error = *src.Penalties.Error
	}
	if src.DisabledRules != nil {
		dst.DisabledRules = src.DisabledRules
	}
	if src.Workers > 0 {
		dst.Workers = src.Workers
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("DIFFSCOPE_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("DIFFSCOPE_FAIL_ON"); v != "" {
		cfg.FailOn = v
	}
	if v := os.Getenv("DIFFSCOPE_LINE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LineLengthLimit = n
		}
	}
	if v := os.Getenv("DIFFSCOPE_LARGE_FILE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LargeFileLimit = n
		}
	}
	if v := os.Getenv("DIFFSCOPE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["failOn"]; ok && v != "" {
		cfg.FailOn = v
	}
	if v, ok := overrides["lineLength"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LineLengthLimit = n
		}
	}
	if v, ok := overrides["largeFile"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LargeFileLimit = n
		}
	}
	if v, ok := overrides["deletionRatio"]; ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DeletionRatio = f
		}
	}
	if v, ok := overrides["workers"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
}
