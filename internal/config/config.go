// Package config provides configuration loading and structs for latexify.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. It is loaded once at startup
// and passed explicitly to the components that need it.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	LLM        LLMConfig        `yaml:"llm"`
	Conversion ConversionConfig `yaml:"conversion"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	UploadDir      string        `yaml:"upload_dir"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LLMConfig holds settings for the remote model used for conversion and editing.
type LLMConfig struct {
	Enabled    *bool         `yaml:"enabled,omitempty"`
	APIKey     string        `yaml:"api_key,omitempty"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	APIVersion string        `yaml:"api_version"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`
	// Strict validates model output before returning it.
	Strict bool `yaml:"strict"`
}

// EnabledOrDefault reports whether the model should be called; defaults to true when unset.
func (c *LLMConfig) EnabledOrDefault() bool {
	if c.Enabled != nil {
		return *c.Enabled
	}
	return true
}

// ConversionConfig holds settings for the model-free fallback.
type ConversionConfig struct {
	DefaultTitle string `yaml:"default_title"`
}

// WatchConfig holds watch-folder settings.
type WatchConfig struct {
	InputDir   string   `yaml:"input_dir"`
	OutputDir  string   `yaml:"output_dir"`
	Extensions []string `yaml:"extensions"`
	Recursive  *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to false when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return false
}

// ConfigurationError reports a setting that prevents the process from starting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// An empty path yields the defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	var cfg Config
	configDir := "."
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		configDir = filepath.Dir(path)
	}

	ApplyDefaults(&cfg)

	cfg.Server.UploadDir = expandPath(cfg.Server.UploadDir, configDir)
	cfg.Watch.InputDir = expandPath(cfg.Watch.InputDir, configDir)
	cfg.Watch.OutputDir = expandPath(cfg.Watch.OutputDir, configDir)

	return &cfg, nil
}

// Save writes the config to path. Used by "latexify config init".
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadEnvFiles loads KEY=value pairs from the given .env files into the process
// environment. Variables that are already set win. Missing files are skipped.
// Returns the files that were loaded.
func LoadEnvFiles(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("stat env file %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("load env file %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// Validate checks the settings needed to start. A missing API key is fatal
// unless the model is disabled.
func Validate(cfg *Config) error {
	if cfg.LLM.EnabledOrDefault() {
		if strings.TrimSpace(cfg.LLM.APIKey) == "" {
			return &ConfigurationError{
				Field:  "llm.api_key",
				Reason: "required when llm is enabled (set ANTHROPIC_API_KEY or CLAUDE_API_KEY, or llm.enabled: false)",
			}
		}
		if cfg.LLM.MaxTokens <= 0 {
			return &ConfigurationError{Field: "llm.max_tokens", Reason: "must be positive"}
		}
		if cfg.LLM.Timeout <= 0 {
			return &ConfigurationError{Field: "llm.timeout", Reason: "must be positive"}
		}
		if rt := cfg.Server.RequestTimeout; rt > 0 && rt <= cfg.LLM.Timeout {
			return &ConfigurationError{
				Field:  "server.request_timeout",
				Reason: fmt.Sprintf("%v must exceed llm.timeout %v", rt, cfg.LLM.Timeout),
			}
		}
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return &ConfigurationError{Field: "server.port", Reason: fmt.Sprintf("%d is out of range", cfg.Server.Port)}
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
