package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
llm:
  model: "claude-test"
  timeout: 15s
  strict: true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.LLM.Model != "claude-test" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.LLM.Timeout)
	}
	if !cfg.LLM.Strict {
		t.Error("strict should be true when set in config")
	}
	if cfg.LLM.MaxTokens != DefaultMaxTokens {
		t.Errorf("max_tokens should default, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_emptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  upload_dir: "./tmp/uploads"
watch:
  input_dir: "./inbox"
  output_dir: "/abs/out"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "tmp", "uploads"); cfg.Server.UploadDir != want {
		t.Errorf("upload_dir = %s, want %s", cfg.Server.UploadDir, want)
	}
	if want := filepath.Join(dir, "inbox"); cfg.Watch.InputDir != want {
		t.Errorf("input_dir = %s, want %s", cfg.Watch.InputDir, want)
	}
	if cfg.Watch.OutputDir != "/abs/out" {
		t.Errorf("absolute output_dir changed: %s", cfg.Watch.OutputDir)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("allowed origins: got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.MaxUploadBytes != 32<<20 {
		t.Errorf("max upload: got %d", cfg.Server.MaxUploadBytes)
	}
	if cfg.LLM.BaseURL != DefaultBaseURL || cfg.LLM.Model != DefaultModel || cfg.LLM.APIVersion != DefaultAPIVersion {
		t.Errorf("llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != DefaultLLMTimeout {
		t.Errorf("llm timeout: got %v", cfg.LLM.Timeout)
	}
	if cfg.Server.RequestTimeout != 0 {
		t.Errorf("request timeout should stay unset until overrides: got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Conversion.DefaultTitle != "Converted Document" {
		t.Errorf("default title: got %q", cfg.Conversion.DefaultTitle)
	}
	if len(cfg.Watch.Extensions) != 9 || cfg.Watch.Extensions[0] != ".txt" {
		t.Errorf("watch extensions: got %v", cfg.Watch.Extensions)
	}
	if !cfg.LLM.EnabledOrDefault() {
		t.Error("llm should be enabled by default")
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_false", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
	t.Run("true_returns_true", func(t *testing.T) {
		v := true
		w := &WatchConfig{Recursive: &v}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
}

func TestValidate(t *testing.T) {
	disabled := false
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"ok", func(c *Config) { c.LLM.APIKey = "sk-test" }, ""},
		{"missing key", func(c *Config) {}, "llm.api_key"},
		{"blank key", func(c *Config) { c.LLM.APIKey = "   " }, "llm.api_key"},
		{"disabled llm needs no key", func(c *Config) { c.LLM.Enabled = &disabled }, ""},
		{"bad port", func(c *Config) { c.LLM.APIKey = "k"; c.Server.Port = 70000 }, "server.port"},
		{"bad max tokens", func(c *Config) { c.LLM.APIKey = "k"; c.LLM.MaxTokens = -1 }, "llm.max_tokens"},
		{"request timeout below llm timeout", func(c *Config) {
			c.LLM.APIKey = "k"
			c.Server.RequestTimeout = c.LLM.Timeout
		}, "server.request_timeout"},
		{"request timeout above llm timeout", func(c *Config) {
			c.LLM.APIKey = "k"
			c.Server.RequestTimeout = c.LLM.Timeout + time.Second
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			ApplyDefaults(cfg)
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("want *ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("field = %s, want %s", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("LATEXIFY_TEST_DOTENV=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LATEXIFY_TEST_DOTENV", "")
	os.Unsetenv("LATEXIFY_TEST_DOTENV")

	loaded, err := LoadEnvFiles(filepath.Join(dir, "missing.env"), envPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0] != envPath {
		t.Errorf("loaded = %v", loaded)
	}
	if got := os.Getenv("LATEXIFY_TEST_DOTENV"); got != "from-file" {
		t.Errorf("env = %q, want from-file", got)
	}
}

func TestLoadEnvFiles_existingVariableWins(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("LATEXIFY_TEST_KEEP=file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LATEXIFY_TEST_KEEP", "process")
	if _, err := LoadEnvFiles(envPath); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("LATEXIFY_TEST_KEEP"); got != "process" {
		t.Errorf("env = %q, want process", got)
	}
}

func TestApplyOverrides_env(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LATEXIFY_LLM_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", " sk-claude ")
	t.Setenv("LATEXIFY_LLM_MODEL", "claude-override")
	t.Setenv("LATEXIFY_SERVER_PORT", "5001")
	t.Setenv("LATEXIFY_LLM_STRICT", "true")

	cfg := &Config{}
	ApplyDefaults(cfg)
	ApplyOverrides(cfg, NewViper())

	if cfg.LLM.APIKey != "sk-claude" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "claude-override" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Server.Port != 5001 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if !cfg.LLM.Strict {
		t.Error("strict should be overridden")
	}
}

func TestApplyOverrides_requestTimeoutFollowsLLMTimeout(t *testing.T) {
	t.Setenv("LATEXIFY_LLM_TIMEOUT", "120s")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	ApplyOverrides(cfg, NewViper())

	if cfg.LLM.Timeout != 2*time.Minute {
		t.Fatalf("llm timeout = %v, want 2m", cfg.LLM.Timeout)
	}
	if cfg.Server.RequestTimeout <= cfg.LLM.Timeout {
		t.Errorf("request timeout %v does not outlive llm timeout %v", cfg.Server.RequestTimeout, cfg.LLM.Timeout)
	}
	if cfg.Server.RequestTimeout != 2*time.Minute+RequestTimeoutMargin {
		t.Errorf("request timeout = %v", cfg.Server.RequestTimeout)
	}
}

func TestApplyOverrides_explicitRequestTimeout(t *testing.T) {
	t.Setenv("LATEXIFY_SERVER_REQUEST_TIMEOUT", "5m")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	ApplyOverrides(cfg, NewViper())

	if cfg.Server.RequestTimeout != 5*time.Minute {
		t.Errorf("request timeout = %v, want 5m", cfg.Server.RequestTimeout)
	}
}

func TestApplyOverrides_nothingSetKeepsFile(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Port: 7000}}
	ApplyDefaults(cfg)
	v := NewViper()
	ApplyOverrides(cfg, v)
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want 7000", cfg.Server.Port)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{Server: ServerConfig{Host: "localhost", Port: 9090}}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
