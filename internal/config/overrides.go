package config

import (
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment overrides, e.g. LATEXIFY_LLM_MODEL.
const envPrefix = "LATEXIFY"

// NewViper returns a viper instance reading LATEXIFY_* environment variables,
// with the API key also accepted from ANTHROPIC_API_KEY and CLAUDE_API_KEY.
// Command-line flags are bound onto it by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", "LATEXIFY_LLM_API_KEY", "ANTHROPIC_API_KEY", "CLAUDE_API_KEY")
	return v
}

// ApplyOverrides copies every key set in v (by environment or bound flag) onto cfg.
// It runs after Load, so overrides win over the file and the defaults, and it
// finishes by resolving the request timeout against the final llm.timeout.
func ApplyOverrides(cfg *Config, v *viper.Viper) {
	if v.IsSet("debug") {
		cfg.Debug = v.GetBool("debug")
	}
	if v.IsSet("server.host") {
		cfg.Server.Host = v.GetString("server.host")
	}
	if v.IsSet("server.port") {
		cfg.Server.Port = v.GetInt("server.port")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("server.upload_dir") {
		cfg.Server.UploadDir = v.GetString("server.upload_dir")
	}
	if v.IsSet("server.request_timeout") {
		cfg.Server.RequestTimeout = v.GetDuration("server.request_timeout")
	}
	if v.IsSet("llm.enabled") {
		enabled := v.GetBool("llm.enabled")
		cfg.LLM.Enabled = &enabled
	}
	if v.IsSet("llm.api_key") {
		cfg.LLM.APIKey = strings.TrimSpace(v.GetString("llm.api_key"))
	}
	if v.IsSet("llm.base_url") {
		cfg.LLM.BaseURL = v.GetString("llm.base_url")
	}
	if v.IsSet("llm.model") {
		cfg.LLM.Model = v.GetString("llm.model")
	}
	if v.IsSet("llm.max_tokens") {
		cfg.LLM.MaxTokens = v.GetInt("llm.max_tokens")
	}
	if v.IsSet("llm.timeout") {
		cfg.LLM.Timeout = v.GetDuration("llm.timeout")
	}
	if v.IsSet("llm.strict") {
		cfg.LLM.Strict = v.GetBool("llm.strict")
	}
	if v.IsSet("watch.input_dir") {
		cfg.Watch.InputDir = v.GetString("watch.input_dir")
	}
	if v.IsSet("watch.output_dir") {
		cfg.Watch.OutputDir = v.GetString("watch.output_dir")
	}
	ResolveRequestTimeout(cfg)
}
