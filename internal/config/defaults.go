package config

import (
	"time"

	"github.com/hyperjump/latexify/internal/models"
)

const (
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultModel      = "claude-3-7-sonnet-20250219"
	DefaultAPIVersion = "2023-06-01"
	DefaultMaxTokens  = 2048
	DefaultLLMTimeout = 60 * time.Second

	// RequestTimeoutMargin is added to llm.timeout when server.request_timeout is unset.
	RequestTimeoutMargin = 30 * time.Second
)

// ApplyDefaults sets default values for any zero values in cfg.
// server.request_timeout is left alone; see ResolveRequestTimeout.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8081"}
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultBaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel
	}
	if cfg.LLM.APIVersion == "" {
		cfg.LLM.APIVersion = DefaultAPIVersion
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = DefaultMaxTokens
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}
	if cfg.Conversion.DefaultTitle == "" {
		cfg.Conversion.DefaultTitle = "Converted Document"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = models.SupportedExtensions()
	}
}

// ResolveRequestTimeout derives server.request_timeout from llm.timeout when it
// was not set explicitly. It must run after overrides so the request deadline
// outlives the model call it wraps.
func ResolveRequestTimeout(cfg *Config) {
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = cfg.LLM.Timeout + RequestTimeoutMargin
	}
}
