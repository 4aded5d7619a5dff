// Package llm sends text and LaTeX to a hosted model and returns LaTeX.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/latexify/internal/config"
)

// Backend produces LaTeX from text, or revises existing LaTeX.
type Backend interface {
	Convert(ctx context.Context, text, instructions string) (string, error)
	Edit(ctx context.Context, currentLatex, instructions string) (string, error)
}

// messagesPath is appended to the configured base URL.
const messagesPath = "/v1/messages"

// ClaudeClient calls the Anthropic Messages API. Each call makes exactly one
// request; retries are left to the caller.
type ClaudeClient struct {
	apiKey     string
	endpoint   string
	model      string
	apiVersion string
	maxTokens  int
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a ClaudeClient.
type ClientOption func(*ClaudeClient)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cc *ClaudeClient) {
		cc.httpClient = c
	}
}

// NewClaudeClient builds a client from cfg. Zero values in cfg fall back to the
// package defaults in config.
func NewClaudeClient(cfg config.LLMConfig, logger *zap.Logger, opts ...ClientOption) *ClaudeClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &ClaudeClient{
		apiKey:     cfg.APIKey,
		endpoint:   strings.TrimRight(orDefault(cfg.BaseURL, config.DefaultBaseURL), "/") + messagesPath,
		model:      orDefault(cfg.Model, config.DefaultModel),
		apiVersion: orDefault(cfg.APIVersion, config.DefaultAPIVersion),
		maxTokens:  cfg.MaxTokens,
		timeout:    cfg.Timeout,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
	if c.maxTokens <= 0 {
		c.maxTokens = config.DefaultMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = config.DefaultLLMTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model name sent with each request.
func (c *ClaudeClient) Model() string { return c.model }

// Convert asks the model to turn text into a complete LaTeX document.
func (c *ClaudeClient) Convert(ctx context.Context, text, instructions string) (string, error) {
	prompt, err := renderConvertPrompt(text, instructions)
	if err != nil {
		return "", fmt.Errorf("rendering convert prompt: %w", err)
	}
	return c.complete(ctx, "convert", prompt)
}

// Edit asks the model to apply instructions to currentLatex and return the whole document.
func (c *ClaudeClient) Edit(ctx context.Context, currentLatex, instructions string) (string, error) {
	prompt, err := renderEditPrompt(currentLatex, instructions)
	if err != nil {
		return "", fmt.Errorf("rendering edit prompt: %w", err)
	}
	return c.complete(ctx, "edit", prompt)
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content    []claudeContent `json:"content"`
	StopReason string          `json:"stop_reason"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (c *ClaudeClient) complete(ctx context.Context, op, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqID := uuid.New().String()
	log := c.logger.With(zap.String("req_id", reqID), zap.String("op", op), zap.String("model", c.model))
	start := time.Now()

	body, err := json.Marshal(claudeRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", c.apiVersion)

	log.Debug("llm request", zap.Int("prompt_bytes", len(prompt)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("llm request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return "", c.classify(ctx, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Debug("llm response body close", zap.Error(cerr))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.classify(ctx, err)
	}

	log.Info("llm response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var cResp claudeResponse
	if err := json.Unmarshal(raw, &cResp); err != nil {
		return "", &TransportError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	if cResp.StopReason == "max_tokens" {
		log.Warn("llm output truncated at max_tokens", zap.Int("max_tokens", c.maxTokens))
	}
	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		latex := StripCodeFence(block.Text)
		if latex == "" {
			return "", &TransportError{Err: errors.New("empty text content in response")}
		}
		return latex, nil
	}
	return "", &TransportError{Err: errors.New("no text content in response")}
}

// classify maps a failed request to TimeoutError when the deadline elapsed.
func (c *ClaudeClient) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{After: c.timeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{After: c.timeout}
	}
	return &TransportError{Err: err}
}

// StripCodeFence removes a surrounding markdown code fence (```latex ... ```)
// and trims whitespace. Text without a fence is only trimmed.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return ""
	}
	s = s[nl+1:]
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
