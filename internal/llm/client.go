// Package llm talks to the language model service that proposes folder trees.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	DefaultOllamaHost = "http://localhost:11434"
	DefaultModel      = "mistral:7b-instruct-q4_K_M"
)

// Client sends one prompt and returns the model's raw text answer.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProtocolError reports a response that does not match the expected
// envelope. Body carries the raw payload for diagnosis.
type ProtocolError struct {
	Message string
	Body    string
}

func (e *ProtocolError) Error() string {
	return e.Message + "\n" + e.Body
}

// Config selects and configures a Client.
type Config struct {
	Provider          string
	Host              string
	Model             string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
}

// New builds the client for cfg.Provider.
func New(cfg Config) (Client, error) {
	opts := []Option{WithRateLimit(cfg.RequestsPerMinute)}
	if cfg.Timeout > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOllama:
		return NewOllamaClient(cfg.Host, cfg.Model, opts...)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.Host, cfg.APIKey, cfg.Model, opts...)
	default:
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
}
