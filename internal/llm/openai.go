package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient calls any OpenAI-compatible chat completions endpoint,
// including Ollama's /v1 surface.
type OpenAIClient struct {
	client *openai.Client
	model  string
	opts   options
}

// NewOpenAIClient creates a client. An empty baseURL uses the OpenAI default.
func NewOpenAIClient(baseURL, apiKey, model string, opts ...Option) (*OpenAIClient, error) {
	if model == "" {
		return nil, fmt.Errorf("openai provider requires a model name")
	}

	o := newOptions(opts)

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = o.httpClient

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		opts:   o,
	}, nil
}

// Model returns the configured model identifier.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Generate sends the prompt as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.opts.wait(ctx); err != nil {
		return "", err
	}

	rsp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling model endpoint: %w", err)
	}

	if len(rsp.Choices) == 0 {
		body, _ := json.MarshalIndent(rsp, "", "    ")
		return "", &ProtocolError{
			Message: "Model endpoint returned no choices:",
			Body:    string(body),
		}
	}

	return rsp.Choices[0].Message.Content, nil
}
