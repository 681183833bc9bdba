package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	ollama "github.com/jmorganca/ollama/api"
)

// OllamaClient calls the /api/generate endpoint of an Ollama server with
// streaming disabled.
type OllamaClient struct {
	endpoint string
	model    string
	opts     options
}

// NewOllamaClient creates a client for host. An empty host falls back to
// OLLAMA_HOST and then to DefaultOllamaHost; an empty model to DefaultModel.
func NewOllamaClient(host, model string, opts ...Option) (*OllamaClient, error) {
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = DefaultOllamaHost
	}
	if model == "" {
		model = DefaultModel
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ollama host %q: scheme and host required", host)
	}

	return &OllamaClient{
		endpoint: strings.TrimRight(u.String(), "/") + "/api/generate",
		model:    model,
		opts:     newOptions(opts),
	}, nil
}

// Model returns the configured model identifier.
func (c *OllamaClient) Model() string {
	return c.model
}

// generateRequest carries only model, prompt and stream.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Generate issues a single non-streaming request and returns the
// envelope's response field.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.opts.wait(ctx); err != nil {
		return "", err
	}

	payload, err := json.Marshal(&generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading model response: %w", err)
	}

	return decodeGenerateResponse(body)
}

// decodeGenerateResponse validates the envelope before reading the answer.
func decodeGenerateResponse(body []byte) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &ProtocolError{
			Message: "Could not decode JSON from Ollama response:",
			Body:    string(body),
		}
	}

	if _, ok := envelope["response"]; !ok {
		return "", &ProtocolError{
			Message: "Ollama did not return a 'response':",
			Body:    indentJSON(body),
		}
	}

	var gr ollama.GenerateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", &ProtocolError{
			Message: fmt.Sprintf("Ollama returned a malformed 'response': %v", err),
			Body:    indentJSON(body),
		}
	}

	return gr.Response, nil
}

func indentJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "    "); err != nil {
		return string(body)
	}
	return buf.String()
}
