// Package testutil provides fakes of the model service for tests.
package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// StubModel implements llm.Client with canned answers.
type StubModel struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []string
}

// NewStubModel returns a stub that always answers response.
func NewStubModel(response string) *StubModel {
	return &StubModel{Response: response}
}

// Generate records the prompt and returns the canned answer.
func (s *StubModel) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}

// Calls returns how many prompts were received.
func (s *StubModel) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}

// OllamaEnvelope wraps a model answer the way /api/generate returns it.
func OllamaEnvelope(response string) string {
	data, _ := json.Marshal(map[string]interface{}{
		"model":    "test-model",
		"response": response,
		"done":     true,
	})
	return string(data)
}

// NewModelServer starts an HTTP server that answers every request with
// status and body. It is closed when the test ends.
func NewModelServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
