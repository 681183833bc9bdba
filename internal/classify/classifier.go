package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/doc-organizer/backend/internal/llm"
	"github.com/doc-organizer/backend/internal/models"
	"github.com/doc-organizer/backend/internal/prompt"
)

// Mode selects how model answers are interpreted.
type Mode string

const (
	// ModeStrict decodes the first JSON object and rejects non-tree values.
	ModeStrict Mode = "strict"
	// ModeLegacy applies Normalize before parsing.
	ModeLegacy Mode = "legacy"
)

// ParseMode maps a configuration value onto a Mode. Empty means legacy.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLegacy:
		return ModeLegacy, nil
	case ModeStrict:
		return ModeStrict, nil
	}
	return "", fmt.Errorf("unknown classifier mode: %s", s)
}

// Result is one classification round trip.
type Result struct {
	Prompt string `json:"prompt"`
	Raw    string `json:"raw"`
	Tree   Tree   `json:"tree"`
}

// Classifier runs prompt construction, the model call and answer decoding.
type Classifier struct {
	client  llm.Client
	builder *prompt.Builder
	mode    Mode
}

// NewClassifier creates a classifier. A nil builder uses the default prompt
// and an empty mode means legacy.
func NewClassifier(client llm.Client, builder *prompt.Builder, mode Mode) *Classifier {
	if builder == nil {
		builder = prompt.NewBuilder()
	}
	if mode == "" {
		mode = ModeLegacy
	}
	return &Classifier{client: client, builder: builder, mode: mode}
}

// Mode reports the decoding mode.
func (c *Classifier) Mode() Mode {
	return c.mode
}

// Classify asks the model for a folder tree. The returned Result carries
// the prompt and, once the model answered, the raw answer even when
// decoding fails.
func (c *Classifier) Classify(ctx context.Context, previews []models.Preview) (*Result, error) {
	res := &Result{Prompt: c.builder.Build(previews)}

	raw, err := c.client.Generate(ctx, res.Prompt)
	if err != nil {
		return res, fmt.Errorf("model call failed: %w", err)
	}
	res.Raw = raw

	tree, err := c.decode(raw)
	if err != nil {
		return res, err
	}
	res.Tree = tree
	return res, nil
}

func (c *Classifier) decode(raw string) (Tree, error) {
	if c.mode == ModeLegacy {
		return ParseLegacy(raw)
	}
	return Decode(raw)
}
