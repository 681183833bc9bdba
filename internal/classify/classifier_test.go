package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/doc-organizer/backend/internal/llm"
	"github.com/doc-organizer/backend/internal/models"
	"github.com/doc-organizer/backend/internal/prompt"
	"github.com/doc-organizer/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var previews = []models.Preview{
	{Filename: "report.pdf", Text: "Q3 revenue"},
	{Filename: "notes.txt", Text: "groceries"},
}

func TestClassifier_Classify(t *testing.T) {
	model := testutil.NewStubModel(`Here: {"Finance": {"report.pdf": "Q3"}, "notes.txt": "General"}`)
	c := NewClassifier(model, nil, ModeStrict)

	res, err := c.Classify(context.Background(), previews)
	require.NoError(t, err)

	assert.Equal(t, prompt.Build(previews), res.Prompt)
	assert.Equal(t, model.Response, res.Raw)
	assert.Len(t, res.Tree, 2)
	assert.Equal(t, 1, model.Calls())
}

func TestClassifier_ModelFailure(t *testing.T) {
	model := testutil.NewStubModel("")
	model.Err = &llm.ProtocolError{Message: "Could not decode JSON from Ollama response:", Body: "not json"}
	c := NewClassifier(model, nil, ModeStrict)

	res, err := c.Classify(context.Background(), previews)
	require.Error(t, err)

	var perr *llm.ProtocolError
	assert.True(t, errors.As(err, &perr))
	assert.Empty(t, res.Raw)
	assert.NotEmpty(t, res.Prompt)
}

func TestClassifier_ParseFailureKeepsRaw(t *testing.T) {
	raw := `{"Docs": [{"a.pdf": "x"}]}`

	t.Run("strict", func(t *testing.T) {
		c := NewClassifier(testutil.NewStubModel(raw), nil, ModeStrict)
		res, err := c.Classify(context.Background(), previews)

		var serr *SchemaError
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, raw, res.Raw)
	})

	t.Run("legacy", func(t *testing.T) {
		c := NewClassifier(testutil.NewStubModel(raw), nil, ModeLegacy)
		res, err := c.Classify(context.Background(), previews)

		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, raw, res.Raw)
	})
}

func TestClassifier_CustomBuilder(t *testing.T) {
	model := testutil.NewStubModel("{}")
	builder := &prompt.Builder{Header: "HEADER\n", MaxPreviewChars: 3}
	c := NewClassifier(model, builder, "")

	_, err := c.Classify(context.Background(), previews)
	require.NoError(t, err)
	assert.Equal(t, ModeLegacy, c.Mode())
	assert.True(t, strings.HasPrefix(model.Prompts[0], "HEADER\nFilename: report.pdf\nContent: Q3 \n\n"))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("STRICT")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLegacy, m)

	_, err = ParseMode("fuzzy")
	assert.Error(t, err)
}
