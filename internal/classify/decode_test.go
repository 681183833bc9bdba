package classify

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("nested tree with surrounding prose", func(t *testing.T) {
		raw := "Sure! Here is the structure:\n```json\n{\"Work\": {\"Reports\": {\"q3.pdf\": \"Quarterly\"}}, \"todo.txt\": \"Personal\"}\n```\nLet me know."
		tree, err := Decode(raw)
		require.NoError(t, err)

		require.Len(t, tree, 2)
		work, ok := tree.Get("Work")
		require.True(t, ok)
		assert.True(t, work.IsFolder)
		reports, ok := work.Children.Get("Reports")
		require.True(t, ok)
		assert.Equal(t, "Quarterly", reports.Children[0].Value)
	})

	t.Run("arrays of names flatten to leaves", func(t *testing.T) {
		tree, err := Decode(`{"Docs": ["a.pdf", "b.pdf"]}`)
		require.NoError(t, err)

		docs, _ := tree.Get("Docs")
		require.NotNil(t, docs)
		assert.True(t, docs.IsFolder)
		assert.Equal(t, Tree{{Key: "a.pdf"}, {Key: "b.pdf"}}, docs.Children)
	})

	t.Run("comments are not rewritten", func(t *testing.T) {
		_, err := Decode(`{"a": "b" // comment
		}`)
		var perr *ParseError
		assert.True(t, errors.As(err, &perr))
	})

	t.Run("urls inside strings survive", func(t *testing.T) {
		tree, err := Decode(`{"link.txt": "see http://example.com/x"}`)
		require.NoError(t, err)
		assert.Equal(t, "see http://example.com/x", tree[0].Value)
	})

	t.Run("no object", func(t *testing.T) {
		raw := "no braces here"
		_, err := Decode(raw)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, raw, perr.Raw)
	})

	t.Run("truncated object", func(t *testing.T) {
		_, err := Decode(`{"Docs": {"a.pdf": "x"`)
		var perr *ParseError
		assert.True(t, errors.As(err, &perr))
	})
}

func TestDecode_SchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantPath string
	}{
		{"number leaf", `{"Finance": {"2024": 12}}`, "/Finance/2024"},
		{"boolean leaf", `{"a.txt": true}`, "/a.txt"},
		{"null leaf", `{"a.txt": null}`, "/a.txt"},
		{"array of objects", `{"Docs": [{"a.pdf": "x"}]}`, "/Docs/0"},
		{"array of numbers", `{"Docs": ["a.pdf", 3]}`, "/Docs/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			var serr *SchemaError
			require.True(t, errors.As(err, &serr), "got %v", err)
			assert.Equal(t, tt.wantPath, serr.Path)
			assert.Equal(t, tt.raw, serr.Raw)
			assert.Contains(t, serr.Error(), tt.wantPath)
		})
	}
}

func TestTree_MarshalJSON(t *testing.T) {
	raw := `{"Zeta":{"b.txt":"second","a.txt":"first"},"notes.txt":"General","Empty":{}}`
	tree, err := Decode(raw)
	require.NoError(t, err)

	data, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.Equal(t, raw, string(data))
}
