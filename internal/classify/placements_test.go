package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mixedNesting = `{"Finance": {"report.pdf":"Q3 summary"}, "notes.txt":"General"}`

func TestTopLevelPlacements(t *testing.T) {
	tree, err := Decode(mixedNesting)
	require.NoError(t, err)

	assert.Equal(t, []Placement{
		{Filename: "notes.txt", Folder: "General"},
	}, TopLevelPlacements(tree))
}

func TestPlacements(t *testing.T) {
	t.Run("mixed nesting", func(t *testing.T) {
		tree, err := Decode(mixedNesting)
		require.NoError(t, err)

		assert.Equal(t, []Placement{
			{Filename: "report.pdf", Folder: "Finance", Synopsis: "Q3 summary"},
			{Filename: "notes.txt", Folder: "General"},
		}, Placements(tree))
	})

	t.Run("deep nesting joins folder path", func(t *testing.T) {
		tree, err := Decode(`{"Work": {"Clients": {"Acme": {"contract.docx": "MSA"}}, "plan.txt": "Roadmap"}}`)
		require.NoError(t, err)

		assert.Equal(t, []Placement{
			{Filename: "contract.docx", Folder: "Work/Clients/Acme", Synopsis: "MSA"},
			{Filename: "plan.txt", Folder: "Work", Synopsis: "Roadmap"},
		}, Placements(tree))
	})

	t.Run("empty folders produce nothing", func(t *testing.T) {
		tree, err := Decode(`{"Empty": {}}`)
		require.NoError(t, err)
		assert.Empty(t, Placements(tree))
	})
}
