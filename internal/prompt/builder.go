// Package prompt turns document previews into the classification instruction
// sent to the model.
package prompt

import (
	"strings"

	"github.com/doc-organizer/backend/internal/models"
)

// DefaultHeader asks for a nested folder tree whose leaves map file names
// to one-line synopses.
const DefaultHeader = "Categorize and then organize a file system for the documents previewed. " +
	"Suggest folders in JSON as a tree structure like:\n" +
	"{\n\t\"Folder\":\n\t{\n\t\t\"Subfolder\":\n\t\t{\n\t\t\t\"<file name>\":\"<brief synopsis>\"\n\t\t}\n\t}\n}"

// DefaultMaxPreviewChars caps each preview block inside the prompt.
const DefaultMaxPreviewChars = 1000

// Builder assembles classification prompts.
type Builder struct {
	Header          string
	MaxPreviewChars int
}

// NewBuilder returns a builder using the default header and preview cap.
func NewBuilder() *Builder {
	return &Builder{
		Header:          DefaultHeader,
		MaxPreviewChars: DefaultMaxPreviewChars,
	}
}

// Build emits the header followed by one labeled block per preview, in order.
func (b *Builder) Build(previews []models.Preview) string {
	var sb strings.Builder
	sb.WriteString(b.Header)

	for _, p := range previews {
		sb.WriteString("Filename: ")
		sb.WriteString(p.Filename)
		sb.WriteString("\nContent: ")
		sb.WriteString(b.trim(p.Text))
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// Build renders previews with the default builder.
func Build(previews []models.Preview) string {
	return NewBuilder().Build(previews)
}

// trim collapses newlines to spaces and caps the preview length.
func (b *Builder) trim(text string) string {
	flat := strings.ReplaceAll(text, "\n", " ")

	limit := b.MaxPreviewChars
	if limit <= 0 {
		limit = DefaultMaxPreviewChars
	}

	count := 0
	for i := range flat {
		if count == limit {
			return flat[:i]
		}
		count++
	}
	return flat
}
