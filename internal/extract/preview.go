// Package extract produces bounded text previews of uploaded documents.
package extract

import (
	"fmt"
	"strings"

	"github.com/doc-organizer/backend/internal/models"
)

// DefaultPageBudget is the number of pages previewed when no budget is given.
const DefaultPageBudget = 2

// CharsPerPage converts a page budget into the character cap of a preview.
const CharsPerPage = 500

// Extract returns the preview of one file using the global registry.
func Extract(filePath string, pageBudget int) string {
	return globalRegistry.Extract(filePath, pageBudget)
}

// Extract returns the trimmed preview of filePath, capped at
// pageBudget*CharsPerPage characters. Unsupported formats yield an empty
// preview; read failures yield a placeholder naming the error so the rest
// of the batch can continue.
func (r *Registry) Extract(filePath string, pageBudget int) string {
	if pageBudget <= 0 {
		pageBudget = DefaultPageBudget
	}

	e, err := r.FindExtractor(filePath)
	if err != nil {
		return ""
	}

	text, err := safeExtract(e, filePath, pageBudget)
	if err != nil {
		text = fmt.Sprintf("(Error reading file: %v)", err)
	}

	return truncateRunes(strings.TrimSpace(text), pageBudget*CharsPerPage)
}

// Previews extracts every file of a batch in upload order.
func (r *Registry) Previews(files []*models.FileInfo, pageBudget int) []models.Preview {
	previews := make([]models.Preview, 0, len(files))
	for _, f := range files {
		previews = append(previews, models.Preview{
			Filename: f.Name,
			Text:     r.Extract(f.Path, pageBudget),
		})
	}
	return previews
}

// Previews extracts a batch using the global registry.
func Previews(files []*models.FileInfo, pageBudget int) []models.Preview {
	return globalRegistry.Previews(files, pageBudget)
}

// safeExtract converts panics from third-party decoders into errors.
func safeExtract(e Extractor, filePath string, pageBudget int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s extractor panicked: %v", e.Name(), r)
		}
	}()
	return e.Extract(filePath, pageBudget)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
