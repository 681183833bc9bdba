package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extractor reads a bounded text excerpt from one document format.
type Extractor interface {
	// Name returns the unique name of the extractor.
	Name() string
	// CanExtract returns true if this extractor handles the given file.
	CanExtract(filePath string) bool
	// Extract returns the raw excerpt for the given page budget. Callers
	// apply trimming and the overall character cap.
	Extract(filePath string, pageBudget int) (string, error)
}

// Registry holds the available extractors in detection order.
type Registry struct {
	extractors []Extractor
}

var globalRegistry = NewRegistry()

// NewRegistry returns a registry with the PDF, DOCX and plain text extractors.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			NewPDFExtractor(),
			NewDocxExtractor(),
			NewTextExtractor(),
		},
	}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a new extractor to the registry.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// FindExtractor returns the first extractor that accepts the file.
func (r *Registry) FindExtractor(filePath string) (Extractor, error) {
	for _, e := range r.extractors {
		if e.CanExtract(filePath) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no suitable extractor found for file: %s", filePath)
}

// GetExtractorByName returns an extractor by its name.
func (r *Registry) GetExtractorByName(name string) (Extractor, error) {
	name = strings.ToLower(name)
	for _, e := range r.extractors {
		if strings.ToLower(e.Name()) == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("extractor not found: %s", name)
}

func hasExt(filePath, ext string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ext)
}
