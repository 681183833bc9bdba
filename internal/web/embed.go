// Package web provides the embedded HTML pages of the organizer.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/doc-organizer/backend/internal/classify"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Page template names.
const (
	IndexPage     = "index.html"
	StructurePage = "structure.html"
)

// StructureView is the data rendered by the structure page.
type StructureView struct {
	BatchID string
	Tree    classify.Tree
	Files   []string
}

// GetFileSystem returns the embedded filesystem with the templates folder as root.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(templateFiles, "templates")
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	tfs, err := GetFileSystem()
	if err != nil {
		return nil, err
	}

	t, err := template.ParseFS(tfs, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render executes the named template.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// HasTemplate reports whether name was embedded.
func (r *Renderer) HasTemplate(name string) bool {
	return r.templates.Lookup(name) != nil
}
