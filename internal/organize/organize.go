// Package organize moves uploaded files into the folders of a classification
// tree.
package organize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/doc-organizer/backend/internal/classify"
)

// Mode selects which entries of a tree are acted upon.
type Mode string

const (
	// ModeTopLevel moves only direct filename -> folder entries.
	ModeTopLevel Mode = "top-level"
	// ModeRecursive walks every folder and moves nested leaves too.
	ModeRecursive Mode = "recursive"
)

// ParseMode maps a configuration value onto a Mode. Empty means top-level.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTopLevel, "toplevel":
		return ModeTopLevel, nil
	case ModeRecursive:
		return ModeRecursive, nil
	}
	return "", fmt.Errorf("unknown organize mode: %s", s)
}

// Outcome is the result of one attempted move.
type Outcome struct {
	classify.Placement
	Destination string `json:"destination"`
	Error       string `json:"error,omitempty"`
}

// Report lists what happened to every placement of a tree.
type Report struct {
	Moved   []Outcome            `json:"moved"`
	Failed  []Outcome            `json:"failed"`
	Pending []classify.Placement `json:"pending"`
}

// MoveError is returned when a placement could not be carried out. Files
// moved before the failure stay where they are.
type MoveError struct {
	Placement classify.Placement
	Err       error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("failed to move %s into %q: %v", e.Placement.Filename, e.Placement.Folder, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

var (
	// ErrUnsafeFolder rejects folder paths that leave the destination root.
	ErrUnsafeFolder = errors.New("folder escapes destination root")
	// ErrUnsafeFilename rejects file names that are not a single path element.
	ErrUnsafeFilename = errors.New("file name is not a plain name")
)

// Reorganizer moves files from an upload root into a destination root.
type Reorganizer struct {
	Mode Mode
}

// NewReorganizer creates a reorganizer. An empty mode means top-level.
func NewReorganizer(mode Mode) *Reorganizer {
	if mode == "" {
		mode = ModeTopLevel
	}
	return &Reorganizer{Mode: mode}
}

// Plan lists the placements the reorganizer would carry out for tree.
func (r *Reorganizer) Plan(tree classify.Tree) []classify.Placement {
	if r.Mode == ModeTopLevel {
		return classify.TopLevelPlacements(tree)
	}
	return classify.Placements(tree)
}

// Reorganize moves each planned file from uploadRoot/<filename> to
// destRoot/<folder>/<filename>, creating folders as needed. The first
// failure stops the walk; the report is returned in every case.
func (r *Reorganizer) Reorganize(tree classify.Tree, uploadRoot, destRoot string) (*Report, error) {
	plan := r.Plan(tree)
	report := &Report{
		Moved:  make([]Outcome, 0, len(plan)),
		Failed: make([]Outcome, 0),
	}

	for i, p := range plan {
		dest, err := r.place(p, uploadRoot, destRoot)
		if err != nil {
			report.Failed = append(report.Failed, Outcome{Placement: p, Destination: dest, Error: err.Error()})
			report.Pending = append(report.Pending, plan[i+1:]...)
			return report, &MoveError{Placement: p, Err: err}
		}
		report.Moved = append(report.Moved, Outcome{Placement: p, Destination: dest})
	}

	report.Pending = make([]classify.Placement, 0)
	return report, nil
}

func (r *Reorganizer) place(p classify.Placement, uploadRoot, destRoot string) (string, error) {
	if !plainName(p.Filename) {
		return "", ErrUnsafeFilename
	}

	folder, err := resolveFolder(destRoot, p.Folder)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(folder, p.Filename)

	if err := os.MkdirAll(folder, 0755); err != nil {
		return dest, fmt.Errorf("failed to create folder: %w", err)
	}
	if err := moveFile(filepath.Join(uploadRoot, p.Filename), dest); err != nil {
		return dest, err
	}
	return dest, nil
}

// resolveFolder joins a slash separated folder path onto root and rejects
// results outside root.
func resolveFolder(root, folder string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash("/" + folder))
	if strings.Contains(folder, "..") {
		// Clean on a rooted path silently drops leading "..", so check
		// the unrooted form as well.
		unrooted := filepath.Clean(filepath.FromSlash(folder))
		if unrooted == ".." || strings.HasPrefix(unrooted, ".."+string(filepath.Separator)) || filepath.IsAbs(unrooted) {
			return "", ErrUnsafeFolder
		}
	}

	full := filepath.Join(root, rel)
	within, err := filepath.Rel(root, full)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", ErrUnsafeFolder
	}
	return full, nil
}

func plainName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
