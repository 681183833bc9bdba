// Package upload runs the document pipeline for a batch: staging uploads,
// extracting previews, classifying them and reorganizing the files.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/doc-organizer/backend/internal/classify"
	"github.com/doc-organizer/backend/internal/extract"
	"github.com/doc-organizer/backend/internal/models"
	"github.com/doc-organizer/backend/internal/organize"
	"github.com/doc-organizer/backend/internal/session"
)

var (
	// ErrBatchNotFound is returned for unknown or expired batch IDs.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrNotClassified is returned when a batch has no usable folder tree.
	ErrNotClassified = errors.New("batch has not been classified")
	// ErrNoLedger is returned when placement history is not kept.
	ErrNoLedger = errors.New("placement ledger is disabled")
)

// Store defines the interface needed from the storage layer.
type Store interface {
	CreateBatch() (string, error)
	Save(batchID, name string, r io.Reader) (*models.FileInfo, error)
	List(batchID string) ([]*models.FileInfo, error)
	BatchDir(batchID string) (string, error)
	DeleteBatch(batchID string) error
}

// Classifier proposes a folder tree for a set of previews.
type Classifier interface {
	Classify(ctx context.Context, previews []models.Preview) (*classify.Result, error)
}

// Ledger keeps the placements of each batch.
type Ledger interface {
	Record(ctx context.Context, batchID string, plan []classify.Placement) error
	MarkOutcomes(ctx context.Context, batchID string, report *organize.Report) error
	Placements(ctx context.Context, batchID string) ([]session.PlacementRow, error)
	Remove(batchID string) error
}

// Config tunes a Manager.
type Config struct {
	OrganizedDir string
	PageBudget   int
	Mode         organize.Mode
	Extractors   *extract.Registry
	Ledger       Ledger
}

// Manager drives batches through the pipeline.
type Manager struct {
	store        Store
	sessions     *session.Manager
	classifier   Classifier
	extractors   *extract.Registry
	reorganizer  *organize.Reorganizer
	ledger       Ledger
	organizedDir string
	pageBudget   int
}

// NewManager creates a pipeline manager. Batches dropped by sessions have
// their staged files and ledger removed.
func NewManager(store Store, sessions *session.Manager, classifier Classifier, cfg Config) *Manager {
	if cfg.Extractors == nil {
		cfg.Extractors = extract.GetGlobalRegistry()
	}
	if cfg.PageBudget <= 0 {
		cfg.PageBudget = extract.DefaultPageBudget
	}

	m := &Manager{
		store:        store,
		sessions:     sessions,
		classifier:   classifier,
		extractors:   cfg.Extractors,
		reorganizer:  organize.NewReorganizer(cfg.Mode),
		ledger:       cfg.Ledger,
		organizedDir: cfg.OrganizedDir,
		pageBudget:   cfg.PageBudget,
	}
	sessions.OnEvict(m.release)
	return m
}

// shortID safely truncates an ID for logging.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// OrganizedDir returns the destination root.
func (m *Manager) OrganizedDir() string {
	return m.organizedDir
}

// Begin opens a new, empty batch.
func (m *Manager) Begin() (*models.Batch, error) {
	id, err := m.store.CreateBatch()
	if err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	batch := models.NewBatch(id)
	m.sessions.Create(batch)
	fmt.Printf("[Batch %s] Created\n", shortID(id))
	return batch, nil
}

// AddFile stages one uploaded file in a batch.
func (m *Manager) AddFile(batchID, name string, r io.Reader) (*models.FileInfo, error) {
	if _, ok := m.sessions.Get(batchID); !ok {
		return nil, ErrBatchNotFound
	}

	info, err := m.store.Save(batchID, name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", name, err)
	}

	m.sessions.Update(batchID, func(s *session.BatchState) {
		for i, f := range s.Batch.Files {
			if f.Name == info.Name {
				s.Batch.Files[i] = info
				return
			}
		}
		s.Batch.Files = append(s.Batch.Files, info)
	})

	fmt.Printf("[Batch %s] Staged %s (%d bytes)\n", shortID(batchID), info.Name, info.Size)
	return info, nil
}

// Classify extracts previews for every staged file and asks the model for a
// folder tree. The result is returned alongside any error so the raw model
// answer can be shown.
func (m *Manager) Classify(ctx context.Context, batchID string) (*classify.Result, error) {
	if !m.sessions.SetStatus(batchID, models.BatchStatusExtracting) {
		return nil, ErrBatchNotFound
	}

	files, err := m.store.List(batchID)
	if err != nil {
		m.sessions.Fail(batchID, "extract", err.Error())
		return nil, fmt.Errorf("failed to list batch files: %w", err)
	}

	start := time.Now()
	previews := m.extractors.Previews(files, m.pageBudget)
	fmt.Printf("[Batch %s] Extracted %d previews in %v\n", shortID(batchID), len(previews), time.Since(start).Round(time.Millisecond))

	m.sessions.Update(batchID, func(s *session.BatchState) {
		s.Previews = previews
		s.Batch.Status = models.BatchStatusClassifying
	})

	start = time.Now()
	res, err := m.classifier.Classify(ctx, previews)
	m.sessions.Update(batchID, func(s *session.BatchState) {
		s.Result = res
	})
	if err != nil {
		fmt.Printf("[Batch %s] ERROR: classification failed: %v\n", shortID(batchID), err)
		m.sessions.Fail(batchID, "classify", err.Error())
		return res, err
	}

	fmt.Printf("[Batch %s] Classified into %d top-level entries in %v\n", shortID(batchID), len(res.Tree), time.Since(start).Round(time.Millisecond))
	m.sessions.SetStatus(batchID, models.BatchStatusClassified)

	if m.ledger != nil {
		if err := m.ledger.Record(ctx, batchID, m.reorganizer.Plan(res.Tree)); err != nil {
			fmt.Printf("[Batch %s] Warning: failed to record plan: %v\n", shortID(batchID), err)
		}
	}
	return res, nil
}

// Reorder moves the staged files of a classified batch into the organized
// folder. The report is returned even when a move fails.
func (m *Manager) Reorder(ctx context.Context, batchID string) (*organize.Report, error) {
	state, ok := m.sessions.Get(batchID)
	if !ok {
		return nil, ErrBatchNotFound
	}
	if state.Result == nil || state.Result.Tree == nil {
		return nil, ErrNotClassified
	}

	uploadDir, err := m.store.BatchDir(batchID)
	if err != nil {
		return nil, ErrBatchNotFound
	}

	report, moveErr := m.reorganizer.Reorganize(state.Result.Tree, uploadDir, m.organizedDir)
	fmt.Printf("[Batch %s] Reorganized: %d moved, %d failed, %d pending\n",
		shortID(batchID), len(report.Moved), len(report.Failed), len(report.Pending))

	moved := make(map[string]bool, len(report.Moved))
	for _, o := range report.Moved {
		moved[o.Filename] = true
	}

	m.sessions.Update(batchID, func(s *session.BatchState) {
		s.Report = report
		for _, f := range s.Batch.Files {
			if moved[f.Name] {
				f.Status = "moved"
			}
		}
		if moveErr != nil {
			s.Batch.Status = models.BatchStatusError
			s.Batch.Errors = append(s.Batch.Errors, models.BatchError{Stage: "reorder", Reason: moveErr.Error()})
			return
		}
		s.Batch.Status = models.BatchStatusOrganized
	})

	if m.ledger != nil {
		if err := m.ledger.MarkOutcomes(ctx, batchID, report); err != nil {
			fmt.Printf("[Batch %s] Warning: failed to record outcomes: %v\n", shortID(batchID), err)
		}
	}
	return report, moveErr
}

// Get returns a snapshot of a batch.
func (m *Manager) Get(batchID string) (session.BatchState, bool) {
	return m.sessions.Get(batchID)
}

// Placements returns the recorded plan of a batch.
func (m *Manager) Placements(ctx context.Context, batchID string) ([]session.PlacementRow, error) {
	if _, ok := m.sessions.Get(batchID); !ok {
		return nil, ErrBatchNotFound
	}
	if m.ledger == nil {
		return nil, ErrNoLedger
	}
	return m.ledger.Placements(ctx, batchID)
}

// Delete drops a batch with its staged files and ledger.
func (m *Manager) Delete(batchID string) error {
	if !m.sessions.Delete(batchID) {
		return ErrBatchNotFound
	}
	return nil
}

func (m *Manager) release(batchID string) {
	if err := m.store.DeleteBatch(batchID); err != nil {
		fmt.Printf("[Batch %s] Warning: failed to delete staged files: %v\n", shortID(batchID), err)
	}
	if m.ledger != nil {
		if err := m.ledger.Remove(batchID); err != nil {
			fmt.Printf("[Batch %s] Warning: failed to delete ledger: %v\n", shortID(batchID), err)
		}
	}
	fmt.Printf("[Batch %s] Released\n", shortID(batchID))
}
