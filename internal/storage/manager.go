package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/doc-organizer/backend/internal/models"
	"github.com/google/uuid"
)

// ErrInvalidName is returned for file names that sanitize to nothing.
var ErrInvalidName = errors.New("invalid file name")

// Store defines the interface for batch-scoped upload storage.
type Store interface {
	CreateBatch() (string, error)
	Save(batchID, name string, r io.Reader) (*models.FileInfo, error)
	List(batchID string) ([]*models.FileInfo, error)
	BatchDir(batchID string) (string, error)
	DeleteBatch(batchID string) error
}

// LocalStore implements Store using the local filesystem. Every batch gets
// its own directory under uploadDir named by the batch ID.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	batches   map[string][]*models.FileInfo
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStore{
		uploadDir: uploadDir,
		batches:   make(map[string][]*models.FileInfo),
	}, nil
}

// CreateBatch allocates a fresh, empty staging directory.
func (s *LocalStore) CreateBatch() (string, error) {
	id := uuid.New().String()
	dir := filepath.Join(s.uploadDir, id)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating batch directory: %w", err)
	}

	s.mu.Lock()
	s.batches[id] = make([]*models.FileInfo, 0)
	s.mu.Unlock()

	return id, nil
}

// Save writes a file into the batch directory under its sanitized name.
// Saving the same name twice overwrites the earlier file.
func (s *LocalStore) Save(batchID, name string, r io.Reader) (*models.FileInfo, error) {
	dir, err := s.BatchDir(batchID)
	if err != nil {
		return nil, err
	}

	clean := SecureFilename(name)
	if clean == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := filepath.Join(dir, clean)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.FileInfo{
		ID:         uuid.New().String(),
		BatchID:    batchID,
		Name:       clean,
		Path:       path,
		Size:       size,
		UploadedAt: time.Now(),
		Status:     "uploaded",
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files := s.batches[batchID]
	for i, existing := range files {
		if existing.Name == clean {
			files[i] = info
			return info, nil
		}
	}
	s.batches[batchID] = append(files, info)

	return info, nil
}

// List returns the files of a batch in upload order.
func (s *LocalStore) List(batchID string) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, ok := s.batches[batchID]
	if !ok {
		return nil, fmt.Errorf("batch not found: %s", batchID)
	}

	out := make([]*models.FileInfo, len(files))
	copy(out, files)
	return out, nil
}

// BatchDir returns the absolute staging directory of a batch.
func (s *LocalStore) BatchDir(batchID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.batches[batchID]; !ok {
		return "", fmt.Errorf("batch not found: %s", batchID)
	}

	return filepath.Join(s.uploadDir, batchID), nil
}

// DeleteBatch removes a batch directory and whatever files are still in it.
func (s *LocalStore) DeleteBatch(batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[batchID]; !ok {
		return fmt.Errorf("batch not found: %s", batchID)
	}

	if err := os.RemoveAll(filepath.Join(s.uploadDir, batchID)); err != nil {
		return fmt.Errorf("deleting batch: %w", err)
	}

	delete(s.batches, batchID)
	return nil
}
