// Package session keeps the state of every upload batch between the upload
// and the reorder request.
package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/doc-organizer/backend/internal/classify"
	"github.com/doc-organizer/backend/internal/models"
	"github.com/doc-organizer/backend/internal/organize"
)

// MaxSessions limits how many batches are kept in memory.
const MaxSessions = 50

// SessionMaxAge is how long to keep finished batches before cleanup.
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow protects batches that were used recently.
const SessionKeepAliveWindow = 5 * time.Minute

// shortID safely truncates an ID for logging.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// BatchState holds everything known about one batch.
type BatchState struct {
	Batch        *models.Batch
	Previews     []models.Preview
	Result       *classify.Result
	Report       *organize.Report
	LastAccessed time.Time
}

// EvictFunc is called after a batch is dropped from the manager.
type EvictFunc func(batchID string)

// Manager tracks batches by ID.
type Manager struct {
	sessions    map[string]*BatchState
	mu          sync.RWMutex
	maxSessions int
	onEvict     EvictFunc
}

// NewManager creates a manager holding at most MaxSessions batches.
func NewManager() *Manager {
	return NewManagerWithLimit(MaxSessions)
}

// NewManagerWithLimit creates a manager with a custom capacity.
func NewManagerWithLimit(limit int) *Manager {
	if limit <= 0 {
		limit = MaxSessions
	}
	return &Manager{
		sessions:    make(map[string]*BatchState),
		maxSessions: limit,
	}
}

// OnEvict registers a hook run for every removed batch, e.g. to delete its
// files.
func (m *Manager) OnEvict(fn EvictFunc) {
	m.mu.Lock()
	m.onEvict = fn
	m.mu.Unlock()
}

// Create registers a new batch, evicting old finished batches when the
// manager is full.
func (m *Manager) Create(batch *models.Batch) {
	evicted := m.cleanupOldSessionsIfNeeded()

	m.mu.Lock()
	m.sessions[batch.ID] = &BatchState{
		Batch:        batch,
		LastAccessed: time.Now(),
	}
	m.mu.Unlock()

	m.notify(evicted)
}

// Get returns a snapshot of a batch and marks it as used.
func (m *Manager) Get(id string) (BatchState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return BatchState{}, false
	}
	state.LastAccessed = time.Now()

	snapshot := *state
	batch := *state.Batch
	batch.Files = append([]*models.FileInfo(nil), state.Batch.Files...)
	batch.Errors = append([]models.BatchError(nil), state.Batch.Errors...)
	snapshot.Batch = &batch
	return snapshot, true
}

// Update runs fn with exclusive access to the batch state.
func (m *Manager) Update(id string, fn func(*BatchState)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	fn(state)
	state.LastAccessed = time.Now()
	return true
}

// SetStatus moves a batch to a new lifecycle stage.
func (m *Manager) SetStatus(id string, status models.BatchStatus) bool {
	return m.Update(id, func(s *BatchState) {
		s.Batch.Status = status
	})
}

// Fail marks a batch as failed and records why.
func (m *Manager) Fail(id, stage, reason string) bool {
	return m.Update(id, func(s *BatchState) {
		s.Batch.Status = models.BatchStatusError
		s.Batch.Errors = append(s.Batch.Errors, models.BatchError{Stage: stage, Reason: reason})
	})
}

// Delete removes a batch and runs the eviction hook.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.notify([]string{id})
	}
	return ok
}

// Count returns the number of tracked batches.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupOldSessions removes finished batches not used within maxAge,
// keeping any accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	m.mu.Lock()

	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-SessionKeepAliveWindow)

	var evicted []string
	for id, state := range m.sessions {
		if !finished(state.Batch.Status) {
			continue
		}
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, id)
			fmt.Printf("[Manager] Cleaned up aged batch %s (last accessed: %s ago)\n",
				shortID(id), now.Sub(state.LastAccessed).Round(time.Second))
		}
	}
	m.mu.Unlock()

	m.notify(evicted)
	return len(evicted)
}

// cleanupOldSessionsIfNeeded drops the least recently used finished
// batches until there is room for one more.
func (m *Manager) cleanupOldSessionsIfNeeded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < m.maxSessions {
		return nil
	}

	candidates := make([]*BatchState, 0, len(m.sessions))
	for _, state := range m.sessions {
		if finished(state.Batch.Status) {
			candidates = append(candidates, state)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastAccessed.Before(candidates[j].LastAccessed)
	})

	toFree := len(m.sessions) - m.maxSessions + 1
	var evicted []string
	for _, state := range candidates {
		if len(evicted) >= toFree {
			break
		}
		id := state.Batch.ID
		delete(m.sessions, id)
		evicted = append(evicted, id)
		fmt.Printf("[Manager] Evicted batch %s to stay under %d batches\n", shortID(id), m.maxSessions)
	}
	return evicted
}

func (m *Manager) notify(ids []string) {
	m.mu.RLock()
	fn := m.onEvict
	m.mu.RUnlock()

	if fn == nil {
		return
	}
	for _, id := range ids {
		fn(id)
	}
}

func finished(status models.BatchStatus) bool {
	switch status {
	case models.BatchStatusClassified, models.BatchStatusOrganized, models.BatchStatusError:
		return true
	}
	return false
}
