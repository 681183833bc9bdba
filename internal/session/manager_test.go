package session

import (
	"sync"
	"testing"
	"time"

	"github.com/doc-organizer/backend/internal/models"
)

func TestManager_CreateGetUpdate(t *testing.T) {
	m := NewManager()
	m.Create(models.NewBatch("batch-1"))

	state, ok := m.Get("batch-1")
	if !ok {
		t.Fatalf("batch not found")
	}
	if state.Batch.Status != models.BatchStatusPending {
		t.Errorf("expected pending, got %s", state.Batch.Status)
	}

	ok = m.Update("batch-1", func(s *BatchState) {
		s.Previews = []models.Preview{{Filename: "a.txt", Text: "hello"}}
		s.Batch.Status = models.BatchStatusClassified
	})
	if !ok {
		t.Fatalf("update failed")
	}

	state, _ = m.Get("batch-1")
	if len(state.Previews) != 1 || state.Previews[0].Filename != "a.txt" {
		t.Errorf("previews not stored: %+v", state.Previews)
	}
	if state.Batch.Status != models.BatchStatusClassified {
		t.Errorf("expected classified, got %s", state.Batch.Status)
	}

	if _, ok := m.Get("missing"); ok {
		t.Errorf("expected missing batch to be absent")
	}
	if m.Update("missing", func(*BatchState) {}) {
		t.Errorf("expected update of missing batch to fail")
	}
}

func TestManager_SnapshotIsolation(t *testing.T) {
	m := NewManager()
	m.Create(models.NewBatch("batch-1"))

	state, _ := m.Get("batch-1")
	state.Batch.Status = models.BatchStatusOrganized
	state.Batch.Files = append(state.Batch.Files, &models.FileInfo{Name: "x"})

	again, _ := m.Get("batch-1")
	if again.Batch.Status != models.BatchStatusPending {
		t.Errorf("snapshot mutation leaked into manager: %s", again.Batch.Status)
	}
	if len(again.Batch.Files) != 0 {
		t.Errorf("snapshot files leaked into manager")
	}
}

func TestManager_Fail(t *testing.T) {
	m := NewManager()
	m.Create(models.NewBatch("batch-1"))
	m.Fail("batch-1", "classify", "model unreachable")

	state, _ := m.Get("batch-1")
	if state.Batch.Status != models.BatchStatusError {
		t.Errorf("expected error status, got %s", state.Batch.Status)
	}
	if len(state.Batch.Errors) != 1 || state.Batch.Errors[0].Stage != "classify" {
		t.Errorf("unexpected errors: %+v", state.Batch.Errors)
	}
}

func TestManager_DeleteRunsEvictHook(t *testing.T) {
	m := NewManager()
	var evicted []string
	m.OnEvict(func(id string) { evicted = append(evicted, id) })

	m.Create(models.NewBatch("batch-1"))
	if !m.Delete("batch-1") {
		t.Fatalf("delete failed")
	}
	if m.Delete("batch-1") {
		t.Errorf("second delete should report missing batch")
	}
	if len(evicted) != 1 || evicted[0] != "batch-1" {
		t.Errorf("unexpected evictions: %v", evicted)
	}
}

func TestManager_EvictsFinishedWhenFull(t *testing.T) {
	m := NewManagerWithLimit(2)
	var evicted []string
	m.OnEvict(func(id string) { evicted = append(evicted, id) })

	m.Create(models.NewBatch("old"))
	m.SetStatus("old", models.BatchStatusOrganized)

	m.Create(models.NewBatch("busy"))
	m.Create(models.NewBatch("new"))

	if m.Count() != 2 {
		t.Errorf("expected 2 batches, got %d", m.Count())
	}
	if _, ok := m.Get("old"); ok {
		t.Errorf("expected finished batch to be evicted")
	}
	if _, ok := m.Get("busy"); !ok {
		t.Errorf("pending batch must not be evicted")
	}
	if len(evicted) != 1 || evicted[0] != "old" {
		t.Errorf("unexpected evictions: %v", evicted)
	}
}

func TestManager_CleanupOldSessions(t *testing.T) {
	m := NewManager()

	m.Create(models.NewBatch("stale"))
	m.Create(models.NewBatch("recent"))
	m.Create(models.NewBatch("running"))

	m.mu.Lock()
	m.sessions["stale"].Batch.Status = models.BatchStatusClassified
	m.sessions["stale"].LastAccessed = time.Now().Add(-2 * time.Hour)
	m.sessions["recent"].Batch.Status = models.BatchStatusClassified
	m.sessions["running"].LastAccessed = time.Now().Add(-2 * time.Hour)
	m.mu.Unlock()

	if n := m.CleanupOldSessions(time.Hour); n != 1 {
		t.Errorf("expected 1 cleaned batch, got %d", n)
	}
	if _, ok := m.Get("stale"); ok {
		t.Errorf("stale batch should be removed")
	}
	if _, ok := m.Get("recent"); !ok {
		t.Errorf("recent batch should be kept")
	}
	if _, ok := m.Get("running"); !ok {
		t.Errorf("unfinished batch should be kept")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager()
	m.Create(models.NewBatch("batch-1"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Update("batch-1", func(s *BatchState) {
				s.Batch.Files = append(s.Batch.Files, &models.FileInfo{Name: "f"})
			})
		}()
		go func() {
			defer wg.Done()
			m.Get("batch-1")
		}()
	}
	wg.Wait()

	state, _ := m.Get("batch-1")
	if len(state.Batch.Files) != 20 {
		t.Errorf("expected 20 files, got %d", len(state.Batch.Files))
	}
}
