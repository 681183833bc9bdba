package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doc-organizer/backend/internal/classify"
	"github.com/doc-organizer/backend/internal/models"
	"github.com/doc-organizer/backend/internal/organize"
	"github.com/doc-organizer/backend/internal/session"
	"github.com/doc-organizer/backend/internal/storage"
	"github.com/doc-organizer/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	manager  *Manager
	model    *testutil.StubModel
	store    *storage.LocalStore
	sessions *session.Manager
	plans    *session.PlanStore
	dataDir  string
}

func newFixture(t *testing.T, answer string, mode organize.Mode) *fixture {
	t.Helper()
	dataDir := t.TempDir()

	store, err := storage.NewLocalStore(filepath.Join(dataDir, "uploads"))
	require.NoError(t, err)
	plans, err := session.NewPlanStore(filepath.Join(dataDir, "plans"))
	require.NoError(t, err)

	model := testutil.NewStubModel(answer)
	sessions := session.NewManager()
	m := NewManager(store, sessions, classify.NewClassifier(model, nil, classify.ModeStrict), Config{
		OrganizedDir: filepath.Join(dataDir, "organized"),
		Mode:         mode,
		Ledger:       plans,
	})

	return &fixture{manager: m, model: model, store: store, sessions: sessions, plans: plans, dataDir: dataDir}
}

func (f *fixture) stage(t *testing.T, files map[string]string, order ...string) *models.Batch {
	t.Helper()
	batch, err := f.manager.Begin()
	require.NoError(t, err)
	for _, name := range order {
		_, err := f.manager.AddFile(batch.ID, name, strings.NewReader(files[name]))
		require.NoError(t, err)
	}
	return batch
}

func TestManager_ClassifyAndReorder(t *testing.T) {
	f := newFixture(t, `{"Finance": {"report.txt": "Q3 summary"}, "notes.txt": "General"}`, organize.ModeRecursive)
	batch := f.stage(t, map[string]string{
		"report.txt": "Revenue grew in Q3.",
		"notes.txt":  "Buy milk.",
	}, "report.txt", "notes.txt")
	ctx := context.Background()

	res, err := f.manager.Classify(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, res.Tree, 2)

	require.Equal(t, 1, f.model.Calls())
	prompt := f.model.Prompts[0]
	assert.Contains(t, prompt, "Filename: report.txt\nContent: Revenue grew in Q3.\n\n")
	assert.Less(t, strings.Index(prompt, "report.txt"), strings.Index(prompt, "notes.txt"))

	state, ok := f.manager.Get(batch.ID)
	require.True(t, ok)
	assert.Equal(t, models.BatchStatusClassified, state.Batch.Status)
	assert.Len(t, state.Previews, 2)

	report, err := f.manager.Reorder(ctx, batch.ID)
	require.NoError(t, err)
	assert.Len(t, report.Moved, 2)

	organized := f.manager.OrganizedDir()
	assert.FileExists(t, filepath.Join(organized, "Finance", "report.txt"))
	assert.FileExists(t, filepath.Join(organized, "General", "notes.txt"))

	state, _ = f.manager.Get(batch.ID)
	assert.Equal(t, models.BatchStatusOrganized, state.Batch.Status)
	for _, file := range state.Batch.Files {
		assert.Equal(t, "moved", file.Status)
	}

	rows, err := f.manager.Placements(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, session.PlacementMoved, rows[0].Status)
	assert.Equal(t, "Finance", rows[0].Folder)
}

func TestManager_BatchesAreIsolated(t *testing.T) {
	f := newFixture(t, `{"a.txt": "Docs"}`, organize.ModeTopLevel)

	first := f.stage(t, map[string]string{"a.txt": "first"}, "a.txt")
	second := f.stage(t, map[string]string{"a.txt": "second"}, "a.txt")
	ctx := context.Background()

	_, err := f.manager.Classify(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.manager.Classify(ctx, second.ID)
	require.NoError(t, err)

	_, err = f.manager.Reorder(ctx, first.ID)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.manager.OrganizedDir(), "Docs", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	dir, err := f.store.BatchDir(second.ID)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
}

func TestManager_ClassifyFailures(t *testing.T) {
	t.Run("invalid json keeps raw answer", func(t *testing.T) {
		f := newFixture(t, "I am not sure, sorry.", organize.ModeRecursive)
		batch := f.stage(t, map[string]string{"a.txt": "x"}, "a.txt")

		res, err := f.manager.Classify(context.Background(), batch.ID)
		var perr *classify.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "I am not sure, sorry.", res.Raw)

		state, _ := f.manager.Get(batch.ID)
		assert.Equal(t, models.BatchStatusError, state.Batch.Status)
		require.Len(t, state.Batch.Errors, 1)
		assert.Equal(t, "classify", state.Batch.Errors[0].Stage)

		_, err = f.manager.Reorder(context.Background(), batch.ID)
		assert.ErrorIs(t, err, ErrNotClassified)
	})

	t.Run("model error", func(t *testing.T) {
		f := newFixture(t, "", organize.ModeRecursive)
		f.model.Err = errors.New("connection refused")
		batch := f.stage(t, map[string]string{"a.txt": "x"}, "a.txt")

		_, err := f.manager.Classify(context.Background(), batch.ID)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("unknown batch", func(t *testing.T) {
		f := newFixture(t, "{}", organize.ModeRecursive)
		_, err := f.manager.Classify(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrBatchNotFound)
		_, err = f.manager.Reorder(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrBatchNotFound)
		_, err = f.manager.AddFile("nope", "a.txt", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrBatchNotFound)
	})
}

func TestManager_ReorderPartialFailure(t *testing.T) {
	f := newFixture(t, `{"a.txt": "One", "ghost.txt": "Two", "c.txt": "Three"}`, organize.ModeTopLevel)
	batch := f.stage(t, map[string]string{"a.txt": "a", "c.txt": "c"}, "a.txt", "c.txt")
	ctx := context.Background()

	_, err := f.manager.Classify(ctx, batch.ID)
	require.NoError(t, err)

	report, err := f.manager.Reorder(ctx, batch.ID)
	var merr *organize.MoveError
	require.True(t, errors.As(err, &merr))
	assert.Len(t, report.Moved, 1)
	assert.Len(t, report.Pending, 1)

	state, _ := f.manager.Get(batch.ID)
	assert.Equal(t, models.BatchStatusError, state.Batch.Status)

	rows, err := f.manager.Placements(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{session.PlacementMoved, session.PlacementFailed, session.PlacementPending},
		[]string{rows[0].Status, rows[1].Status, rows[2].Status})
}

func TestManager_DeleteReleasesFiles(t *testing.T) {
	f := newFixture(t, `{"a.txt": "Docs"}`, organize.ModeRecursive)
	batch := f.stage(t, map[string]string{"a.txt": "x"}, "a.txt")
	ctx := context.Background()

	_, err := f.manager.Classify(ctx, batch.ID)
	require.NoError(t, err)

	dir, err := f.store.BatchDir(batch.ID)
	require.NoError(t, err)

	require.NoError(t, f.manager.Delete(batch.ID))
	assert.NoDirExists(t, dir)
	assert.NoFileExists(t, f.plans.Path(batch.ID))
	assert.ErrorIs(t, f.manager.Delete(batch.ID), ErrBatchNotFound)
}

func TestManager_ReuploadReplacesFile(t *testing.T) {
	f := newFixture(t, "{}", organize.ModeRecursive)
	batch, err := f.manager.Begin()
	require.NoError(t, err)

	_, err = f.manager.AddFile(batch.ID, "a.txt", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = f.manager.AddFile(batch.ID, "b.txt", strings.NewReader("two"))
	require.NoError(t, err)
	_, err = f.manager.AddFile(batch.ID, "a.txt", strings.NewReader("three"))
	require.NoError(t, err)

	state, _ := f.manager.Get(batch.ID)
	assert.Equal(t, []string{"a.txt", "b.txt"}, state.Batch.FileNames())
}
