package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/doc-organizer/backend/internal/classify"
	"github.com/doc-organizer/backend/internal/config"
	"github.com/doc-organizer/backend/internal/llm"
	"github.com/doc-organizer/backend/internal/organize"
	"github.com/doc-organizer/backend/internal/session"
	"github.com/doc-organizer/backend/internal/storage"
	"github.com/doc-organizer/backend/internal/testutil"
	"github.com/doc-organizer/backend/internal/upload"
	"github.com/labstack/echo/v4"
)

type testEnv struct {
	echo     *echo.Echo
	model    *testutil.StubModel
	batches  *upload.Manager
	sessions *session.Manager
	dataDir  string
}

// newTestEnv builds a server whose pipeline runs with the shipped default modes.
func newTestEnv(t *testing.T, answer string) *testEnv {
	t.Helper()
	model := testutil.NewStubModel(answer)
	return newTestEnvWithClient(t, model, model)
}

func newTestEnvWithClient(t *testing.T, client llm.Client, stub *testutil.StubModel) *testEnv {
	t.Helper()
	defaults := config.DefaultConfig()
	decodeMode, err := classify.ParseMode(defaults.Classifier.Mode)
	if err != nil {
		t.Fatalf("invalid default classifier mode: %v", err)
	}
	organizeMode, err := organize.ParseMode(defaults.Classifier.OrganizeMode)
	if err != nil {
		t.Fatalf("invalid default organize mode: %v", err)
	}
	return buildTestEnv(t, client, stub, decodeMode, organizeMode)
}

// newTestEnvWithModes builds a server with explicit decoding and organize modes.
func newTestEnvWithModes(t *testing.T, answer string, decodeMode classify.Mode, organizeMode organize.Mode) *testEnv {
	t.Helper()
	model := testutil.NewStubModel(answer)
	return buildTestEnv(t, model, model, decodeMode, organizeMode)
}

func buildTestEnv(t *testing.T, client llm.Client, stub *testutil.StubModel, decodeMode classify.Mode, organizeMode organize.Mode) *testEnv {
	t.Helper()
	dataDir := t.TempDir()

	store, err := storage.NewLocalStore(filepath.Join(dataDir, "uploads"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	plans, err := session.NewPlanStore(filepath.Join(dataDir, "plans"))
	if err != nil {
		t.Fatalf("failed to create plan store: %v", err)
	}

	sessions := session.NewManager()
	batches := upload.NewManager(store, sessions, classify.NewClassifier(client, nil, decodeMode), upload.Config{
		OrganizedDir: filepath.Join(dataDir, "organized"),
		Mode:         organizeMode,
		Ledger:       plans,
	})

	e, err := NewServer(&Dependencies{Batches: batches, Model: client, Version: "test"}, MiddlewareConfig{})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	return &testEnv{echo: e, model: stub, batches: batches, sessions: sessions, dataDir: dataDir}
}

type uploadFile struct {
	field   string
	name    string
	content string
}

func multipartBody(t *testing.T, files ...uploadFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write([]byte(f.content))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}
