// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"
	"io"

	"github.com/doc-organizer/backend/internal/classify"
	"github.com/doc-organizer/backend/internal/models"
	"github.com/doc-organizer/backend/internal/organize"
	"github.com/doc-organizer/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// PageHandler serves the browser workflow
type PageHandler interface {
	HandleIndex(c echo.Context) error
	HandleUpload(c echo.Context) error
	HandleReorder(c echo.Context) error
}

// AssistantHandler forwards free-form prompts to the model
type AssistantHandler interface {
	HandleAskAI(c echo.Context) error
}

// BatchHandler exposes batch state as JSON
type BatchHandler interface {
	HandleGetBatch(c echo.Context) error
	HandleGetPlacements(c echo.Context) error
	HandleGetPlacementsMsgpack(c echo.Context) error
	HandleDeleteBatch(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// BatchService defines what the handlers need from the batch pipeline.
// This allows mocking in tests
type BatchService interface {
	Begin() (*models.Batch, error)
	AddFile(batchID, name string, r io.Reader) (*models.FileInfo, error)
	Classify(ctx context.Context, batchID string) (*classify.Result, error)
	Reorder(ctx context.Context, batchID string) (*organize.Report, error)
	Get(batchID string) (session.BatchState, bool)
	Placements(ctx context.Context, batchID string) ([]session.PlacementRow, error)
	Delete(batchID string) error
}
