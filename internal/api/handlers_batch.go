// handlers_batch.go - Batch inspection and export handlers
package api

import (
	"errors"
	"net/http"

	"github.com/doc-organizer/backend/internal/upload"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// BatchHandlerImpl implements the BatchHandler interface
type BatchHandlerImpl struct {
	batches BatchService
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batches BatchService) BatchHandler {
	return &BatchHandlerImpl{batches: batches}
}

// HandleGetBatch returns a batch with its previews, tree and move report
func (h *BatchHandlerImpl) HandleGetBatch(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	state, ok := h.batches.Get(id)
	if !ok {
		return NewNotFoundError("batch", id)
	}

	resp := map[string]interface{}{
		"batch":    state.Batch,
		"previews": state.Previews,
	}
	if state.Result != nil {
		resp["tree"] = state.Result.Tree
		resp["raw"] = state.Result.Raw
	}
	if state.Report != nil {
		resp["report"] = state.Report
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleGetPlacements returns the recorded placements as JSON
func (h *BatchHandlerImpl) HandleGetPlacements(c echo.Context) error {
	id := c.Param("id")
	rows, err := h.batches.Placements(c.Request().Context(), id)
	if err != nil {
		return placementsError(id, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"batchId":    id,
		"placements": rows,
	})
}

// HandleGetPlacementsMsgpack returns the recorded placements as MessagePack
func (h *BatchHandlerImpl) HandleGetPlacementsMsgpack(c echo.Context) error {
	id := c.Param("id")
	rows, err := h.batches.Placements(c.Request().Context(), id)
	if err != nil {
		return placementsError(id, err)
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"batchId":    id,
		"placements": rows,
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleDeleteBatch drops a batch with its staged files
func (h *BatchHandlerImpl) HandleDeleteBatch(c echo.Context) error {
	id := c.Param("id")
	if err := h.batches.Delete(id); err != nil {
		if errors.Is(err, upload.ErrBatchNotFound) {
			return NewNotFoundError("batch", id)
		}
		return NewInternalError("failed to delete batch", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func placementsError(id string, err error) error {
	switch {
	case errors.Is(err, upload.ErrBatchNotFound):
		return NewNotFoundError("batch", id)
	case errors.Is(err, upload.ErrNoLedger):
		return NewServiceUnavailableError("placement ledger is disabled")
	default:
		return NewInternalError("failed to read placements", err)
	}
}
