// handlers_pages.go - Upload form, classification and reorder handlers
package api

import (
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"

	"github.com/doc-organizer/backend/internal/classify"
	"github.com/doc-organizer/backend/internal/organize"
	"github.com/doc-organizer/backend/internal/storage"
	"github.com/doc-organizer/backend/internal/upload"
	"github.com/doc-organizer/backend/internal/web"
	"github.com/labstack/echo/v4"
)

// ReorderMessage is the body returned once files were moved.
const ReorderMessage = "Files moved! Check the 'organized/' folder on your system."

// PageHandlerImpl implements the PageHandler interface
type PageHandlerImpl struct {
	batches BatchService
}

// NewPageHandler creates a new page handler instance
func NewPageHandler(batches BatchService) PageHandler {
	return &PageHandlerImpl{batches: batches}
}

// HandleIndex renders the upload form
func (h *PageHandlerImpl) HandleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, web.IndexPage, nil)
}

// HandleUpload stages every uploaded file in a new batch, classifies the
// batch and renders the proposed tree. Only the first file of each form
// field is used.
func (h *PageHandlerImpl) HandleUpload(c echo.Context) error {
	reader, err := c.Request().MultipartReader()
	if err != nil {
		return NewBadRequestError("expected multipart form data", err)
	}

	batch, err := h.batches.Begin()
	if err != nil {
		return NewInternalError("failed to create batch", err)
	}

	seen := make(map[string]bool)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.discard(batch.ID)
			return NewBadRequestError("invalid multipart body", err)
		}

		if part.FileName() == "" || seen[part.FormName()] {
			part.Close()
			continue
		}
		seen[part.FormName()] = true

		_, err = h.batches.AddFile(batch.ID, part.FileName(), part)
		part.Close()
		if errors.Is(err, storage.ErrInvalidName) {
			fmt.Printf("[Upload %s] Skipping %q: %v\n", shortID(batch.ID), part.FileName(), err)
			continue
		}
		if err != nil {
			h.discard(batch.ID)
			return NewInternalError("failed to store upload", err)
		}
	}

	res, err := h.batches.Classify(c.Request().Context(), batch.ID)
	if err != nil {
		var parseErr *classify.ParseError
		var schemaErr *classify.SchemaError
		if errors.As(err, &parseErr) || errors.As(err, &schemaErr) {
			raw := ""
			if res != nil {
				raw = res.Raw
			}
			return c.HTML(http.StatusOK, invalidJSONPage(raw, err))
		}
		return NewBadGatewayError("model request failed", err)
	}

	state, _ := h.batches.Get(batch.ID)
	files := make([]string, 0)
	if state.Batch != nil {
		files = state.Batch.FileNames()
	}

	return c.Render(http.StatusOK, web.StructurePage, web.StructureView{
		BatchID: batch.ID,
		Tree:    res.Tree,
		Files:   files,
	})
}

// discard drops a batch whose upload did not complete.
func (h *PageHandlerImpl) discard(batchID string) {
	if err := h.batches.Delete(batchID); err != nil {
		fmt.Printf("[Upload %s] Warning: failed to discard batch: %v\n", shortID(batchID), err)
	}
}

// reorderRequest carries the batch to reorganize, as form or JSON field
type reorderRequest struct {
	BatchID string `json:"batchId" form:"batchId"`
}

func (r *reorderRequest) validate() error {
	if r.BatchID == "" {
		return NewValidationError("batchId")
	}
	return nil
}

// HandleReorder moves the files of a classified batch into the organized folder
func (h *PageHandlerImpl) HandleReorder(c echo.Context) error {
	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	_, err := h.batches.Reorder(c.Request().Context(), req.BatchID)
	var moveErr *organize.MoveError
	switch {
	case err == nil:
		return c.String(http.StatusOK, ReorderMessage)
	case errors.Is(err, upload.ErrBatchNotFound):
		return NewNotFoundError("batch", req.BatchID)
	case errors.Is(err, upload.ErrNotClassified):
		return NewConflictError("batch has no folder structure to apply")
	case errors.As(err, &moveErr):
		return NewInternalError(moveErr.Error(), moveErr.Err)
	default:
		return NewInternalError("failed to reorganize files", err)
	}
}

// invalidJSONPage shows the unparsed model answer next to the parse error.
func invalidJSONPage(raw string, err error) string {
	return fmt.Sprintf("<pre>Invalid JSON from AI:\n\n%s\n\nError: %s</pre>",
		html.EscapeString(raw), html.EscapeString(err.Error()))
}

// shortID safely truncates an ID for logging
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
