// handlers_assistant.go - Free-form model prompt handler
package api

import (
	"encoding/json"
	"net/http"

	"github.com/doc-organizer/backend/internal/llm"
	"github.com/labstack/echo/v4"
)

// AssistantHandlerImpl implements the AssistantHandler interface
type AssistantHandlerImpl struct {
	model llm.Client
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(model llm.Client) AssistantHandler {
	return &AssistantHandlerImpl{model: model}
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

// HandleAskAI sends the prompt to the model and returns its answer as
// {"response": ...}. Model failures are reported as {"error": ...}.
func (h *AssistantHandlerImpl) HandleAskAI(c echo.Context) error {
	var req askRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil || req.Prompt == "" {
		return c.String(http.StatusBadRequest, "No prompt provided")
	}

	response, err := h.model.Generate(c.Request().Context(), req.Prompt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"response": response})
}
