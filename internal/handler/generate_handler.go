package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"writer-studio/internal/generate"
	"writer-studio/internal/model"
)

type GenerateHandler struct {
	pipeline *generate.Pipeline
	logger   echo.Logger
}

func NewGenerateHandler(pipeline *generate.Pipeline, logger echo.Logger) *GenerateHandler {
	return &GenerateHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

type generateEmailRequest struct {
	generate.EmailForm
	Subject   string   `json:"subject"`
	Recipient string   `json:"recipient"`
	Tags      []string `json:"tags"`
	// Save stores the draft in the collection right away.
	Save bool `json:"save"`
}

// GenerateEmail returns a draft built from the generator's reply, saving
// it when the request asks to.
func (h *GenerateHandler) GenerateEmail(c echo.Context) error {
	var req generateEmailRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, bindError(err))
	}
	form := req.EmailForm
	form.Subject = req.Subject
	form.Recipient = req.Recipient
	form.Tags = req.Tags

	ctx := c.Request().Context()
	if req.Save {
		saved, err := h.pipeline.ComposeEmail(ctx, form, CurrentWorkspace(c).Artifacts)
		if err != nil {
			return RespondError(c, err)
		}
		return c.JSON(http.StatusCreated, saved)
	}

	draft, err := h.pipeline.DraftEmail(ctx, form)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(http.StatusOK, draft)
}

// GeneratePrompt optimizes a structured prompt and appends both turns to
// the session transcript.
func (h *GenerateHandler) GeneratePrompt(c echo.Context) error {
	var form generate.PromptForm
	if err := c.Bind(&form); err != nil {
		return RespondError(c, bindError(err))
	}

	msgs, err := h.pipeline.OptimizePrompt(c.Request().Context(), form, CurrentWorkspace(c).Transcript)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]model.Message{"messages": msgs})
}

type savePromptRequest struct {
	Title string              `json:"title"`
	Form  generate.PromptForm `json:"form"`
}

// SavePrompt stores the latest optimized prompt as a prompt artifact.
func (h *GenerateHandler) SavePrompt(c echo.Context) error {
	var req savePromptRequest
	if err := c.Bind(&req); err != nil {
		return RespondError(c, bindError(err))
	}

	ws := CurrentWorkspace(c)
	saved, err := h.pipeline.SavePrompt(c.Request().Context(), req.Title, req.Form, ws.Transcript, ws.Artifacts)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, saved)
}

func (h *GenerateHandler) GetMessages(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]model.Message{
		"messages": CurrentWorkspace(c).Transcript.Messages(),
	})
}

// ClearMessages starts a new prompt session.
func (h *GenerateHandler) ClearMessages(c echo.Context) error {
	CurrentWorkspace(c).Transcript.Reset()
	return c.NoContent(http.StatusNoContent)
}

// GeneratorStatus reports which generator webhooks are reachable.
func (h *GenerateHandler) GeneratorStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.pipeline.Status(c.Request().Context()))
}
