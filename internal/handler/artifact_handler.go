package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"writer-studio/internal/apperr"
	"writer-studio/internal/export"
	"writer-studio/internal/gmail"
	"writer-studio/internal/model"
	"writer-studio/internal/view"
)

type ArtifactHandler struct {
	drafts gmail.Factory
	logger echo.Logger
}

func NewArtifactHandler(drafts gmail.Factory, logger echo.Logger) *ArtifactHandler {
	return &ArtifactHandler{
		drafts: drafts,
		logger: logger,
	}
}

type listResponse[T any] struct {
	Items   []T        `json:"items"`
	Shown   int        `json:"shown"`
	Total   int        `json:"total"`
	Summary string     `json:"summary"`
	Query   view.Query `json:"query"`
}

// ListArtifacts returns the collection filtered and sorted by the query
// parameters.
func (h *ArtifactHandler) ListArtifacts(c echo.Context) error {
	ws := CurrentWorkspace(c)
	all := ws.Artifacts.Snapshot()
	q := view.ParseQuery(c.QueryParams())
	shown := view.Artifacts(all, q)
	// The caption counts within the requested kind.
	total := len(view.OfKind(all, q.Kind))

	noun := "items"
	switch q.Kind {
	case model.KindEmail:
		noun = "emails"
	case model.KindPrompt:
		noun = "prompts"
	}

	return c.JSON(http.StatusOK, listResponse[*model.Artifact]{
		Items:   shown,
		Shown:   len(shown),
		Total:   total,
		Summary: view.Summary(len(shown), total, noun),
		Query:   q,
	})
}

func (h *ArtifactHandler) GetCategories(c echo.Context) error {
	ws := CurrentWorkspace(c)
	return c.JSON(http.StatusOK, map[string][]string{
		"categories": view.Categories(ws.Artifacts.Snapshot()),
	})
}

func (h *ArtifactHandler) CreateArtifact(c echo.Context) error {
	var draft model.ArtifactDraft
	if err := c.Bind(&draft); err != nil {
		return RespondError(c, bindError(err))
	}

	created, err := CurrentWorkspace(c).Artifacts.Add(c.Request().Context(), draft)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *ArtifactHandler) DeleteArtifact(c echo.Context) error {
	ws := CurrentWorkspace(c)
	id := c.Param("id")
	if _, ok := ws.Artifacts.Get(id); !ok {
		return RespondError(c, apperr.NewNotFound("artifact", id))
	}

	if err := ws.Artifacts.Remove(c.Request().Context(), id); err != nil {
		return RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ArtifactHandler) ToggleFavorite(c echo.Context) error {
	id := c.Param("id")
	updated, err := CurrentWorkspace(c).Artifacts.ToggleFavorite(c.Request().Context(), id)
	if err != nil {
		return RespondError(c, err)
	}
	if updated == nil {
		return RespondError(c, apperr.NewNotFound("artifact", id))
	}
	return c.JSON(http.StatusOK, updated)
}

// ExportArtifact downloads one artifact as text (default) or HTML.
func (h *ArtifactHandler) ExportArtifact(c echo.Context) error {
	id := c.Param("id")
	a, ok := CurrentWorkspace(c).Artifacts.Get(id)
	if !ok {
		return RespondError(c, apperr.NewNotFound("artifact", id))
	}

	switch format := c.QueryParam("format"); format {
	case "", "txt":
		attach(c, export.ArtifactFilename(a, time.Now(), "txt"))
		return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(export.ArtifactText(a)))
	case "html":
		page, err := export.ArtifactHTML(a)
		if err != nil {
			return RespondError(c, apperr.NewInternal(err))
		}
		attach(c, export.ArtifactFilename(a, time.Now(), "html"))
		return c.HTML(http.StatusOK, page)
	default:
		return RespondError(c, apperr.NewValidation("format", fmt.Sprintf("unsupported export format %q", format)))
	}
}

// CreateGmailDraft copies an email artifact into the user's Gmail drafts.
func (h *ArtifactHandler) CreateGmailDraft(c echo.Context) error {
	ws := CurrentWorkspace(c)
	id := c.Param("id")
	a, ok := ws.Artifacts.Get(id)
	if !ok {
		return RespondError(c, apperr.NewNotFound("artifact", id))
	}
	if a.Kind != model.KindEmail {
		return RespondError(c, apperr.NewValidation("kind", "Only emails can be sent to Gmail"))
	}

	token := ws.AccessToken()
	if token == "" {
		return RespondError(c, apperr.NewUnauthenticated("create Gmail draft without a Google login"))
	}

	client, err := h.drafts(token)
	if err != nil {
		return RespondError(c, apperr.NewInternal(err))
	}
	draftID, err := client.CreateDraft(c.Request().Context(), a)
	if err != nil {
		h.logger.Error("Failed to create Gmail draft:", err)
		return RespondError(c, apperr.NewStore("create Gmail draft", err))
	}
	return c.JSON(http.StatusCreated, map[string]string{"draft_id": draftID})
}

func attach(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
}
