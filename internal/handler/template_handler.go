package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"writer-studio/internal/auth"
	"writer-studio/internal/model"
)

// TemplateGateway is what the template routes need; gateway.Templates
// satisfies it.
type TemplateGateway interface {
	List(ctx context.Context, owner auth.Owner) []*model.Template
	Get(ctx context.Context, owner auth.Owner, id string) (*model.Template, error)
	Create(ctx context.Context, owner auth.Owner, draft model.TemplateDraft) (*model.Template, error)
	Update(ctx context.Context, owner auth.Owner, id string, patch model.TemplatePatch) (*model.Template, error)
	Delete(ctx context.Context, owner auth.Owner, id string) error
}

type TemplateHandler struct {
	templates TemplateGateway
	logger    echo.Logger
}

func NewTemplateHandler(templates TemplateGateway, logger echo.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

func (h *TemplateHandler) ListTemplates(c echo.Context) error {
	owner := CurrentWorkspace(c).Owner()
	return c.JSON(http.StatusOK, map[string][]*model.Template{
		"templates": h.templates.List(c.Request().Context(), owner),
	})
}

func (h *TemplateHandler) CreateTemplate(c echo.Context) error {
	var draft model.TemplateDraft
	if err := c.Bind(&draft); err != nil {
		return RespondError(c, bindError(err))
	}

	created, err := h.templates.Create(c.Request().Context(), CurrentWorkspace(c).Owner(), draft)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *TemplateHandler) UpdateTemplate(c echo.Context) error {
	var patch model.TemplatePatch
	if err := c.Bind(&patch); err != nil {
		return RespondError(c, bindError(err))
	}

	updated, err := h.templates.Update(c.Request().Context(), CurrentWorkspace(c).Owner(), c.Param("id"), patch)
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *TemplateHandler) DeleteTemplate(c echo.Context) error {
	if err := h.templates.Delete(c.Request().Context(), CurrentWorkspace(c).Owner(), c.Param("id")); err != nil {
		return RespondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RenderTemplate fills the template's placeholders from the request body.
func (h *TemplateHandler) RenderTemplate(c echo.Context) error {
	var req struct {
		Values map[string]string `json:"values"`
	}
	if err := c.Bind(&req); err != nil {
		return RespondError(c, bindError(err))
	}

	tpl, err := h.templates.Get(c.Request().Context(), CurrentWorkspace(c).Owner(), c.Param("id"))
	if err != nil {
		return RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"id":      tpl.ID,
		"content": tpl.Render(req.Values),
	})
}
