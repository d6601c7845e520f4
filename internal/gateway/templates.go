package gateway

import (
	"context"
	"errors"
	"time"

	"writer-studio/internal/apperr"
	"writer-studio/internal/auth"
	"writer-studio/internal/logger"
	"writer-studio/internal/model"
	"writer-studio/internal/repository"
)

// Templates is the gateway to email templates. Anyone may read public
// templates; a known owner also sees and manages their own.
type Templates struct {
	repo    repository.TemplateRepository
	timeout time.Duration
	logger  *logger.Logger
}

func NewTemplates(repo repository.TemplateRepository, timeout time.Duration, logger *logger.Logger) *Templates {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Templates{
		repo:    repo,
		timeout: timeout,
		logger:  logger.With("gateway"),
	}
}

func ownerKey(owner auth.Owner) string {
	if owner.IsKnown() {
		return owner.ID()
	}
	return ""
}

// List returns the templates visible to owner, newest first. A failed
// read is logged and yields an empty list.
func (g *Templates) List(ctx context.Context, owner auth.Owner) []*model.Template {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	templates, err := g.repo.FindVisible(ctx, ownerKey(owner))
	if err != nil {
		g.logger.Error("Error fetching templates:", apperr.NewStore("list templates", err))
		return []*model.Template{}
	}
	if templates == nil {
		templates = []*model.Template{}
	}
	return templates
}

func (g *Templates) Get(ctx context.Context, owner auth.Owner, id string) (*model.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	template, err := g.repo.FindByID(ctx, ownerKey(owner), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound("template", id)
		}
		g.logger.Error("Error loading template:", err)
		return nil, apperr.NewStore("load template", err)
	}
	return template, nil
}

func (g *Templates) Create(ctx context.Context, owner auth.Owner, draft model.TemplateDraft) (*model.Template, error) {
	if !owner.IsKnown() {
		return nil, apperr.NewUnauthenticated("create template")
	}
	if field := draft.Validate(); field != "" {
		return nil, apperr.NewValidation(field, field+" is required")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	template := model.NewTemplate(owner.ID(), draft)
	if err := g.repo.Create(ctx, template); err != nil {
		g.logger.Error("Error creating template:", err)
		return nil, apperr.NewStore("create template", err)
	}
	g.logger.Info("Template created successfully:", template.ID)
	return template, nil
}

// Update applies patch to a template owner created. Public templates of
// other creators read as not found here.
func (g *Templates) Update(ctx context.Context, owner auth.Owner, id string, patch model.TemplatePatch) (*model.Template, error) {
	if !owner.IsKnown() {
		return nil, apperr.NewUnauthenticated("update template")
	}

	template, err := g.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if template.CreatedBy != owner.ID() {
		return nil, apperr.NewNotFound("template", id)
	}

	template.Apply(patch)
	if field := (model.TemplateDraft{Name: template.Name, Body: template.Body}).Validate(); field != "" {
		return nil, apperr.NewValidation(field, field+" is required")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.repo.Update(ctx, template); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound("template", id)
		}
		g.logger.Error("Error updating template:", err)
		return nil, apperr.NewStore("update template", err)
	}
	return template, nil
}

func (g *Templates) Delete(ctx context.Context, owner auth.Owner, id string) error {
	if !owner.IsKnown() {
		return apperr.NewUnauthenticated("delete template")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.repo.Delete(ctx, owner.ID(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NewNotFound("template", id)
		}
		g.logger.Error("Error deleting template:", err)
		return apperr.NewStore("delete template", err)
	}
	return nil
}
