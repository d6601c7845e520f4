// Package gateway guards the remote store. Every call needs a resolved
// owner, runs under a timeout and resolves to a value or an *apperr.Error.
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

const DefaultTimeout = 15 * time.Second

// Artifacts is the owner-scoped gateway to the artifact store.
type Artifacts struct {
	repo    repository.ArtifactRepository
	timeout time.Duration
	logger  *logger.Logger
}

func NewArtifacts(repo repository.ArtifactRepository, timeout time.Duration, logger *logger.Logger) *Artifacts {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Artifacts{
		repo:    repo,
		timeout: timeout,
		logger:  logger.With("gateway"),
	}
}

// List returns the owner's artifacts newest first. Failures are logged and
// yield an empty slice.
func (g *Artifacts) List(ctx context.Context, owner auth.Owner) []*model.Artifact {
	if !owner.IsKnown() {
		g.logger.Info("Cannot fetch artifacts: user not authenticated")
		return []*model.Artifact{}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	artifacts, err := g.repo.FindByOwner(ctx, owner.ID())
	if err != nil {
		g.logger.Error("Error fetching artifacts:", apperr.NewStore("list artifacts", err))
		return []*model.Artifact{}
	}
	if artifacts == nil {
		artifacts = []*model.Artifact{}
	}
	for _, a := range artifacts {
		a.Status = model.StatusConfirmed
	}
	g.logger.Infof("Fetched %d artifacts for user %s", len(artifacts), owner.ID())
	return artifacts
}

// Create persists draft and returns the stored artifact with its
// store-assigned id and timestamps.
func (g *Artifacts) Create(ctx context.Context, owner auth.Owner, draft model.ArtifactDraft) (*model.Artifact, error) {
	if !owner.IsKnown() {
		return nil, apperr.NewUnauthenticated("create artifact")
	}
	if field := draft.Validate(); field != "" {
		return nil, apperr.NewValidation(field, field+" is required")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	artifact := model.NewArtifact(owner.ID(), draft)
	if err := g.repo.Create(ctx, artifact); err != nil {
		g.logger.Error("Error creating artifact:", err)
		return nil, apperr.NewStore("create artifact", err)
	}
	artifact.Status = model.StatusConfirmed
	g.logger.Info("Artifact created successfully:", artifact.ID)
	return artifact, nil
}

// Delete removes the artifact; nil means the store acknowledged it.
func (g *Artifacts) Delete(ctx context.Context, owner auth.Owner, id string) error {
	if !owner.IsKnown() {
		return apperr.NewUnauthenticated("delete artifact")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.repo.Delete(ctx, owner.ID(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NewNotFound("artifact", id)
		}
		g.logger.Error("Error deleting artifact:", err)
		return apperr.NewStore("delete artifact", err)
	}
	return nil
}

// Update applies patch and returns the row as the store now holds it.
func (g *Artifacts) Update(ctx context.Context, owner auth.Owner, id string, patch model.ArtifactPatch) (*model.Artifact, error) {
	if !owner.IsKnown() {
		return nil, apperr.NewUnauthenticated("update artifact")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	artifact, err := g.repo.FindByID(ctx, owner.ID(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NewNotFound("artifact", id)
		}
		g.logger.Error("Error loading artifact for update:", err)
		return nil, apperr.NewStore("update artifact", err)
	}

	artifact.Apply(patch)
	artifact.UpdatedAt = time.Now().UTC()
	if err := g.repo.Update(ctx, artifact); err != nil {
		g.logger.Error("Error updating artifact:", err)
		return nil, apperr.NewStore("update artifact", err)
	}
	artifact.Status = model.StatusConfirmed
	return artifact, nil
}
