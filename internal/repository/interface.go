package repository

import (
	"context"
	"errors"

	"writer-studio/internal/model"
)

// ErrNotFound is returned when a row does not exist for the given owner.
var ErrNotFound = errors.New("record not found")

// ArtifactRepository defines owner-scoped artifact row operations.
// Every method matches rows on both owner and id.
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *model.Artifact) error
	// FindByOwner returns the owner's artifacts newest first.
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Artifact, error)
	FindByID(ctx context.Context, ownerID, id string) (*model.Artifact, error)
	Update(ctx context.Context, artifact *model.Artifact) error
	Delete(ctx context.Context, ownerID, id string) error
}

// ConversationRepository defines owner-scoped conversation operations.
// Conversations are written whole; there is no per-message update.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *model.Conversation) error
	// FindByOwner returns the owner's conversations newest first.
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Conversation, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// TemplateRepository stores email templates. Reads see public templates
// plus the caller's own; writes match on creator and id.
type TemplateRepository interface {
	Create(ctx context.Context, template *model.Template) error
	// FindVisible returns public templates and those created by ownerID,
	// newest first. An empty ownerID yields public templates only.
	FindVisible(ctx context.Context, ownerID string) ([]*model.Template, error)
	FindByID(ctx context.Context, ownerID, id string) (*model.Template, error)
	Update(ctx context.Context, template *model.Template) error
	Delete(ctx context.Context, ownerID, id string) error
}
