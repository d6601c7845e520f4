// Package collection keeps the in-session view of one owner's saved
// artifacts and conversations in step with the remote store.
package collection

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"writer-studio/internal/apperr"
	"writer-studio/internal/auth"
	"writer-studio/internal/logger"
	"writer-studio/internal/model"
)

// ArtifactGateway is the remote side of the artifact collection.
type ArtifactGateway interface {
	List(ctx context.Context, owner auth.Owner) []*model.Artifact
	Create(ctx context.Context, owner auth.Owner, draft model.ArtifactDraft) (*model.Artifact, error)
	Delete(ctx context.Context, owner auth.Owner, id string) error
	Update(ctx context.Context, owner auth.Owner, id string, patch model.ArtifactPatch) (*model.Artifact, error)
}

// Store is the ordered, newest-first artifact collection of the current
// owner. New entries appear at once as pending and are confirmed or
// withdrawn when the remote call settles.
type Store struct {
	core[*model.Artifact]

	gateway  ArtifactGateway
	notifier Notifier
	logger   *logger.Logger
}

func NewStore(gateway ArtifactGateway, notifier Notifier, logger *logger.Logger) *Store {
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	return &Store{
		core:     newCore[*model.Artifact](),
		gateway:  gateway,
		notifier: notifier,
		logger:   logger.With("collection"),
	}
}

// Load replaces the entries with owner's remote collection. Observing the
// same owner twice does nothing; an unresolved or absent owner clears the
// collection without contacting the store.
func (s *Store) Load(ctx context.Context, owner auth.Owner) {
	if s.load(ctx, owner, s.gateway.List) {
		s.logger.Debug("Loaded artifacts for", owner, "count:", s.Len())
	}
}

// Follow reloads on every owner change reported by provider.
func (s *Store) Follow(ctx context.Context, provider auth.Provider) (cancel func()) {
	return s.follow(ctx, provider, s.Load)
}

// Add saves draft. The returned artifact is the confirmed remote record.
func (s *Store) Add(ctx context.Context, draft model.ArtifactDraft) (*model.Artifact, error) {
	if field := draft.Validate(); field != "" {
		err := apperr.NewValidation(field, incompleteMessage(draft.Kind))
		n := failure("create", "", err)
		n.Draft = &draft
		s.notifier.Notify(n)
		return nil, err
	}

	owner, epoch := s.session()
	if !owner.IsKnown() {
		err := apperr.NewUnauthenticated("save artifact")
		n := failure("create", "", err)
		n.Message = "Please log in to save to your history"
		n.Draft = &draft
		s.notifier.Notify(n)
		return nil, err
	}

	provisional := model.NewArtifact(owner.ID(), draft)
	provisional.ID = ulid.Make().String()
	provisional.Status = model.StatusPending
	if !s.apply(epoch, func(items []*model.Artifact) []*model.Artifact {
		return prepend(items, provisional)
	}) {
		return nil, apperr.NewUnauthenticated("save artifact")
	}

	created, err := s.gateway.Create(ctx, owner, draft)
	if err != nil {
		s.apply(epoch, func(items []*model.Artifact) []*model.Artifact {
			return without(items, provisional.ID)
		})
		s.logger.Warn("Save failed, withdrew provisional entry", provisional.ID+":", err)
		n := failure("create", "", err)
		n.Draft = &draft
		s.notifier.Notify(n)
		return nil, err
	}

	created = created.Clone()
	created.Status = model.StatusConfirmed
	s.apply(epoch, func(items []*model.Artifact) []*model.Artifact {
		if indexOf(items, provisional.ID) < 0 {
			return prepend(items, created)
		}
		return replace(items, provisional.ID, created)
	})
	s.notifier.Notify(success("create", created.ID, "Saved to history!"))
	return created.Clone(), nil
}

// Remove deletes id remotely and then locally. An id that is not in the
// collection is a no-op and makes no remote call.
func (s *Store) Remove(ctx context.Context, id string) error {
	current, owner, epoch, ok := s.lookup(id)
	if !ok {
		return nil
	}
	if current.IsPending() {
		return apperr.NewConflict("artifact is still saving")
	}

	err := s.gateway.Delete(ctx, owner, id)
	// Already gone remotely: converge by dropping it here too.
	if err != nil && !apperr.Is(err, apperr.CodeNotFound) {
		s.notifier.Notify(failure("delete", id, err))
		return err
	}

	s.apply(epoch, func(items []*model.Artifact) []*model.Artifact {
		return without(items, id)
	})
	s.notifier.Notify(success("delete", id, "Deleted"))
	return nil
}

// ToggleFavorite flips the favorite flag at once and rolls it back if the
// store rejects the change. An absent id is a no-op returning nil, nil.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (*model.Artifact, error) {
	current, owner, epoch, ok := s.lookup(id)
	if !ok {
		return nil, nil
	}
	if current.IsPending() {
		return nil, apperr.NewConflict("artifact has a change in flight")
	}

	optimistic := current.Clone()
	optimistic.IsFavorite = !current.IsFavorite
	optimistic.UpdatedAt = time.Now().UTC()
	optimistic.Status = model.StatusPending
	s.apply(epoch, func(items []*model.Artifact) []*model.Artifact {
		return replace(items, id, optimistic)
	})

	favorite := optimistic.IsFavorite
	updated, err := s.gateway.Update(ctx, owner, id, model.ArtifactPatch{IsFavorite: &favorite})
	if err != nil {
		s.apply(epoch, func(items []*model.Artifact) []*model.Artifact {
			if i := indexOf(items, id); i < 0 || items[i] != optimistic {
				return items
			}
			return replace(items, id, current)
		})
		s.notifier.Notify(failure("favorite", id, err))
		return nil, err
	}

	updated = updated.Clone()
	updated.Status = model.StatusConfirmed
	s.apply(epoch, func(items []*model.Artifact) []*model.Artifact {
		return replace(items, id, updated)
	})
	return updated.Clone(), nil
}

func incompleteMessage(kind model.Kind) string {
	if kind == model.KindPrompt {
		return "Please optimize a prompt and add a title"
	}
	return "Please generate an email and add a subject"
}
