package collection

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"

	"writer-studio/internal/apperr"
	"writer-studio/internal/auth"
	"writer-studio/internal/logger"
	"writer-studio/internal/model"
)

// ConversationGateway is the backing side of saved conversations.
type ConversationGateway interface {
	List(ctx context.Context, owner auth.Owner) []*model.Conversation
	Create(ctx context.Context, owner auth.Owner, title string, messages []model.Message) (*model.Conversation, error)
	Delete(ctx context.Context, owner auth.Owner, id string) error
}

// ConversationStore is the newest-first list of the owner's saved
// conversations.
type ConversationStore struct {
	core[*model.Conversation]

	gateway  ConversationGateway
	notifier Notifier
	logger   *logger.Logger
}

func NewConversationStore(gateway ConversationGateway, notifier Notifier, logger *logger.Logger) *ConversationStore {
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	return &ConversationStore{
		core:     newCore[*model.Conversation](),
		gateway:  gateway,
		notifier: notifier,
		logger:   logger.With("conversations"),
	}
}

func (s *ConversationStore) Load(ctx context.Context, owner auth.Owner) {
	if s.load(ctx, owner, s.gateway.List) {
		s.logger.Debug("Loaded conversations for", owner, "count:", s.Len())
	}
}

func (s *ConversationStore) Follow(ctx context.Context, provider auth.Provider) (cancel func()) {
	return s.follow(ctx, provider, s.Load)
}

// Save stores messages under title. A complete request shows up at the
// head as a pending entry right away and is replaced by the stored record,
// or withdrawn when the store refuses it.
func (s *ConversationStore) Save(ctx context.Context, title string, messages []model.Message) (*model.Conversation, error) {
	owner, epoch := s.session()

	var provisional *model.Conversation
	if owner.IsKnown() && strings.TrimSpace(title) != "" && len(messages) > 0 {
		provisional = model.NewConversation(owner.ID(), title, messages)
		provisional.ID = ulid.Make().String()
		provisional.Status = model.StatusPending
		s.apply(epoch, func(items []*model.Conversation) []*model.Conversation {
			return prepend(items, provisional)
		})
	}

	saved, err := s.gateway.Create(ctx, owner, title, messages)
	if err != nil {
		if provisional != nil {
			s.apply(epoch, func(items []*model.Conversation) []*model.Conversation {
				return without(items, provisional.ID)
			})
		}
		s.notifier.Notify(failure("save_conversation", "", err))
		return nil, err
	}

	saved = saved.Clone()
	saved.Status = model.StatusConfirmed
	s.apply(epoch, func(items []*model.Conversation) []*model.Conversation {
		if provisional == nil || indexOf(items, provisional.ID) < 0 {
			return prepend(items, saved)
		}
		return replace(items, provisional.ID, saved)
	})
	s.notifier.Notify(success("save_conversation", saved.ID, "Conversation saved!"))
	return saved.Clone(), nil
}

// Remove deletes id. An id that is not in the list is a no-op.
func (s *ConversationStore) Remove(ctx context.Context, id string) error {
	current, owner, epoch, ok := s.lookup(id)
	if !ok {
		return nil
	}
	if current.IsPending() {
		return apperr.NewConflict("conversation is still saving")
	}

	err := s.gateway.Delete(ctx, owner, id)
	if err != nil && !apperr.Is(err, apperr.CodeNotFound) {
		s.notifier.Notify(failure("delete_conversation", id, err))
		return err
	}

	s.apply(epoch, func(items []*model.Conversation) []*model.Conversation {
		return without(items, id)
	})
	s.notifier.Notify(success("delete_conversation", id, "Conversation deleted!"))
	return nil
}
