package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"writer-studio/internal/apperr"
	"writer-studio/internal/auth"
	"writer-studio/internal/logger"
	"writer-studio/internal/model"
	"writer-studio/internal/repository"
)

// Conversations is the owner-scoped gateway to saved conversations. The
// repository may be remote or the local key/value slot.
type Conversations struct {
	repo    repository.ConversationRepository
	timeout time.Duration
	logger  *logger.Logger
}

func NewConversations(repo repository.ConversationRepository, timeout time.Duration, logger *logger.Logger) *Conversations {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Conversations{
		repo:    repo,
		timeout: timeout,
		logger:  logger.With("gateway"),
	}
}

func (g *Conversations) List(ctx context.Context, owner auth.Owner) []*model.Conversation {
	if !owner.IsKnown() {
		g.logger.Info("Cannot fetch conversations: user not authenticated")
		return []*model.Conversation{}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	conversations, err := g.repo.FindByOwner(ctx, owner.ID())
	if err != nil {
		g.logger.Error("Error fetching conversations:", apperr.NewStore("list conversations", err))
		return []*model.Conversation{}
	}
	if conversations == nil {
		conversations = []*model.Conversation{}
	}
	for _, c := range conversations {
		c.Status = model.StatusConfirmed
	}
	return conversations
}

// Create saves messages as one new conversation.
func (g *Conversations) Create(ctx context.Context, owner auth.Owner, title string, messages []model.Message) (*model.Conversation, error) {
	if !owner.IsKnown() {
		return nil, apperr.NewUnauthenticated("save conversation")
	}
	if strings.TrimSpace(title) == "" {
		return nil, apperr.NewValidation("title", "Please enter a title for the conversation")
	}
	if len(messages) == 0 {
		return nil, apperr.NewValidation("messages", "Nothing to save: the conversation has no messages")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	conversation := model.NewConversation(owner.ID(), title, messages)
	if err := g.repo.Create(ctx, conversation); err != nil {
		g.logger.Error("Error saving conversation:", err)
		return nil, apperr.NewStore("save conversation", err)
	}
	conversation.Status = model.StatusConfirmed
	return conversation, nil
}

func (g *Conversations) Delete(ctx context.Context, owner auth.Owner, id string) error {
	if !owner.IsKnown() {
		return apperr.NewUnauthenticated("delete conversation")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.repo.Delete(ctx, owner.ID(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NewNotFound("conversation", id)
		}
		g.logger.Error("Error deleting conversation:", err)
		return apperr.NewStore("delete conversation", err)
	}
	return nil
}
