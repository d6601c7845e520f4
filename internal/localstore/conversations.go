package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"writer-studio/internal/model"
	"writer-studio/internal/repository"
)

const conversationKeyPrefix = "conversations:"

// ConversationRepository stores each owner's history under
// "conversations:<owner>" as a JSON array. It satisfies
// repository.ConversationRepository.
type ConversationRepository struct {
	kv *KV
	// mu makes read-modify-write of one owner's value atomic.
	mu sync.Mutex
}

func NewConversationRepository(kv *KV) *ConversationRepository {
	return &ConversationRepository{kv: kv}
}

func conversationKey(ownerID string) string {
	return conversationKeyPrefix + ownerID
}

func (r *ConversationRepository) load(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	raw, err := r.kv.Get(ctx, conversationKey(ownerID))
	if errors.Is(err, ErrNoValue) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// time.Time fields are rehydrated from their RFC 3339 strings here.
	var conversations []*model.Conversation
	if err := json.Unmarshal(raw, &conversations); err != nil {
		return nil, fmt.Errorf("failed to parse saved conversations: %w", err)
	}
	return conversations, nil
}

func (r *ConversationRepository) save(ctx context.Context, ownerID string, conversations []*model.Conversation) error {
	raw, err := json.Marshal(conversations)
	if err != nil {
		return fmt.Errorf("failed to encode conversations: %w", err)
	}
	return r.kv.Put(ctx, conversationKey(ownerID), raw)
}

func (r *ConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversations, err := r.load(ctx, conversation.OwnerID)
	if err != nil {
		return err
	}
	stored := conversation.Clone()
	stored.Status = ""
	conversations = append([]*model.Conversation{stored}, conversations...)
	return r.save(ctx, conversation.OwnerID, conversations)
}

func (r *ConversationRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversations, err := r.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].CreatedAt.After(conversations[j].CreatedAt)
	})
	return conversations, nil
}

func (r *ConversationRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversations, err := r.load(ctx, ownerID)
	if err != nil {
		return err
	}
	for i, c := range conversations {
		if c.ID == id {
			conversations = append(conversations[:i:i], conversations[i+1:]...)
			return r.save(ctx, ownerID, conversations)
		}
	}
	return repository.ErrNotFound
}

var _ repository.ConversationRepository = (*ConversationRepository)(nil)
