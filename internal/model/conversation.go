package model

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a saved chat, persisted as a whole unit.
type Conversation struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"user_id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Status    Status    `json:"status,omitempty"`
}

// NewConversation bundles messages under title with a fresh UUID.
// UpdatedAt is the timestamp of the last message when there is one.
func NewConversation(ownerID, title string, messages []Message) *Conversation {
	now := time.Now().UTC()
	conv := &Conversation{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(title),
		Messages:  append([]Message(nil), messages...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if n := len(messages); n > 0 && !messages[n-1].Timestamp.IsZero() {
		conv.UpdatedAt = messages[n-1].Timestamp
	}
	return conv
}

func (c *Conversation) Key() string { return c.ID }

func (c *Conversation) IsPending() bool { return c.Status == StatusPending }

func (c *Conversation) SetStatus(status Status) { c.Status = status }

func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Messages = append([]Message(nil), c.Messages...)
	return &cp
}

// Preview returns the first user message, cut to limit runes.
func (c *Conversation) Preview(limit int) string {
	for _, m := range c.Messages {
		if m.Role != RoleUser {
			continue
		}
		r := []rune(m.Content)
		if limit > 0 && len(r) > limit {
			return string(r[:limit]) + "..."
		}
		return m.Content
	}
	return "No messages"
}

// Duration is the time between the first and last message.
func (c *Conversation) Duration() time.Duration {
	if len(c.Messages) < 2 {
		return 0
	}
	return c.Messages[len(c.Messages)-1].Timestamp.Sub(c.Messages[0].Timestamp)
}

// Transcript is the live, append-only message log of a chat session.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message stamped with the current time and returns it.
func (t *Transcript) Append(role Role, content string) Message {
	msg := Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
	return msg
}

// Messages returns a copy of the log.
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

func (t *Transcript) Reset() {
	t.mu.Lock()
	t.messages = nil
	t.mu.Unlock()
}

// Reopen replaces the log with a saved conversation's messages so the
// session can continue and later be saved as a new conversation.
func (t *Transcript) Reopen(conv *Conversation) {
	t.mu.Lock()
	t.messages = append([]Message(nil), conv.Messages...)
	t.mu.Unlock()
}
