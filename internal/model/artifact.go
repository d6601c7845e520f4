package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two writer variants sharing one collection.
type Kind string

const (
	KindEmail  Kind = "email"
	KindPrompt Kind = "prompt"
)

// Status tracks where an in-session entry is in its mutation lifecycle.
// It is never persisted.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// Artifact is a generated email or prompt owned by exactly one user.
type Artifact struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"user_id"`
	Kind       Kind      `json:"kind"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	Recipient  string    `json:"recipient"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Status     Status    `json:"status,omitempty"`
}

// ArtifactDraft holds the caller-supplied fields of a new artifact.
type ArtifactDraft struct {
	Kind       Kind     `json:"kind"`
	Subject    string   `json:"subject"`
	Content    string   `json:"content"`
	Recipient  string   `json:"recipient"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	IsFavorite bool     `json:"is_favorite"`
}

// ArtifactPatch carries the partial fields accepted by an update.
type ArtifactPatch struct {
	IsFavorite *bool `json:"is_favorite,omitempty"`
}

// Validate reports the first missing required field name, or "" when the
// draft is complete.
func (d ArtifactDraft) Validate() string {
	if strings.TrimSpace(d.Subject) == "" {
		return "subject"
	}
	if strings.TrimSpace(d.Content) == "" {
		return "content"
	}
	return ""
}

// NewArtifact builds a store-side artifact from a draft with a fresh UUID.
func NewArtifact(ownerID string, draft ArtifactDraft) *Artifact {
	now := time.Now().UTC()
	kind := draft.Kind
	if kind == "" {
		kind = KindEmail
	}
	return &Artifact{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		Kind:       kind,
		Subject:    draft.Subject,
		Content:    draft.Content,
		Recipient:  draft.Recipient,
		Category:   draft.Category,
		Tags:       NormalizeTags(draft.Tags),
		IsFavorite: draft.IsFavorite,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the
// collection's entries.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	c := *a
	if a.Tags != nil {
		c.Tags = append([]string(nil), a.Tags...)
	}
	return &c
}

// Key implements the collection entry contract.
func (a *Artifact) Key() string { return a.ID }

// IsPending reports whether the entry still awaits remote confirmation.
func (a *Artifact) IsPending() bool { return a.Status == StatusPending }

// SetStatus stamps the in-session lifecycle state.
func (a *Artifact) SetStatus(status Status) { a.Status = status }

// Apply copies the non-nil patch fields onto the artifact.
func (a *Artifact) Apply(patch ArtifactPatch) {
	if patch.IsFavorite != nil {
		a.IsFavorite = *patch.IsFavorite
	}
}

// NormalizeTags trims each tag, drops empty ones and suppresses exact
// duplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// AddTag appends tag unless it is blank or already present.
func AddTag(tags []string, tag string) []string {
	return NormalizeTags(append(append([]string(nil), tags...), tag))
}
