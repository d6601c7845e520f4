package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writer-studio/internal/model"
	"writer-studio/internal/repository"
)

func TestArtifactRepository_OwnerScopedCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryArtifactRepository()

	older := model.NewArtifact("alice", model.ArtifactDraft{Subject: "Old", Content: "body"})
	older.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := model.NewArtifact("alice", model.ArtifactDraft{Subject: "New", Content: "body"})
	newer.CreatedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	other := model.NewArtifact("bob", model.ArtifactDraft{Subject: "Bob's", Content: "body"})

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, other))

	list, err := repo.FindByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "New", list[0].Subject)
	assert.Equal(t, "Old", list[1].Subject)

	// Bob cannot see or delete Alice's rows.
	_, err = repo.FindByID(ctx, "bob", older.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "bob", older.ID), repository.ErrNotFound)

	found, err := repo.FindByID(ctx, "alice", older.ID)
	require.NoError(t, err)
	found.IsFavorite = true
	require.NoError(t, repo.Update(ctx, found))

	again, err := repo.FindByID(ctx, "alice", older.ID)
	require.NoError(t, err)
	assert.True(t, again.IsFavorite)

	require.NoError(t, repo.Delete(ctx, "alice", older.ID))
	list, err = repo.FindByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestArtifactRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryArtifactRepository()
	a := model.NewArtifact("alice", model.ArtifactDraft{Subject: "S", Content: "C", Tags: []string{"x"}})
	require.NoError(t, repo.Create(ctx, a))

	a.Tags[0] = "mutated"
	list, err := repo.FindByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, list[0].Tags)
}

func TestConversationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryConversationRepository()

	conv := model.NewConversation("alice", "Chat", []model.Message{{Role: model.RoleUser, Content: "hi"}})
	require.NoError(t, repo.Create(ctx, conv))

	list, err := repo.FindByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Chat", list[0].Title)

	empty, err := repo.FindByOwner(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Delete(ctx, "alice", conv.ID))
	assert.ErrorIs(t, repo.Delete(ctx, "alice", conv.ID), repository.ErrNotFound)
}

func TestTemplateRepository_PublicOrOwn(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryTemplateRepository()

	public := model.NewTemplate("", model.TemplateDraft{Name: "Welcome", Body: "Hi {{name}}", IsPublic: true})
	public.CreatedAt = public.CreatedAt.Add(-time.Hour)
	own := model.NewTemplate("alice", model.TemplateDraft{Name: "Mine", Body: "Private"})
	other := model.NewTemplate("bob", model.TemplateDraft{Name: "Bob's", Body: "Private"})
	for _, tpl := range []*model.Template{public, own, other} {
		require.NoError(t, repo.Create(ctx, tpl))
	}

	list, err := repo.FindVisible(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, own.ID, list[0].ID, "newest first")
	assert.Equal(t, public.ID, list[1].ID)

	anon, err := repo.FindVisible(ctx, "")
	require.NoError(t, err)
	require.Len(t, anon, 1)
	assert.Equal(t, public.ID, anon[0].ID)

	_, err = repo.FindByID(ctx, "alice", other.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Only the creator may change a template.
	hijack := other.Clone()
	hijack.CreatedBy = "alice"
	assert.ErrorIs(t, repo.Update(ctx, hijack), repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "alice", other.ID), repository.ErrNotFound)

	own.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, own))
	got, err := repo.FindByID(ctx, "alice", own.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, repo.Delete(ctx, "bob", other.ID))
}
