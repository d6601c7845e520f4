package collection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writer-studio/internal/apperr"
	"writer-studio/internal/auth"
	"writer-studio/internal/logger"
	"writer-studio/internal/model"
)

// fakeGateway records every call. Setting gate makes Create and Update
// block until the channel is closed.
type fakeGateway struct {
	mu        sync.Mutex
	calls     []string
	remote    map[string][]*model.Artifact
	createErr error
	updateErr error
	deleteErr error
	gate      chan struct{}
	seq       int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{remote: make(map[string][]*model.Artifact)}
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) wait() {
	if g.gate != nil {
		<-g.gate
	}
}

func (g *fakeGateway) List(_ context.Context, owner auth.Owner) []*model.Artifact {
	g.record("list")
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*model.Artifact, 0, len(g.remote[owner.ID()]))
	for _, a := range g.remote[owner.ID()] {
		out = append(out, a.Clone())
	}
	return out
}

func (g *fakeGateway) Create(_ context.Context, owner auth.Owner, draft model.ArtifactDraft) (*model.Artifact, error) {
	g.record("create")
	g.wait()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	a := model.NewArtifact(owner.ID(), draft)
	a.ID = "remote-" + string(rune('0'+g.seq))
	g.remote[owner.ID()] = append([]*model.Artifact{a}, g.remote[owner.ID()]...)
	return a.Clone(), nil
}

func (g *fakeGateway) Delete(_ context.Context, owner auth.Owner, id string) error {
	g.record("delete")
	return g.deleteErr
}

func (g *fakeGateway) Update(_ context.Context, owner auth.Owner, id string, patch model.ArtifactPatch) (*model.Artifact, error) {
	g.record("update")
	g.wait()
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, a := range g.remote[owner.ID()] {
		if a.ID == id {
			a.Apply(patch)
			return a.Clone(), nil
		}
	}
	return nil, apperr.NewNotFound("artifact", id)
}

func seeded(owner string, ids ...string) *fakeGateway {
	g := newFakeGateway()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range ids {
		g.remote[owner] = append(g.remote[owner], &model.Artifact{
			ID:        id,
			OwnerID:   owner,
			Kind:      model.KindEmail,
			Subject:   "Subject " + id,
			Content:   "Body " + id,
			CreatedAt: base.AddDate(0, 0, -i),
		})
	}
	return g
}

var validDraft = model.ArtifactDraft{Subject: "Hello", Content: "World", Tags: []string{"a", "a", " "}}

func TestStore_LoadIsIdempotentPerOwner(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1", "a2")
	s := NewStore(gw, nil, logger.Discard())

	s.Load(ctx, auth.Known("alice"))
	s.Load(ctx, auth.Known("alice"))

	assert.Equal(t, []string{"list"}, gw.Calls())
	require.Equal(t, 2, s.Len())
	for _, a := range s.Snapshot() {
		assert.Equal(t, model.StatusConfirmed, a.Status)
	}
}

func TestStore_LogoutClearsWithoutRemoteCalls(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	s := NewStore(gw, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))
	require.Equal(t, 1, s.Len())

	s.Load(ctx, auth.Absent())

	assert.Zero(t, s.Len())
	assert.Equal(t, []string{"list"}, gw.Calls())
}

func TestStore_AddPrependsConfirmedEntry(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1", "a2")
	rec := NewRecorder(0)
	s := NewStore(gw, rec, logger.Discard())
	s.Load(ctx, auth.Known("alice"))
	before := s.Len()

	created, err := s.Add(ctx, validDraft)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap, before+1)
	assert.Equal(t, created.ID, snap[0].ID)
	assert.Equal(t, model.StatusConfirmed, snap[0].Status)
	assert.Equal(t, []string{"a"}, snap[0].Tags)

	notices := rec.All()
	require.Len(t, notices, 1)
	assert.Equal(t, LevelInfo, notices[0].Level)
}

func TestStore_AddShowsPendingEntryImmediately(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice")
	gw.gate = make(chan struct{})
	s := NewStore(gw, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Add(ctx, validDraft)
	}()

	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, time.Millisecond)
	pending := s.Snapshot()[0]
	assert.True(t, pending.IsPending())
	assert.Equal(t, "Hello", pending.Subject)

	close(gw.gate)
	<-done
	head := s.Snapshot()[0]
	assert.Equal(t, model.StatusConfirmed, head.Status)
	assert.NotEqual(t, pending.ID, head.ID)
}

func TestStore_AddFailureWithdrawsAndNotifies(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	gw.createErr = apperr.NewStore("save artifact", errors.New("503"))
	rec := NewRecorder(0)
	s := NewStore(gw, rec, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	_, err := s.Add(ctx, validDraft)
	require.Error(t, err)

	assert.Equal(t, 1, s.Len())
	notices := rec.All()
	require.Len(t, notices, 1)
	assert.Equal(t, LevelError, notices[0].Level)
	assert.Equal(t, apperr.CodeStoreUnavailable, notices[0].Code)
	require.NotNil(t, notices[0].Draft)
	assert.Equal(t, validDraft.Subject, notices[0].Draft.Subject)
}

func TestStore_AddRefusesWithoutOwner(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	rec := NewRecorder(0)
	s := NewStore(gw, rec, logger.Discard())
	s.Load(ctx, auth.Absent())

	_, err := s.Add(ctx, validDraft)
	assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
	assert.Empty(t, gw.Calls())
	require.Len(t, rec.All(), 1)
	assert.Equal(t, "Please log in to save to your history", rec.All()[0].Message)
}

func TestStore_AddRejectsIncompleteDraft(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice")
	s := NewStore(gw, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	_, err := s.Add(ctx, model.ArtifactDraft{Content: "no subject"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	assert.Equal(t, []string{"list"}, gw.Calls())
	assert.Zero(t, s.Len())
}

func TestStore_IncompleteDraftMessageFollowsKind(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(0)
	s := NewStore(seeded("alice"), rec, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	_, err := s.Add(ctx, model.ArtifactDraft{Kind: model.KindPrompt, Content: "no title"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
	_, err = s.Add(ctx, model.ArtifactDraft{Kind: model.KindEmail, Subject: "no body"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	notices := rec.All()
	require.Len(t, notices, 2)
	assert.Equal(t, "Please optimize a prompt and add a title", notices[0].Message)
	assert.Equal(t, "Please generate an email and add a subject", notices[1].Message)
}

func TestStore_AbsentIDIsNoop(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	s := NewStore(gw, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))
	before := s.Snapshot()

	require.NoError(t, s.Remove(ctx, "missing"))
	updated, err := s.ToggleFavorite(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, updated)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, []string{"list"}, gw.Calls())
}

func TestStore_RemoveDropsAfterAcknowledgement(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1", "a2")
	s := NewStore(gw, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	require.NoError(t, s.Remove(ctx, "a1"))
	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "a2", snap[0].ID)
}

func TestStore_RemoveFailureKeepsEntry(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	gw.deleteErr = apperr.NewStore("delete artifact", errors.New("boom"))
	rec := NewRecorder(0)
	s := NewStore(gw, rec, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	assert.Error(t, s.Remove(ctx, "a1"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, LevelError, rec.All()[0].Level)
}

func TestStore_RemoveConvergesWhenAlreadyGone(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	gw.deleteErr = apperr.NewNotFound("artifact", "a1")
	s := NewStore(gw, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	require.NoError(t, s.Remove(ctx, "a1"))
	assert.Zero(t, s.Len())
}

func TestStore_ToggleFavorite(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	s := NewStore(gw, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	updated, err := s.ToggleFavorite(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)

	got, ok := s.Get("a1")
	require.True(t, ok)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, model.StatusConfirmed, got.Status)
}

func TestStore_ToggleFavoriteRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	gw.updateErr = apperr.NewStore("update artifact", errors.New("boom"))
	gw.gate = make(chan struct{})
	rec := NewRecorder(0)
	s := NewStore(gw, rec, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	done := make(chan error, 1)
	go func() {
		_, err := s.ToggleFavorite(ctx, "a1")
		done <- err
	}()

	require.Eventually(t, func() bool {
		a, _ := s.Get("a1")
		return a.IsFavorite && a.IsPending()
	}, time.Second, time.Millisecond)

	close(gw.gate)
	assert.Error(t, <-done)

	a, _ := s.Get("a1")
	assert.False(t, a.IsFavorite)
	assert.Equal(t, model.StatusConfirmed, a.Status)
	assert.Len(t, rec.All(), 1)
}

func TestStore_PendingEntryRejectsMutations(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice")
	gw.gate = make(chan struct{})
	s := NewStore(gw, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Add(ctx, validDraft)
	}()
	require.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, time.Millisecond)
	id := s.Snapshot()[0].ID

	assert.True(t, apperr.Is(s.Remove(ctx, id), apperr.CodeConflict))
	_, err := s.ToggleFavorite(ctx, id)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	close(gw.gate)
	<-done
}

func TestStore_StaleResultAfterOwnerChangeIsDropped(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	gw.gate = make(chan struct{})
	s := NewStore(gw, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Add(ctx, validDraft)
	}()
	require.Eventually(t, func() bool { return s.Len() == 2 }, time.Second, time.Millisecond)

	s.Load(ctx, auth.Absent())
	close(gw.gate)
	<-done

	assert.Zero(t, s.Len())
	assert.True(t, s.Owner().IsAbsent())
}

func TestStore_FollowReactsToOwnerChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := seeded("alice", "a1", "a2")
	slot := auth.NewMemorySlot()
	monitor := auth.NewMonitor(slot, time.Hour, logger.Discard())

	s := NewStore(gw, nil, logger.Discard())
	s.Follow(ctx, monitor)

	slot.Set("alice")
	monitor.Check()
	assert.Equal(t, 2, s.Len())

	slot.Clear()
	monitor.Check()
	assert.Zero(t, s.Len())
	assert.True(t, s.Owner().IsAbsent())
}

func TestStore_OnChangeDeliversSnapshots(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	s := NewStore(gw, nil, logger.Discard())

	var mu sync.Mutex
	var sizes []int
	last := func() int {
		mu.Lock()
		defer mu.Unlock()
		if len(sizes) == 0 {
			return -1
		}
		return sizes[len(sizes)-1]
	}
	stop := s.OnChange(func(items []*model.Artifact) {
		mu.Lock()
		sizes = append(sizes, len(items))
		mu.Unlock()
	})

	s.Load(ctx, auth.Known("alice"))
	require.Eventually(t, func() bool { return last() == 1 }, time.Second, time.Millisecond)

	stop()
	stop()
	_, err := s.Add(ctx, validDraft)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, sizes, 2, "no delivery after cancel")
	for i := 1; i < len(sizes); i++ {
		assert.GreaterOrEqual(t, sizes[i], sizes[i-1], "snapshots arrive in state order")
	}
}

func TestStore_SlowListenerDoesNotStallMutations(t *testing.T) {
	ctx := context.Background()
	s := NewStore(seeded("alice"), nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	var mu sync.Mutex
	var lastSize int
	release := make(chan struct{})
	stop := s.OnChange(func(items []*model.Artifact) {
		<-release
		mu.Lock()
		lastSize = len(items)
		mu.Unlock()
	})
	defer stop()

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := s.Add(ctx, validDraft)
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 200*time.Millisecond)

	close(release)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return lastSize == 3
	}, time.Second, time.Millisecond, "the latest snapshot is delivered once the listener catches up")
}

// unstampedGateway returns rows with no lifecycle state, like a raw store.
type unstampedGateway struct{ *fakeGateway }

func (g unstampedGateway) List(ctx context.Context, owner auth.Owner) []*model.Artifact {
	out := g.fakeGateway.List(ctx, owner)
	for _, a := range out {
		a.Status = ""
	}
	return out
}

func TestStore_LoadStampsEntriesConfirmed(t *testing.T) {
	ctx := context.Background()
	gw := seeded("alice", "a1")
	gw.remote["alice"][0].Status = model.StatusPending
	s := NewStore(unstampedGateway{gw}, nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	a, ok := s.Get("a1")
	require.True(t, ok)
	assert.Equal(t, model.StatusConfirmed, a.Status)
	assert.False(t, a.IsPending())

	// The gateway's own rows are not touched.
	assert.Equal(t, model.StatusPending, gw.remote["alice"][0].Status)
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	s := NewStore(seeded("alice", "a1"), nil, logger.Discard())
	s.Load(ctx, auth.Known("alice"))

	snap := s.Snapshot()
	snap[0].Subject = "tampered"

	got, _ := s.Get("a1")
	assert.Equal(t, "Subject a1", got.Subject)
}
