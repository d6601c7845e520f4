// Package workspace holds the per-browser-session state: the identity
// slot written by login and logout, the monitor watching it, and the
// collections and transcript that follow the resolved owner.
package workspace

import (
	"context"
	"sync"
	"time"

	"writer-studio/internal/auth"
	"writer-studio/internal/collection"
	"writer-studio/internal/logger"
	"writer-studio/internal/model"
	"writer-studio/internal/sse"
)

// Workspace is one browser session. Every tab sharing the session cookie
// shares the workspace, so a login in one tab is observed by the others.
type Workspace struct {
	ID string

	Slot          *auth.MemorySlot
	Monitor       *auth.Monitor
	Artifacts     *collection.Store
	Conversations *collection.ConversationStore
	Transcript    *model.Transcript
	Notices       *collection.Recorder

	mu          sync.Mutex
	email       string
	accessToken string
	lastSeen    time.Time

	cancel context.CancelFunc
	stops  []func()
}

// Deps are the shared collaborators every workspace is built from.
type Deps struct {
	Artifacts     collection.ArtifactGateway
	Conversations collection.ConversationGateway
	Events        *sse.Manager
	PollInterval  time.Duration
	Logger        *logger.Logger

	// MaxWorkspaces caps the registry; the least recently seen workspace
	// is evicted to make room. Zero means no cap.
	MaxWorkspaces int
}

// newWorkspace builds a workspace. A live workspace runs its monitor and
// keeps its collections following the owner; a transient one starts no
// goroutines and only ever resolves to the absent owner.
func newWorkspace(id string, deps Deps, live bool) *Workspace {
	ctx, cancel := context.WithCancel(context.Background())
	log := deps.Logger.With("ws:" + shortID(id))

	ws := &Workspace{
		ID:         id,
		Slot:       auth.NewMemorySlot(),
		Transcript: model.NewTranscript(),
		Notices:    collection.NewRecorder(50),
		lastSeen:   time.Now(),
		cancel:     cancel,
	}

	notifier := collection.Fanout{
		ws.Notices,
		collection.NotifierFunc(func(n collection.Notice) {
			deps.Events.Broadcast(id, sse.EventNotice, n)
		}),
	}

	ws.Monitor = auth.NewMonitor(ws.Slot, deps.PollInterval, log)
	ws.Artifacts = collection.NewStore(deps.Artifacts, notifier, log)
	ws.Conversations = collection.NewConversationStore(deps.Conversations, notifier, log)

	if !live {
		return ws
	}

	ws.stops = append(ws.stops,
		ws.Artifacts.OnChange(func(items []*model.Artifact) {
			deps.Events.Broadcast(id, sse.EventCollection, items)
		}),
		ws.Conversations.OnChange(func(convs []*model.Conversation) {
			deps.Events.Broadcast(id, sse.EventConversations, convs)
		}),
		ws.Monitor.Subscribe(func(owner auth.Owner) {
			if owner.IsAbsent() {
				ws.Transcript.Reset()
			}
			deps.Events.Broadcast(id, sse.EventOwner, owner)
		}),
	)
	ws.Artifacts.Follow(ctx, ws.Monitor)
	ws.Conversations.Follow(ctx, ws.Monitor)

	go ws.Monitor.Run(ctx)
	return ws
}

// Login writes the identity slot and waits until the collections have
// loaded for the new owner.
func (w *Workspace) Login(userID, email, accessToken string) {
	w.mu.Lock()
	w.email = email
	w.accessToken = accessToken
	w.mu.Unlock()

	w.Slot.Set(userID)
	w.Monitor.Check()
}

// Logout clears the identity slot; the collections empty themselves.
func (w *Workspace) Logout() {
	w.mu.Lock()
	w.email = ""
	w.accessToken = ""
	w.mu.Unlock()

	w.Slot.Clear()
	w.Monitor.Check()
}

// Owner resolves the owner now instead of waiting for the next tick.
func (w *Workspace) Owner() auth.Owner {
	if owner := w.Monitor.Current(); owner.IsResolved() {
		return owner
	}
	return w.Monitor.Check()
}

func (w *Workspace) Email() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.email
}

func (w *Workspace) AccessToken() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accessToken
}

// Touch records activity for idle eviction.
func (w *Workspace) Touch() {
	w.mu.Lock()
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

func (w *Workspace) close() {
	w.cancel()
	for _, stop := range w.stops {
		stop()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
