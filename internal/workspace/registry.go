package workspace

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Registry maps session workspace ids to live workspaces.
type Registry struct {
	mu    sync.Mutex
	items map[string]*Workspace
	deps  Deps
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		items: make(map[string]*Workspace),
		deps:  deps,
	}
}

// NewID returns a fresh workspace id for a new session cookie.
func NewID() string {
	return ulid.Make().String()
}

// Open returns the workspace for id, creating it on first use. When the
// registry is full the least recently seen workspace is closed first.
func (r *Registry) Open(id string) *Workspace {
	r.mu.Lock()
	if ws, ok := r.items[id]; ok {
		r.mu.Unlock()
		ws.Touch()
		return ws
	}

	var evicted *Workspace
	if limit := r.deps.MaxWorkspaces; limit > 0 && len(r.items) >= limit {
		evicted = r.oldestLocked()
		delete(r.items, evicted.ID)
	}
	ws := newWorkspace(id, r.deps, true)
	r.items[id] = ws
	r.mu.Unlock()

	if evicted != nil {
		evicted.close()
		r.deps.Logger.Info("Evicted workspace to stay under limit", evicted.ID)
	}
	r.deps.Logger.Debug("Opened workspace", id)
	return ws
}

// Transient returns an unregistered workspace for a request that carries
// no session. It owns no goroutines and needs no closing.
func (r *Registry) Transient() *Workspace {
	return newWorkspace(NewID(), r.deps, false)
}

func (r *Registry) oldestLocked() *Workspace {
	var oldest *Workspace
	for _, ws := range r.items {
		if oldest == nil || ws.idleSince().Before(oldest.idleSince()) {
			oldest = ws
		}
	}
	return oldest
}

func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[id]
	return ws, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	ws, ok := r.items[id]
	delete(r.items, id)
	r.mu.Unlock()

	if ok {
		ws.close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Idle returns the ids of workspaces inactive since before cutoff.
func (r *Registry) Idle(cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, ws := range r.items {
		if ws.idleSince().Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close stops every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	r.mu.Unlock()

	for _, ws := range items {
		ws.close()
	}
}
