package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"writer-studio/internal/workspace"
)

const (
	sessionName    = "writer_session"
	workspaceIDKey = "workspace_id"
)

// NewSessionStore creates a new cookie store for sessions
func NewSessionStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Sessions maps the session cookie to a workspace id.
type Sessions struct {
	store sessions.Store
}

func NewSessions(store sessions.Store) *Sessions {
	return &Sessions{store: store}
}

// Lookup returns the workspace id of the request's cookie without
// issuing one.
func (s *Sessions) Lookup(c echo.Context) (string, bool) {
	session, err := s.store.Get(c.Request(), sessionName)
	if err != nil {
		return "", false
	}
	id, ok := session.Values[workspaceIDKey].(string)
	return id, ok && id != ""
}

// WorkspaceID returns the cookie's workspace id, minting a new session
// cookie when there is none.
func (s *Sessions) WorkspaceID(c echo.Context) (string, error) {
	// A cookie that no longer decodes yields a fresh session.
	session, _ := s.store.Get(c.Request(), sessionName)
	if id, ok := session.Values[workspaceIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := workspace.NewID()
	session.Values[workspaceIDKey] = id
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return id, nil
}

const workspaceContextKey = "workspace"

// SetWorkspace stores ws on the request context.
func SetWorkspace(c echo.Context, ws *workspace.Workspace) {
	c.Set(workspaceContextKey, ws)
}

// CurrentWorkspace returns the workspace resolved by the session middleware.
func CurrentWorkspace(c echo.Context) *workspace.Workspace {
	ws, _ := c.Get(workspaceContextKey).(*workspace.Workspace)
	return ws
}
