package middleware

import (
	"github.com/labstack/echo/v4"

	"writer-studio/internal/apperr"
	"writer-studio/internal/handler"
	"writer-studio/internal/workspace"
)

// WorkspaceMiddleware resolves the session cookie to its workspace and
// stores it on the context for the handlers. A request without a cookie
// gets a new session and workspace.
func WorkspaceMiddleware(sessions *handler.Sessions, registry *workspace.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := sessions.WorkspaceID(c)
			if err != nil {
				return handler.RespondError(c, apperr.NewInternal(err))
			}

			handler.SetWorkspace(c, registry.Open(id))
			return next(c)
		}
	}
}

// LookupWorkspaceMiddleware is WorkspaceMiddleware for routes that do not
// start a session. A request without a cookie runs in a transient
// signed-out workspace and no cookie is issued.
func LookupWorkspaceMiddleware(sessions *handler.Sessions, registry *workspace.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, ok := sessions.Lookup(c); ok {
				handler.SetWorkspace(c, registry.Open(id))
			} else {
				handler.SetWorkspace(c, registry.Transient())
			}
			return next(c)
		}
	}
}

// RequireOwner rejects requests whose workspace has no known owner.
func RequireOwner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ws := handler.CurrentWorkspace(c)
			if ws == nil || !ws.Owner().IsKnown() {
				return handler.RespondError(c, apperr.NewUnauthenticated(c.Request().Method+" "+c.Path()))
			}
			return next(c)
		}
	}
}
