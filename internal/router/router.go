package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"writer-studio/internal/handler"
	"writer-studio/internal/middleware"
	"writer-studio/internal/workspace"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth          *handler.AuthHandler
	Artifacts     *handler.ArtifactHandler
	Generate      *handler.GenerateHandler
	Conversations *handler.ConversationHandler
	Events        *handler.EventsHandler
	Templates     *handler.TemplateHandler

	// DevLogin enables POST /auth/dev-login.
	DevLogin bool
}

func SetupRoutes(e *echo.Echo, sessions *handler.Sessions, registry *workspace.Registry, h Handlers) {
	e.HTTPErrorHandler = handler.ErrorHandler

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Every other route runs inside the caller's workspace. Routes that
	// change state or hold a stream start a session; reads without one run
	// signed out and leave nothing behind.
	open := middleware.WorkspaceMiddleware(sessions, registry)
	peek := middleware.LookupWorkspaceMiddleware(sessions, registry)
	owner := middleware.RequireOwner()

	authGroup := e.Group("/auth")
	authGroup.GET("/logout", h.Auth.LogoutHandler, peek)
	authGroup.POST("/logout", h.Auth.LogoutHandler, peek)
	if h.DevLogin {
		authGroup.POST("/dev-login", h.Auth.DevLoginHandler, open)
	}
	authGroup.GET("/:provider", h.Auth.BeginAuthHandler, peek)
	authGroup.GET("/:provider/callback", h.Auth.CallbackHandler, open)

	api := e.Group("/api")
	api.GET("/me", h.Auth.Me, peek)
	api.GET("/events", h.Events.Stream, open)

	api.GET("/artifacts", h.Artifacts.ListArtifacts, peek)
	api.POST("/artifacts", h.Artifacts.CreateArtifact, open)
	api.DELETE("/artifacts/:id", h.Artifacts.DeleteArtifact, open)
	api.POST("/artifacts/:id/favorite", h.Artifacts.ToggleFavorite, open)
	api.GET("/artifacts/:id/export", h.Artifacts.ExportArtifact, peek)
	api.POST("/artifacts/:id/gmail-draft", h.Artifacts.CreateGmailDraft, open, owner)
	api.GET("/categories", h.Artifacts.GetCategories, peek)

	api.GET("/generate/status", h.Generate.GeneratorStatus)
	api.POST("/generate/email", h.Generate.GenerateEmail, open)
	api.POST("/generate/prompt", h.Generate.GeneratePrompt, open)
	api.POST("/prompts", h.Generate.SavePrompt, open)
	api.GET("/session/messages", h.Generate.GetMessages, peek)
	api.DELETE("/session/messages", h.Generate.ClearMessages, open)

	api.GET("/conversations", h.Conversations.ListConversations, peek)
	api.POST("/conversations", h.Conversations.SaveConversation, open)
	api.DELETE("/conversations/:id", h.Conversations.DeleteConversation, open)
	api.POST("/conversations/:id/open", h.Conversations.OpenConversation, open)
	api.GET("/conversations/:id/export", h.Conversations.ExportConversation, peek)

	api.GET("/templates", h.Templates.ListTemplates, peek)
	api.POST("/templates", h.Templates.CreateTemplate, open, owner)
	api.PATCH("/templates/:id", h.Templates.UpdateTemplate, open, owner)
	api.DELETE("/templates/:id", h.Templates.DeleteTemplate, open, owner)
	api.POST("/templates/:id/render", h.Templates.RenderTemplate, peek)
}
