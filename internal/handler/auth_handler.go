package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"writer-studio/internal/apperr"
	"writer-studio/internal/auth"
	"writer-studio/internal/config"
)

type AuthHandler struct {
	config *config.Config
	logger echo.Logger
}

// NewAuthHandler wires goth to store its OAuth state in store. The Google
// provider is registered only when client credentials are configured.
func NewAuthHandler(cfg *config.Config, store sessions.Store, logger echo.Logger) *AuthHandler {
	gothic.Store = store

	if cfg.OAuthEnabled() {
		goth.UseProviders(
			google.New(
				cfg.GoogleClientID,
				cfg.GoogleClientSecret,
				cfg.BaseURL+"/auth/google/callback",
				"https://www.googleapis.com/auth/gmail.compose",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			),
		)
	}

	return &AuthHandler{
		config: cfg,
		logger: logger,
	}
}

// BeginAuthHandler initiates the OAuth flow
func (h *AuthHandler) BeginAuthHandler(c echo.Context) error {
	if c.Param("provider") != "google" || !h.config.OAuthEnabled() {
		return RespondError(c, apperr.NewValidation("provider", "Invalid provider"))
	}

	// Set provider in the request URL so Goth can recognize it
	req := c.Request()
	q := req.URL.Query()
	q.Set("provider", "google")
	req.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Response(), req)
	return nil
}

// CallbackHandler completes the OAuth flow and writes the user id into
// the workspace identity slot.
func (h *AuthHandler) CallbackHandler(c echo.Context) error {
	req := c.Request()
	q := req.URL.Query()
	q.Set("provider", "google")
	req.URL.RawQuery = q.Encode()

	googleUser, err := gothic.CompleteUserAuth(c.Response(), req)
	if err != nil {
		h.logger.Error("Failed to complete user auth:", err)
		return RespondError(c, apperr.NewUnauthenticated("complete login"))
	}

	ws := CurrentWorkspace(c)
	ws.Login(googleUser.Provider+"_"+googleUser.UserID, googleUser.Email, googleUser.AccessToken)
	h.logger.Info("User logged in:", googleUser.Email)

	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// DevLoginHandler signs in as the posted user id without OAuth. It is
// only routed outside production when no OAuth client is configured.
func (h *AuthHandler) DevLoginHandler(c echo.Context) error {
	var body struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return RespondError(c, bindError(err))
	}
	if strings.TrimSpace(body.UserID) == "" {
		return RespondError(c, apperr.NewValidation("user_id", "user_id is required"))
	}

	ws := CurrentWorkspace(c)
	ws.Login(strings.TrimSpace(body.UserID), body.Email, "")
	return h.Me(c)
}

// LogoutHandler clears the identity slot; every tab of the session sees
// the collections empty.
func (h *AuthHandler) LogoutHandler(c echo.Context) error {
	req := c.Request()
	q := req.URL.Query()
	q.Set("provider", "google")
	req.URL.RawQuery = q.Encode()

	if h.config.OAuthEnabled() {
		_ = gothic.Logout(c.Response(), req)
	}
	CurrentWorkspace(c).Logout()

	if strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

type meResponse struct {
	Owner auth.Owner `json:"owner"`
	Email string     `json:"email,omitempty"`
}

// Me reports the workspace's current owner state.
func (h *AuthHandler) Me(c echo.Context) error {
	ws := CurrentWorkspace(c)
	return c.JSON(http.StatusOK, meResponse{
		Owner: ws.Owner(),
		Email: ws.Email(),
	})
}
