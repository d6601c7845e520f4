package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		SessionSecret:       "secret",
		EmailWebhookURL:     "http://localhost/webhook",
		ConversationBackend: BackendRemote,
		GeneratorTimeout:    30 * time.Second,
		RemoteTimeout:       15 * time.Second,
		AuthPollInterval:    2 * time.Second,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GENERATOR_TIMEOUT", "")
	t.Setenv("REMOTE_TIMEOUT", "")
	t.Setenv("AUTH_POLL_INTERVAL", "")
	t.Setenv("WORKSPACE_IDLE_TTL", "")
	t.Setenv("WORKSPACE_SWEEP_INTERVAL", "")
	t.Setenv("MAX_WORKSPACES", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.GeneratorTimeout)
	assert.Equal(t, 15*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 2*time.Second, cfg.AuthPollInterval)
	assert.Equal(t, 24*time.Hour, cfg.WorkspaceIdleTTL)
	assert.Equal(t, 5*time.Minute, cfg.WorkspaceSweepInterval)
	assert.Equal(t, 10000, cfg.MaxWorkspaces)
}

func TestGetInt(t *testing.T) {
	t.Setenv("X_COUNT", "25")
	t.Setenv("X_NEGATIVE", "-1")
	t.Setenv("X_WORDS", "many")

	n, err := GetInt("X_COUNT", 1)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	n, err = GetInt("X_UNSET_FOR_TEST", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = GetInt("X_NEGATIVE", 1)
	assert.Error(t, err)
	_, err = GetInt("X_WORDS", 1)
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	t.Setenv("X_SECONDS", "12")
	t.Setenv("X_DURATION", "1500ms")
	t.Setenv("X_BAD", "soon")

	d, err := GetDuration("X_SECONDS", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, d)

	d, err = GetDuration("X_DURATION", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = GetDuration("X_UNSET_FOR_TEST", 7*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, d)

	_, err = GetDuration("X_BAD", time.Second)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.SessionSecret = ""
	assert.ErrorContains(t, cfg.Validate(), "SESSION_SECRET")

	cfg = validConfig()
	cfg.EmailWebhookURL = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.GoogleClientID = "id-only"
	assert.ErrorContains(t, cfg.Validate(), "must be set together")

	cfg = validConfig()
	cfg.Env = "production"
	assert.ErrorContains(t, cfg.Validate(), "production")

	cfg = validConfig()
	cfg.ConversationBackend = "browser"
	assert.ErrorContains(t, cfg.Validate(), "CONVERSATION_BACKEND")

	cfg = validConfig()
	cfg.ConversationBackend = BackendLocal
	cfg.LocalDBPath = ""
	assert.ErrorContains(t, cfg.Validate(), "LOCAL_DB_PATH")
}
