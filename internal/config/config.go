package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

type Config struct {
	Port               string
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	SessionSecret      string
	DatabaseURL        string
	Env                string
	LogLevel           string

	// Generator webhooks. No auth header is sent to either.
	EmailWebhookURL  string
	PromptWebhookURL string
	GeneratorTimeout time.Duration

	// RemoteTimeout bounds every remote store call.
	RemoteTimeout time.Duration

	// AuthPollInterval is the fallback re-check period of the identity monitor.
	AuthPollInterval time.Duration

	// ConversationBackend is "remote" (the artifact store) or "local"
	// (a sqlite key/value file at LocalDBPath).
	ConversationBackend string
	LocalDBPath         string

	// Idle browser workspaces without live event streams are dropped
	// after WorkspaceIdleTTL, checked every WorkspaceSweepInterval.
	WorkspaceIdleTTL       time.Duration
	WorkspaceSweepInterval time.Duration

	// MaxWorkspaces caps live workspaces; the least recently seen one is
	// evicted beyond it. Zero disables the cap.
	MaxWorkspaces int
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                GetEnv("PORT", "8080"),
		BaseURL:             GetEnv("BASE_URL", "http://localhost:8080"),
		GoogleClientID:      GetEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  GetEnv("GOOGLE_CLIENT_SECRET", ""),
		SessionSecret:       GetEnv("SESSION_SECRET", ""),
		DatabaseURL:         GetEnv("DATABASE_URL", ""),
		Env:                 GetEnv("ENV", "development"),
		LogLevel:            GetEnv("LOG_LEVEL", "info"),
		EmailWebhookURL:     GetEnv("EMAIL_WEBHOOK_URL", ""),
		PromptWebhookURL:    GetEnv("PROMPT_WEBHOOK_URL", ""),
		ConversationBackend: GetEnv("CONVERSATION_BACKEND", BackendRemote),
		LocalDBPath:         GetEnv("LOCAL_DB_PATH", "writer-studio.db"),
	}

	var err error
	if cfg.GeneratorTimeout, err = GetDuration("GENERATOR_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RemoteTimeout, err = GetDuration("REMOTE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.AuthPollInterval, err = GetDuration("AUTH_POLL_INTERVAL", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.WorkspaceIdleTTL, err = GetDuration("WORKSPACE_IDLE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.WorkspaceSweepInterval, err = GetDuration("WORKSPACE_SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MaxWorkspaces, err = GetInt("MAX_WORKSPACES", 10000); err != nil {
		return nil, err
	}
	return cfg, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetDuration accepts Go duration strings ("20s") or a bare number of seconds.
func GetDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}

func GetInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid count %q", key, raw)
	}
	return n, nil
}

// IsProduction reports whether cookies should be marked secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// OAuthEnabled reports whether Google login can be offered.
func (c *Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.EmailWebhookURL == "" && c.PromptWebhookURL == "" {
		return fmt.Errorf("at least one of EMAIL_WEBHOOK_URL or PROMPT_WEBHOOK_URL is required")
	}
	if (c.GoogleClientID == "") != (c.GoogleClientSecret == "") {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
	}
	if c.IsProduction() && !c.OAuthEnabled() {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required in production")
	}
	switch c.ConversationBackend {
	case BackendRemote:
	case BackendLocal:
		if c.LocalDBPath == "" {
			return fmt.Errorf("LOCAL_DB_PATH is required when CONVERSATION_BACKEND=local")
		}
	default:
		return fmt.Errorf("CONVERSATION_BACKEND must be %q or %q, got %q", BackendRemote, BackendLocal, c.ConversationBackend)
	}
	if c.GeneratorTimeout <= 0 || c.RemoteTimeout <= 0 || c.AuthPollInterval <= 0 {
		return fmt.Errorf("timeouts and AUTH_POLL_INTERVAL must be positive")
	}
	return nil
}
