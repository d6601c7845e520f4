package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"writer-studio/internal/apperr"
	"writer-studio/internal/logger"
)

const (
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20

	// AvailabilityTimeout bounds a reachability check.
	AvailabilityTimeout = 5 * time.Second
)

// Generator sends one payload to a text generator and returns the raw
// response body.
type Generator interface {
	Generate(ctx context.Context, payload any) ([]byte, error)
}

// Checker reports whether a generator can be reached right now.
type Checker interface {
	Available(ctx context.Context) bool
}

// WebhookClient posts JSON to a generator webhook. No authentication
// header is sent.
type WebhookClient struct {
	url        string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewWebhookClient(url string, timeout time.Duration, logger *logger.Logger) *WebhookClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &WebhookClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("generate"),
	}
}

func (c *WebhookClient) Generate(ctx context.Context, payload any) ([]byte, error) {
	if c.url == "" {
		return nil, apperr.NewGenerator("generator endpoint is not configured", nil)
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.NewInternal(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, apperr.NewInternal(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Sending request to generator webhook:", c.url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Generator request failed:", err)
		var netErr net.Error
		if ctx.Err() != nil || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, apperr.NewTimeout("generator request", err)
		}
		return nil, apperr.NewGenerator("Failed to connect to generator webhook", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperr.NewGenerator("failed to read generator response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Webhook responded with status:", resp.StatusCode)
		return nil, apperr.NewGenerator(
			fmt.Sprintf("generator request failed with status %d", resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(body))),
		)
	}
	return body, nil
}

// Available sends a GET to the webhook. Any HTTP answer, even an error
// status, means the endpoint is up; only a transport failure or timeout
// means it is not.
func (c *WebhookClient) Available(ctx context.Context) bool {
	if c.url == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, AvailabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Generator webhook unreachable:", err)
		return false
	}
	resp.Body.Close()
	return true
}

// MockGenerator is a Generator for tests. It is safe for concurrent use.
type MockGenerator struct {
	GenerateFunc  func(ctx context.Context, payload any) ([]byte, error)
	AvailableFunc func(ctx context.Context) bool

	calls atomic.Int64
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Calls is the number of Generate calls so far.
func (m *MockGenerator) Calls() int {
	return int(m.calls.Load())
}

func (m *MockGenerator) Available(ctx context.Context) bool {
	if m.AvailableFunc != nil {
		return m.AvailableFunc(ctx)
	}
	return true
}

func (m *MockGenerator) Generate(ctx context.Context, payload any) ([]byte, error) {
	m.calls.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, payload)
	}
	return []byte(`{"output":"generated text"}`), nil
}

// FallbackPromptGenerator answers prompt requests locally with a fixed
// set of suggestions. It is used when no prompt webhook is configured.
type FallbackPromptGenerator struct{}

var fallbackEnhancements = []string{
	"Be specific and detailed in your request",
	"Include context and background information",
	"Specify the desired output format",
}

// Available is always true; nothing leaves the process.
func (FallbackPromptGenerator) Available(context.Context) bool { return true }

func (FallbackPromptGenerator) Generate(_ context.Context, payload any) ([]byte, error) {
	form, ok := payload.(PromptForm)
	if !ok {
		return nil, apperr.NewInternal(fmt.Errorf("fallback generator: unexpected payload %T", payload))
	}
	return json.Marshal(map[string]string{"output": FallbackPrompt(form.Prompt())})
}

// FallbackPrompt wraps prompt with generic improvement tips.
func FallbackPrompt(prompt string) string {
	var b strings.Builder
	b.WriteString("Optimized AI Prompt:\n\n" + prompt + "\n\nEnhancements to consider:\n")
	for i, e := range fallbackEnhancements {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e)
	}
	b.WriteString("\nAdditional tips:\n")
	b.WriteString("- Review your prompt for clarity and specificity\n")
	b.WriteString("- Consider your audience and their needs\n")
	b.WriteString("- Test different variations to see what works best\n")
	b.WriteString("- Iterate and refine based on results")
	return b.String()
}
