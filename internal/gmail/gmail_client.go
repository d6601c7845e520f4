// Package gmail creates Gmail drafts from saved email artifacts using the
// signed-in user's OAuth access token.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/mail"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"writer-studio/internal/logger"
	"writer-studio/internal/model"
)

// Drafter turns an artifact into a draft in the user's mailbox and returns
// the draft id.
type Drafter interface {
	CreateDraft(ctx context.Context, a *model.Artifact) (string, error)
}

// Factory builds a Drafter bound to one access token.
type Factory func(accessToken string) (Drafter, error)

type draftClient struct {
	client *gmail.Service
	logger *logger.Logger
}

func NewDraftClient(accessToken string, logger *logger.Logger, opts ...option.ClientOption) (Drafter, error) {
	httpClient := &http.Client{
		Transport: &oauth2Transport{token: accessToken},
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	gmailService, err := gmail.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &draftClient{
		client: gmailService,
		logger: logger.With("gmail"),
	}, nil
}

// NewFactory returns a Factory passing opts to every client it builds.
func NewFactory(logger *logger.Logger, opts ...option.ClientOption) Factory {
	return func(accessToken string) (Drafter, error) {
		return NewDraftClient(accessToken, logger, opts...)
	}
}

type oauth2Transport struct {
	token string
}

func (t *oauth2Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

func (g *draftClient) CreateDraft(ctx context.Context, a *model.Artifact) (string, error) {
	draft := &gmail.Draft{
		Message: &gmail.Message{Raw: EncodeMessage(a)},
	}

	created, err := g.client.Users.Drafts.Create("me", draft).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", err)
	}

	g.logger.Info("Created Gmail draft", created.Id, "for artifact", a.ID)
	return created.Id, nil
}

// EncodeMessage builds the base64url RFC 2822 message for a. The To header
// is set only when the recipient is a valid address, and a leading
// "Subject:" line in the body is dropped.
func EncodeMessage(a *model.Artifact) string {
	var b strings.Builder
	if addr, err := mail.ParseAddress(a.Recipient); err == nil {
		b.WriteString("To: " + addr.String() + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", a.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body(a.Content), "\n", "\r\n"))

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

func body(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if strings.HasPrefix(content, "Subject:") {
		if i := strings.Index(content, "\n"); i >= 0 {
			return strings.TrimLeft(content[i+1:], "\n")
		}
		return ""
	}
	return content
}
