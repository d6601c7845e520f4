// Package export renders saved artifacts and conversations as downloads.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"writer-studio/internal/model"
)

const (
	dateLayout     = "1/2/2006"
	dateTimeLayout = "1/2/2006, 3:04:05 PM"
)

// ArtifactText is the plain-text download of an artifact: a header block
// followed by the body.
func ArtifactText(a *model.Artifact) string {
	label := "Recipient"
	if a.Kind == model.KindPrompt {
		label = "Target Model"
	}
	return fmt.Sprintf("Subject: %s\n%s: %s\nCategory: %s\nTags: %s\nCreated: %s\n\n%s",
		a.Subject,
		label, a.Recipient,
		a.Category,
		strings.Join(a.Tags, ", "),
		a.CreatedAt.Format(dateLayout),
		a.Content,
	)
}

var whitespace = regexp.MustCompile(`\s+`)

// ArtifactFilename is "<subject-with-dashes>-<unix millis>.<ext>".
func ArtifactFilename(a *model.Artifact, now time.Time, ext string) string {
	return fmt.Sprintf("%s-%d.%s", whitespace.ReplaceAllString(a.Subject, "-"), now.UnixMilli(), ext)
}

// ConversationText renders the header and every message separated by
// "---" rules.
func ConversationText(c *model.Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nCreated: %s\nLast Updated: %s\n\n",
		c.Title, c.CreatedAt.Format(dateTimeLayout), c.UpdatedAt.Format(dateTimeLayout))

	parts := make([]string, len(c.Messages))
	for i, m := range c.Messages {
		who := "User"
		if m.Role == model.RoleAssistant {
			who = "Assistant"
		}
		parts[i] = fmt.Sprintf("%s - %s\n%s\n", who, m.Timestamp.Format(dateTimeLayout), m.Content)
	}
	b.WriteString(strings.Join(parts, "\n---\n\n"))
	return b.String()
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// ConversationFilename lowercases the title and replaces anything outside
// [a-z0-9] with underscores.
func ConversationFilename(c *model.Conversation, now time.Time) string {
	return fmt.Sprintf("%s-%d.txt", nonAlnum.ReplaceAllString(strings.ToLower(c.Title), "_"), now.UnixMilli())
}

var page = template.Must(template.New("artifact").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body>
<h1>{{.Subject}}</h1>
<dl>
{{- if .Recipient}}<dt>Recipient</dt><dd>{{.Recipient}}</dd>{{end}}
{{- if .Category}}<dt>Category</dt><dd>{{.Category}}</dd>{{end}}
{{- if .Tags}}<dt>Tags</dt><dd>{{.Tags}}</dd>{{end}}
<dt>Created</dt><dd>{{.Created}}</dd>
</dl>
<article>
{{.Body}}</article>
</body>
</html>
`))

// ArtifactHTML renders the artifact as a standalone page. The content is
// treated as Markdown; raw HTML in it is not passed through.
func ArtifactHTML(a *model.Artifact) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(a.Content), &body); err != nil {
		return "", fmt.Errorf("failed to render content: %w", err)
	}

	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Subject   string
		Recipient string
		Category  string
		Tags      string
		Created   string
		Body      template.HTML
	}{
		Subject:   a.Subject,
		Recipient: a.Recipient,
		Category:  a.Category,
		Tags:      strings.Join(a.Tags, ", "),
		Created:   a.CreatedAt.Format(dateLayout),
		Body:      template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return out.String(), nil
}
