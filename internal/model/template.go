package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Template is a reusable email body with {{name}} placeholders. Public
// templates are visible to everyone; the rest only to their creator.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Body        string    `json:"template"`
	Variables   []string  `json:"variables"`
	CreatedBy   string    `json:"created_by"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TemplateDraft struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Body        string   `json:"template"`
	Variables   []string `json:"variables"`
	IsPublic    bool     `json:"is_public"`
}

// TemplatePatch carries the fields an update changes; nil means keep.
type TemplatePatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Body        *string   `json:"template,omitempty"`
	Variables   *[]string `json:"variables,omitempty"`
	IsPublic    *bool     `json:"is_public,omitempty"`
}

// Validate reports the first missing required field name, or "".
func (d TemplateDraft) Validate() string {
	if strings.TrimSpace(d.Name) == "" {
		return "name"
	}
	if strings.TrimSpace(d.Body) == "" {
		return "template"
	}
	return ""
}

func NewTemplate(createdBy string, draft TemplateDraft) *Template {
	now := time.Now().UTC()
	t := &Template{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(draft.Name),
		Description: strings.TrimSpace(draft.Description),
		Category:    strings.TrimSpace(draft.Category),
		Body:        draft.Body,
		Variables:   NormalizeTags(draft.Variables),
		CreatedBy:   createdBy,
		IsPublic:    draft.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(t.Variables) == 0 {
		t.Variables = Placeholders(t.Body)
	}
	return t
}

func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Variables = append([]string{}, t.Variables...)
	return &cp
}

// VisibleTo reports whether ownerID may read t.
func (t *Template) VisibleTo(ownerID string) bool {
	return t.IsPublic || (ownerID != "" && t.CreatedBy == ownerID)
}

func (t *Template) Apply(patch TemplatePatch) {
	if patch.Name != nil {
		t.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		t.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Body != nil {
		t.Body = *patch.Body
		if patch.Variables == nil {
			t.Variables = Placeholders(t.Body)
		}
	}
	if patch.Variables != nil {
		t.Variables = NormalizeTags(*patch.Variables)
	}
	if patch.IsPublic != nil {
		t.IsPublic = *patch.IsPublic
	}
	t.UpdatedAt = time.Now().UTC()
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Placeholders lists the distinct {{name}} variables of body in order.
func Placeholders(body string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, m := range placeholder.FindAllStringSubmatch(body, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// Render substitutes values into the placeholders. A variable without a
// value is left as written.
func (t *Template) Render(values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(t.Body, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return m
	})
}
