// Package generate turns writer forms into generator requests and the
// generator's loosely shaped replies into artifact drafts.
package generate

import (
	"context"
	"strings"
	"sync"

	"writer-studio/internal/apperr"
	"writer-studio/internal/logger"
	"writer-studio/internal/model"
)

// Saver accepts a finished draft; collection.Store satisfies it.
type Saver interface {
	Add(ctx context.Context, draft model.ArtifactDraft) (*model.Artifact, error)
}

type Pipeline struct {
	email  Generator
	prompt Generator
	logger *logger.Logger
}

func NewPipeline(email, prompt Generator, logger *logger.Logger) *Pipeline {
	return &Pipeline{
		email:  email,
		prompt: prompt,
		logger: logger.With("generate"),
	}
}

// Status is the reachability of both generators.
type Status struct {
	Email  bool `json:"email"`
	Prompt bool `json:"prompt"`
}

// Status checks both generators concurrently. A generator that cannot
// report reachability counts as available.
func (p *Pipeline) Status(ctx context.Context) Status {
	var st Status
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		st.Email = available(ctx, p.email)
	}()
	go func() {
		defer wg.Done()
		st.Prompt = available(ctx, p.prompt)
	}()
	wg.Wait()
	return st
}

func available(ctx context.Context, g Generator) bool {
	if c, ok := g.(Checker); ok {
		return c.Available(ctx)
	}
	return true
}

// DraftEmail validates form, calls the email generator and returns the
// resulting draft without saving it.
func (p *Pipeline) DraftEmail(ctx context.Context, form EmailForm) (model.ArtifactDraft, error) {
	if err := form.Validate(); err != nil {
		return model.ArtifactDraft{}, err
	}

	body, err := p.email.Generate(ctx, form)
	if err != nil {
		return model.ArtifactDraft{}, err
	}
	text, err := Parse(body, EmailStrategies)
	if err != nil {
		p.logger.Warn("Email generator returned an unreadable payload:", err)
		return model.ArtifactDraft{}, err
	}

	p.logger.Info("Email generated for purpose:", form.Purpose)
	return emailDraft(form, text), nil
}

// ComposeEmail drafts an email and hands it to saver. Nothing is saved
// when generation fails.
func (p *Pipeline) ComposeEmail(ctx context.Context, form EmailForm, saver Saver) (*model.Artifact, error) {
	draft, err := p.DraftEmail(ctx, form)
	if err != nil {
		return nil, err
	}
	return saver.Add(ctx, draft)
}

// OptimizePrompt sends form to the prompt generator and, on success,
// appends the rendered prompt and the optimized reply to transcript.
func (p *Pipeline) OptimizePrompt(ctx context.Context, form PromptForm, transcript *model.Transcript) ([]model.Message, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	form = form.withDefaults()

	body, err := p.prompt.Generate(ctx, form)
	if err != nil {
		return nil, err
	}
	text, err := Parse(body, PromptStrategies)
	if err != nil {
		p.logger.Warn("Prompt generator returned an unreadable payload:", err)
		return nil, err
	}

	user := transcript.Append(model.RoleUser, form.Prompt())
	assistant := transcript.Append(model.RoleAssistant, text)
	p.logger.Info("Prompt optimized for model:", form.TargetModel)
	return []model.Message{user, assistant}, nil
}

// SavePrompt stores the latest assistant reply of transcript as a prompt
// artifact titled title.
func (p *Pipeline) SavePrompt(ctx context.Context, title string, form PromptForm, transcript *model.Transcript, saver Saver) (*model.Artifact, error) {
	var latest string
	msgs := transcript.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant {
			latest = msgs[i].Content
			break
		}
	}
	if strings.TrimSpace(latest) == "" {
		return nil, apperr.NewValidation("content", "Nothing to save: optimize a prompt first")
	}
	if strings.TrimSpace(title) == "" {
		title = firstLine(form.TaskDescription)
	}
	form = form.withDefaults()
	return saver.Add(ctx, promptDraft(title, form.UseCaseCategory, form.TargetModel, latest))
}

// ComposePrompt optimizes form and saves the reply in one step.
func (p *Pipeline) ComposePrompt(ctx context.Context, form PromptForm, transcript *model.Transcript, saver Saver) (*model.Artifact, error) {
	if _, err := p.OptimizePrompt(ctx, form, transcript); err != nil {
		return nil, err
	}
	return p.SavePrompt(ctx, "", form, transcript, saver)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 80 {
		s = string(r[:80])
	}
	return s
}
