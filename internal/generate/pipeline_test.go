package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writer-studio/internal/apperr"
	"writer-studio/internal/logger"
	"writer-studio/internal/model"
)

type recordingSaver struct {
	drafts []model.ArtifactDraft
}

func (s *recordingSaver) Add(_ context.Context, d model.ArtifactDraft) (*model.Artifact, error) {
	s.drafts = append(s.drafts, d)
	return model.NewArtifact("alice", d), nil
}

func TestPipeline_ComposeEmail(t *testing.T) {
	gen := NewMockGenerator()
	gen.GenerateFunc = func(context.Context, any) ([]byte, error) {
		return []byte(`[{"email":"Subject: Overdue invoice\n\nHi Sam, a reminder."}]`), nil
	}
	p := NewPipeline(gen, NewMockGenerator(), logger.Discard())
	saver := &recordingSaver{}

	form := validEmailForm()
	form.Tags = []string{"billing", "billing"}
	saved, err := p.ComposeEmail(context.Background(), form, saver)
	require.NoError(t, err)

	require.Len(t, saver.drafts, 1)
	d := saver.drafts[0]
	assert.Equal(t, model.KindEmail, d.Kind)
	assert.Equal(t, "Overdue invoice", d.Subject)
	assert.Equal(t, "follow-up", d.Category)
	assert.Equal(t, "Sam", d.Recipient)
	assert.Equal(t, []string{"billing"}, d.Tags)
	assert.Equal(t, d.Subject, saved.Subject)
}

func TestPipeline_InvalidFormMakesNoRequest(t *testing.T) {
	gen := NewMockGenerator()
	p := NewPipeline(gen, gen, logger.Discard())
	saver := &recordingSaver{}

	_, err := p.ComposeEmail(context.Background(), EmailForm{}, saver)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	_, err = p.OptimizePrompt(context.Background(), PromptForm{}, model.NewTranscript())
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	assert.Zero(t, gen.Calls())
	assert.Empty(t, saver.drafts)
}

func TestPipeline_GeneratorFailureSavesNothing(t *testing.T) {
	gen := NewMockGenerator()
	gen.GenerateFunc = func(context.Context, any) ([]byte, error) {
		return nil, apperr.NewGenerator("down", errors.New("502"))
	}
	p := NewPipeline(gen, gen, logger.Discard())
	saver := &recordingSaver{}
	transcript := model.NewTranscript()

	_, err := p.ComposeEmail(context.Background(), validEmailForm(), saver)
	assert.True(t, apperr.Is(err, apperr.CodeGeneratorUnavailable))

	_, err = p.ComposePrompt(context.Background(), PromptForm{TaskDescription: "x"}, transcript, saver)
	assert.Error(t, err)

	assert.Empty(t, saver.drafts)
	assert.Zero(t, transcript.Len())
}

func TestPipeline_MalformedReplySavesNothing(t *testing.T) {
	gen := NewMockGenerator()
	gen.GenerateFunc = func(context.Context, any) ([]byte, error) { return []byte(`{"status":"ok"}`), nil }
	p := NewPipeline(gen, gen, logger.Discard())
	saver := &recordingSaver{}

	_, err := p.ComposeEmail(context.Background(), validEmailForm(), saver)
	assert.True(t, apperr.Is(err, apperr.CodeMalformedResponse))
	assert.Empty(t, saver.drafts)
}

func TestPipeline_PromptTranscriptAndSave(t *testing.T) {
	gen := NewMockGenerator()
	gen.GenerateFunc = func(_ context.Context, payload any) ([]byte, error) {
		form := payload.(PromptForm)
		assert.Equal(t, DefaultTargetModel, form.TargetModel)
		return []byte(`{"output":"Act as a travel agent."}`), nil
	}
	p := NewPipeline(NewMockGenerator(), gen, logger.Discard())
	transcript := model.NewTranscript()
	form := PromptForm{TaskDescription: "Plan a trip to Lisbon\nwith kids", UseCaseCategory: "travel"}

	msgs, err := p.OptimizePrompt(context.Background(), form, transcript)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Task: Plan a trip to Lisbon")
	assert.Equal(t, "Act as a travel agent.", msgs[1].Content)
	assert.Equal(t, 2, transcript.Len())

	saver := &recordingSaver{}
	_, err = p.SavePrompt(context.Background(), "", form, transcript, saver)
	require.NoError(t, err)
	require.Len(t, saver.drafts, 1)
	assert.Equal(t, model.KindPrompt, saver.drafts[0].Kind)
	assert.Equal(t, "Plan a trip to Lisbon", saver.drafts[0].Subject)
	assert.Equal(t, "travel", saver.drafts[0].Category)
	assert.Equal(t, "Act as a travel agent.", saver.drafts[0].Content)
}

func TestPipeline_SavePromptNeedsReply(t *testing.T) {
	p := NewPipeline(NewMockGenerator(), NewMockGenerator(), logger.Discard())
	_, err := p.SavePrompt(context.Background(), "t", PromptForm{}, model.NewTranscript(), &recordingSaver{})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestPipeline_Status(t *testing.T) {
	email := NewMockGenerator()
	email.AvailableFunc = func(context.Context) bool { return false }

	st := NewPipeline(email, FallbackPromptGenerator{}, logger.Discard()).Status(context.Background())
	assert.Equal(t, Status{Email: false, Prompt: true}, st)

	// A generator that cannot report reachability is assumed up.
	plain := struct{ Generator }{NewMockGenerator()}
	st = NewPipeline(plain, plain, logger.Discard()).Status(context.Background())
	assert.Equal(t, Status{Email: true, Prompt: true}, st)
}
