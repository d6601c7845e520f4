package gmail

import (
	"context"

	"writer-studio/internal/model"
)

// MockDraftClient is a mock implementation of Drafter for testing
type MockDraftClient struct {
	CreateDraftFunc func(ctx context.Context, a *model.Artifact) (string, error)
	Created         []*model.Artifact
}

func NewMockDraftClient() *MockDraftClient {
	return &MockDraftClient{}
}

func (m *MockDraftClient) CreateDraft(ctx context.Context, a *model.Artifact) (string, error) {
	m.Created = append(m.Created, a)
	if m.CreateDraftFunc != nil {
		return m.CreateDraftFunc(ctx, a)
	}

	// Default mock behavior: success
	return "draft-" + a.ID, nil
}

// Factory returns a Factory that always hands out m.
func (m *MockDraftClient) Factory() Factory {
	return func(string) (Drafter, error) { return m, nil }
}
