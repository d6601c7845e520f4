package memory

import (
	"context"
	"sort"
	"sync"

	"writer-studio/internal/model"
	"writer-studio/internal/repository"
)

// InMemoryArtifactRepository keeps rows per owner in insertion order.
type InMemoryArtifactRepository struct {
	rows  map[string][]*model.Artifact // ownerID -> artifacts
	mutex sync.RWMutex
}

func NewInMemoryArtifactRepository() *InMemoryArtifactRepository {
	return &InMemoryArtifactRepository{
		rows: make(map[string][]*model.Artifact),
	}
}

func (r *InMemoryArtifactRepository) Create(ctx context.Context, artifact *model.Artifact) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.rows[artifact.OwnerID] = append(r.rows[artifact.OwnerID], artifact.Clone())
	return nil
}

func (r *InMemoryArtifactRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Artifact, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rows := r.rows[ownerID]
	result := make([]*model.Artifact, 0, len(rows))
	// Newest insert first so equal timestamps still come back newest first.
	for i := len(rows) - 1; i >= 0; i-- {
		result = append(result, rows[i].Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryArtifactRepository) FindByID(ctx context.Context, ownerID, id string) (*model.Artifact, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, artifact := range r.rows[ownerID] {
		if artifact.ID == id {
			return artifact.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *InMemoryArtifactRepository) Update(ctx context.Context, artifact *model.Artifact) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rows := r.rows[artifact.OwnerID]
	for i, existing := range rows {
		if existing.ID == artifact.ID {
			rows[i] = artifact.Clone()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *InMemoryArtifactRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rows := r.rows[ownerID]
	for i, existing := range rows {
		if existing.ID == id {
			r.rows[ownerID] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// Conversation repository implementation
type InMemoryConversationRepository struct {
	rows  map[string][]*model.Conversation
	mutex sync.RWMutex
}

func NewInMemoryConversationRepository() *InMemoryConversationRepository {
	return &InMemoryConversationRepository{
		rows: make(map[string][]*model.Conversation),
	}
}

func (r *InMemoryConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.rows[conversation.OwnerID] = append(r.rows[conversation.OwnerID], conversation.Clone())
	return nil
}

func (r *InMemoryConversationRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rows := r.rows[ownerID]
	result := make([]*model.Conversation, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		result = append(result, rows[i].Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryConversationRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	rows := r.rows[ownerID]
	for i, existing := range rows {
		if existing.ID == id {
			r.rows[ownerID] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// InMemoryTemplateRepository keeps every template in one slice; visibility
// is decided per read.
type InMemoryTemplateRepository struct {
	rows  []*model.Template
	mutex sync.RWMutex
}

func NewInMemoryTemplateRepository() *InMemoryTemplateRepository {
	return &InMemoryTemplateRepository{}
}

func (r *InMemoryTemplateRepository) Create(ctx context.Context, template *model.Template) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.rows = append(r.rows, template.Clone())
	return nil
}

func (r *InMemoryTemplateRepository) FindVisible(ctx context.Context, ownerID string) ([]*model.Template, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*model.Template, 0, len(r.rows))
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].VisibleTo(ownerID) {
			result = append(result, r.rows[i].Clone())
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryTemplateRepository) FindByID(ctx context.Context, ownerID, id string) (*model.Template, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, template := range r.rows {
		if template.ID == id && template.VisibleTo(ownerID) {
			return template.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *InMemoryTemplateRepository) Update(ctx context.Context, template *model.Template) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, existing := range r.rows {
		if existing.ID == template.ID && existing.CreatedBy == template.CreatedBy {
			r.rows[i] = template.Clone()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *InMemoryTemplateRepository) Delete(ctx context.Context, ownerID, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, existing := range r.rows {
		if existing.ID == id && existing.CreatedBy == ownerID {
			r.rows = append(r.rows[:i:i], r.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}
