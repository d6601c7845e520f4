package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"writer-studio/internal/model"
	"writer-studio/internal/repository"

	"github.com/lib/pq"
)

const artifactColumns = `id, user_id, kind, subject, content, recipient, category, tags, is_favorite, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

type PostgresArtifactRepository struct {
	db *sql.DB
}

func NewPostgresArtifactRepository(db *sql.DB) *PostgresArtifactRepository {
	return &PostgresArtifactRepository{db: db}
}

func scanArtifact(row scanner) (*model.Artifact, error) {
	artifact := &model.Artifact{}
	var tags pq.StringArray
	err := row.Scan(
		&artifact.ID, &artifact.OwnerID, &artifact.Kind, &artifact.Subject, &artifact.Content,
		&artifact.Recipient, &artifact.Category, &tags, &artifact.IsFavorite,
		&artifact.CreatedAt, &artifact.UpdatedAt)
	if err != nil {
		return nil, err
	}
	artifact.Tags = []string(tags)
	if artifact.Tags == nil {
		artifact.Tags = []string{}
	}
	return artifact, nil
}

func (r *PostgresArtifactRepository) Create(ctx context.Context, artifact *model.Artifact) error {
	query := `
		INSERT INTO artifacts (` + artifactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecContext(ctx, query,
		artifact.ID, artifact.OwnerID, artifact.Kind, artifact.Subject, artifact.Content,
		artifact.Recipient, artifact.Category, pq.Array(artifact.Tags), artifact.IsFavorite,
		artifact.CreatedAt, artifact.UpdatedAt)
	return err
}

func (r *PostgresArtifactRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []*model.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, rows.Err()
}

func (r *PostgresArtifactRepository) FindByID(ctx context.Context, ownerID, id string) (*model.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE user_id = $1 AND id = $2`
	artifact, err := scanArtifact(r.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return artifact, nil
}

func (r *PostgresArtifactRepository) Update(ctx context.Context, artifact *model.Artifact) error {
	query := `
		UPDATE artifacts SET subject=$1, content=$2, recipient=$3, category=$4, tags=$5,
		is_favorite=$6, updated_at=$7 WHERE user_id=$8 AND id=$9`
	res, err := r.db.ExecContext(ctx, query,
		artifact.Subject, artifact.Content, artifact.Recipient, artifact.Category,
		pq.Array(artifact.Tags), artifact.IsFavorite, artifact.UpdatedAt,
		artifact.OwnerID, artifact.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *PostgresArtifactRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM artifacts WHERE user_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Postgres Conversation repository implementation
type PostgresConversationRepository struct {
	db *sql.DB
}

func NewPostgresConversationRepository(db *sql.DB) *PostgresConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	messages, err := json.Marshal(conversation.Messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	query := `
		INSERT INTO conversations (id, user_id, title, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.db.ExecContext(ctx, query,
		conversation.ID, conversation.OwnerID, conversation.Title, messages,
		conversation.CreatedAt, conversation.UpdatedAt)
	return err
}

func (r *PostgresConversationRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	query := `SELECT id, user_id, title, messages, created_at, updated_at FROM conversations WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*model.Conversation
	for rows.Next() {
		conversation := &model.Conversation{}
		var messages []byte
		err := rows.Scan(
			&conversation.ID, &conversation.OwnerID, &conversation.Title, &messages,
			&conversation.CreatedAt, &conversation.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(messages, &conversation.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode messages of conversation %s: %w", conversation.ID, err)
		}
		conversations = append(conversations, conversation)
	}
	return conversations, rows.Err()
}

func (r *PostgresConversationRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM conversations WHERE user_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

const templateColumns = `id, name, description, category, template, variables, created_by, is_public, created_at, updated_at`

// PostgresTemplateRepository stores email_templates. created_by and
// description are NULL when empty.
type PostgresTemplateRepository struct {
	db *sql.DB
}

func NewPostgresTemplateRepository(db *sql.DB) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{db: db}
}

func scanTemplate(row scanner) (*model.Template, error) {
	template := &model.Template{}
	var description, createdBy sql.NullString
	var variables pq.StringArray
	err := row.Scan(
		&template.ID, &template.Name, &description, &template.Category, &template.Body,
		&variables, &createdBy, &template.IsPublic, &template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return nil, err
	}
	template.Description = description.String
	template.CreatedBy = createdBy.String
	template.Variables = []string(variables)
	if template.Variables == nil {
		template.Variables = []string{}
	}
	return template, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresTemplateRepository) Create(ctx context.Context, template *model.Template) error {
	query := `
		INSERT INTO email_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		template.ID, template.Name, nullable(template.Description), template.Category, template.Body,
		pq.Array(template.Variables), nullable(template.CreatedBy), template.IsPublic,
		template.CreatedAt, template.UpdatedAt)
	return err
}

func (r *PostgresTemplateRepository) FindVisible(ctx context.Context, ownerID string) ([]*model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates
		WHERE is_public OR ($1 <> '' AND created_by = $1) ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*model.Template
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

func (r *PostgresTemplateRepository) FindByID(ctx context.Context, ownerID, id string) (*model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates
		WHERE id = $2 AND (is_public OR ($1 <> '' AND created_by = $1))`
	template, err := scanTemplate(r.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return template, nil
}

func (r *PostgresTemplateRepository) Update(ctx context.Context, template *model.Template) error {
	query := `
		UPDATE email_templates SET name=$1, description=$2, category=$3, template=$4, variables=$5,
		is_public=$6, updated_at=$7 WHERE created_by=$8 AND id=$9`
	res, err := r.db.ExecContext(ctx, query,
		template.Name, nullable(template.Description), template.Category, template.Body,
		pq.Array(template.Variables), template.IsPublic, template.UpdatedAt,
		template.CreatedBy, template.ID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *PostgresTemplateRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM email_templates WHERE created_by = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, ownerID, id)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// InitializeDatabase creates the necessary tables
func InitializeDatabase(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS artifacts (
			id VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			kind VARCHAR(32) NOT NULL DEFAULT 'email',
			subject TEXT NOT NULL,
			content TEXT NOT NULL,
			recipient TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS artifacts_user_created_idx ON artifacts (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			title TEXT NOT NULL,
			messages JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS conversations_user_created_idx ON conversations (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS email_templates (
			id VARCHAR(255) PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL DEFAULT '',
			template TEXT NOT NULL,
			variables TEXT[] NOT NULL DEFAULT '{}',
			created_by VARCHAR(255),
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS email_templates_created_by_idx ON email_templates (created_by, created_at DESC)`,
	}

	for _, table := range tables {
		_, err := db.Exec(table)
		if err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}
