package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DocumentRepository handles document data access
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, space_id, title, content, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		doc.ID,
		doc.SpaceID,
		doc.Title,
		doc.Content,
		doc.CreatedBy,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	query := `
		SELECT id, space_id, title, content, created_by, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	var doc domain.Document
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.SpaceID,
		&doc.Title,
		&doc.Content,
		&doc.CreatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// ListBySpace retrieves all documents in a space
func (r *DocumentRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.Document, error) {
	query := `
		SELECT id, space_id, title, content, created_by, created_at, updated_at
		FROM documents
		WHERE space_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.SpaceID,
			&doc.Title,
			&doc.Content,
			&doc.CreatedBy,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// CommentRepository handles comment data access
type CommentRepository struct {
	db *DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, document_id, space_id, body, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		comment.ID,
		comment.DocumentID,
		comment.SpaceID,
		comment.Body,
		comment.CreatedBy,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT id, document_id, space_id, body, created_by, created_at
		FROM comments
		WHERE id = $1
	`

	var comment domain.Comment
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.DocumentID,
		&comment.SpaceID,
		&comment.Body,
		&comment.CreatedBy,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &comment, nil
}

// ListByDocument retrieves all comments on a document
func (r *CommentRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT id, document_id, space_id, body, created_by, created_at
		FROM comments
		WHERE document_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.DocumentID,
			&comment.SpaceID,
			&comment.Body,
			&comment.CreatedBy,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}
