package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Document is a piece of content owned by a space
type Document struct {
	ID        uuid.UUID `json:"id"`
	SpaceID   uuid.UUID `json:"space_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentCreate represents document creation data
type DocumentCreate struct {
	Title   string `json:"title" validate:"required,max=500"`
	Content string `json:"content,omitempty"`
}

// Comment is attached to a document. SpaceID is denormalized so the resolver
// can find the owning space in one lookup.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	SpaceID    uuid.UUID `json:"space_id"`
	Body       string    `json:"body"`
	CreatedBy  uuid.UUID `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentCreate represents comment creation data
type CommentCreate struct {
	Body string `json:"body" validate:"required,max=10000"`
}

// DocumentRepository defines the interface for document storage
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]Document, error)
}

// CommentRepository defines the interface for comment storage
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Comment, error)
}
