package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
)

// DocumentService manages documents and comments, gating every operation
// through the permission resolver
type DocumentService struct {
	documentRepo domain.DocumentRepository
	commentRepo  domain.CommentRepository
	resolver     *PermissionResolver
}

// NewDocumentService creates a new document service
func NewDocumentService(
	documentRepo domain.DocumentRepository,
	commentRepo domain.CommentRepository,
	resolver *PermissionResolver,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		commentRepo:  commentRepo,
		resolver:     resolver,
	}
}

// CreateDocument creates a document in a space. The caller needs docs.write
// on the space.
func (s *DocumentService) CreateDocument(ctx context.Context, actorID, spaceID uuid.UUID, input domain.DocumentCreate) (*domain.Document, error) {
	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceSpace, spaceID, domain.PermDocsWrite) {
		return nil, fmt.Errorf("%s required: %w", domain.PermDocsWrite, domain.ErrForbidden)
	}

	now := time.Now()
	doc := &domain.Document{
		ID:        uuid.New(),
		SpaceID:   spaceID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return doc, nil
}

// GetDocument retrieves a document. The caller needs docs.read on it.
func (s *DocumentService) GetDocument(ctx context.Context, actorID, documentID uuid.UUID) (*domain.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceDocument, documentID, domain.PermDocsRead) {
		return nil, fmt.Errorf("%s required: %w", domain.PermDocsRead, domain.ErrForbidden)
	}

	return doc, nil
}

// ListDocuments returns the documents in a space. The caller needs docs.read
// on the space.
func (s *DocumentService) ListDocuments(ctx context.Context, actorID, spaceID uuid.UUID) ([]domain.Document, error) {
	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceSpace, spaceID, domain.PermDocsRead) {
		return nil, fmt.Errorf("%s required: %w", domain.PermDocsRead, domain.ErrForbidden)
	}

	docs, err := s.documentRepo.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// CreateComment attaches a comment to a document. The caller needs docs.write
// on the document.
func (s *DocumentService) CreateComment(ctx context.Context, actorID, documentID uuid.UUID, input domain.CommentCreate) (*domain.Comment, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceDocument, documentID, domain.PermDocsWrite) {
		return nil, fmt.Errorf("%s required: %w", domain.PermDocsWrite, domain.ErrForbidden)
	}

	comment := &domain.Comment{
		ID:         uuid.New(),
		DocumentID: documentID,
		SpaceID:    doc.SpaceID,
		Body:       input.Body,
		CreatedBy:  actorID,
		CreatedAt:  time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// GetComment retrieves a comment. The caller needs docs.read on it, which may
// be satisfied through grants inherited from the document or space.
func (s *DocumentService) GetComment(ctx context.Context, actorID, commentID uuid.UUID) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %s: %w", commentID, domain.ErrNotFound)
	}

	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceComment, commentID, domain.PermDocsRead) {
		return nil, fmt.Errorf("%s required: %w", domain.PermDocsRead, domain.ErrForbidden)
	}

	return comment, nil
}

// ListComments returns a document's comments. The caller needs docs.read on
// the document.
func (s *DocumentService) ListComments(ctx context.Context, actorID, documentID uuid.UUID) ([]domain.Comment, error) {
	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceDocument, documentID, domain.PermDocsRead) {
		return nil, fmt.Errorf("%s required: %w", domain.PermDocsRead, domain.ErrForbidden)
	}

	comments, err := s.commentRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}
