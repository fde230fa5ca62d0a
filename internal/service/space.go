package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
)

// SpaceService manages spaces and their ownership
type SpaceService struct {
	spaceRepo  domain.SpaceRepository
	memberRepo domain.SpaceMemberRepository
	resolver   *PermissionResolver
}

// NewSpaceService creates a new space service
func NewSpaceService(
	spaceRepo domain.SpaceRepository,
	memberRepo domain.SpaceMemberRepository,
	resolver *PermissionResolver,
) *SpaceService {
	return &SpaceService{
		spaceRepo:  spaceRepo,
		memberRepo: memberRepo,
		resolver:   resolver,
	}
}

// Create creates a space and enrolls the creator as its accepted owner
func (s *SpaceService) Create(ctx context.Context, userID uuid.UUID, input domain.SpaceCreate) (*domain.Space, error) {
	now := time.Now()
	space := &domain.Space{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		OwnerID:     userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.spaceRepo.Create(ctx, space); err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}

	owner := &domain.SpaceMember{
		ID:         uuid.New(),
		SpaceID:    space.ID,
		UserID:     userID,
		Role:       domain.RoleOwner,
		InvitedBy:  userID,
		InvitedAt:  now,
		AcceptedAt: &now,
		Status:     domain.MemberAccepted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.memberRepo.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to enroll owner: %w", err)
	}

	return space, nil
}

// GetByID retrieves a space. The caller needs docs.read on it.
func (s *SpaceService) GetByID(ctx context.Context, userID, spaceID uuid.UUID) (*domain.Space, error) {
	if !s.resolver.HasPermission(ctx, userID, domain.ResourceSpace, spaceID, domain.PermDocsRead) {
		return nil, fmt.Errorf("%s required: %w", domain.PermDocsRead, domain.ErrForbidden)
	}

	space, err := s.spaceRepo.GetByID(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get space: %w", err)
	}
	if space == nil {
		return nil, fmt.Errorf("space %s: %w", spaceID, domain.ErrNotFound)
	}

	return space, nil
}

// List returns the spaces the user is an accepted member of
func (s *SpaceService) List(ctx context.Context, userID uuid.UUID) ([]domain.Space, error) {
	spaces, err := s.spaceRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}

	return spaces, nil
}

// Update modifies a space. The caller needs space.admin.
func (s *SpaceService) Update(ctx context.Context, userID, spaceID uuid.UUID, input domain.SpaceUpdate) (*domain.Space, error) {
	if !s.resolver.HasPermission(ctx, userID, domain.ResourceSpace, spaceID, domain.PermSpaceAdmin) {
		return nil, fmt.Errorf("%s required: %w", domain.PermSpaceAdmin, domain.ErrForbidden)
	}

	if err := s.spaceRepo.Update(ctx, spaceID, &input); err != nil {
		return nil, fmt.Errorf("failed to update space: %w", err)
	}

	space, err := s.spaceRepo.GetByID(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get space: %w", err)
	}
	if space == nil {
		return nil, fmt.Errorf("space %s: %w", spaceID, domain.ErrNotFound)
	}

	return space, nil
}

// Delete removes a space. The caller needs space.delete.
func (s *SpaceService) Delete(ctx context.Context, userID, spaceID uuid.UUID) error {
	if !s.resolver.HasPermission(ctx, userID, domain.ResourceSpace, spaceID, domain.PermSpaceDelete) {
		return fmt.Errorf("%s required: %w", domain.PermSpaceDelete, domain.ErrForbidden)
	}

	if err := s.spaceRepo.Delete(ctx, spaceID); err != nil {
		return fmt.Errorf("failed to delete space: %w", err)
	}

	return nil
}
