package service

import (
	"context"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSpaceMemberRepository mocks the SpaceMemberRepository interface
type MockSpaceMemberRepository struct {
	mock.Mock
}

func (m *MockSpaceMemberRepository) Create(ctx context.Context, member *domain.SpaceMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockSpaceMemberRepository) GetActive(ctx context.Context, spaceID, userID uuid.UUID) (*domain.SpaceMember, error) {
	args := m.Called(ctx, spaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpaceMember), args.Error(1)
}

func (m *MockSpaceMemberRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.SpaceMember, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SpaceMember), args.Error(1)
}

func (m *MockSpaceMemberRepository) ListSpaceIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockSpaceMemberRepository) CountActiveByRole(ctx context.Context, spaceID uuid.UUID, role domain.Role) (int, error) {
	args := m.Called(ctx, spaceID, role)
	return args.Int(0), args.Error(1)
}

func (m *MockSpaceMemberRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role, permissions []string) error {
	args := m.Called(ctx, id, role, permissions)
	return args.Error(0)
}

func (m *MockSpaceMemberRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.MemberStatus, acceptedAt *time.Time) error {
	args := m.Called(ctx, id, status, acceptedAt)
	return args.Error(0)
}

// MockGrantRepository mocks the GrantRepository interface
type MockGrantRepository struct {
	mock.Mock
}

func (m *MockGrantRepository) Create(ctx context.Context, grant *domain.PermissionGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockGrantRepository) ListForResource(ctx context.Context, resourceType domain.ResourceType, resourceID, userID uuid.UUID, role *domain.Role, at time.Time) ([]domain.PermissionGrant, error) {
	args := m.Called(ctx, resourceType, resourceID, userID, role, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PermissionGrant), args.Error(1)
}

func (m *MockGrantRepository) ListByUser(ctx context.Context, userID uuid.UUID, at time.Time) ([]domain.PermissionGrant, error) {
	args := m.Called(ctx, userID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PermissionGrant), args.Error(1)
}

// MockSpaceInvitationRepository mocks the SpaceInvitationRepository interface
type MockSpaceInvitationRepository struct {
	mock.Mock
}

func (m *MockSpaceInvitationRepository) Create(ctx context.Context, invitation *domain.SpaceInvitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *MockSpaceInvitationRepository) GetByToken(ctx context.Context, token string) (*domain.SpaceInvitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpaceInvitation), args.Error(1)
}

func (m *MockSpaceInvitationRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.SpaceInvitation, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SpaceInvitation), args.Error(1)
}

func (m *MockSpaceInvitationRepository) RedeemSlot(ctx context.Context, token string, at time.Time) (bool, error) {
	args := m.Called(ctx, token, at)
	return args.Bool(0), args.Error(1)
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockSpaceRepository mocks the SpaceRepository interface
type MockSpaceRepository struct {
	mock.Mock
}

func (m *MockSpaceRepository) Create(ctx context.Context, space *domain.Space) error {
	args := m.Called(ctx, space)
	return args.Error(0)
}

func (m *MockSpaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Space, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Space), args.Error(1)
}

func (m *MockSpaceRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Space, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Space), args.Error(1)
}

func (m *MockSpaceRepository) Update(ctx context.Context, id uuid.UUID, update *domain.SpaceUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockSpaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDocumentRepository mocks the DocumentRepository interface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.Document, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

// MockCommentRepository mocks the CommentRepository interface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Comment, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

// MockNotificationRepository mocks the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}
