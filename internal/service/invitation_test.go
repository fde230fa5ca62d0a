package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestInvitationService(
	invitationRepo domain.SpaceInvitationRepository,
	memberRepo domain.SpaceMemberRepository,
	userRepo domain.UserRepository,
	resolver *PermissionResolver,
) *InvitationService {
	return NewInvitationService(
		invitationRepo,
		memberRepo,
		userRepo,
		new(MockSpaceRepository),
		new(MockNotificationRepository),
		resolver,
		7,
		1,
	)
}

func openInvitation(spaceID uuid.UUID, token string, maxUses int) *domain.SpaceInvitation {
	now := time.Now()
	return &domain.SpaceInvitation{
		ID:          uuid.New(),
		SpaceID:     spaceID,
		Token:       token,
		Role:        domain.RoleMember,
		Permissions: domain.RoleMember.DefaultPermissions(),
		InvitedBy:   uuid.New(),
		MaxUses:     maxUses,
		UsedCount:   0,
		ExpiresAt:   now.AddDate(0, 0, 7),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestInvitationService_Invite(t *testing.T) {
	ctx := context.Background()
	spaceID := uuid.New()
	actorID := uuid.New()

	t.Run("issues token once", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		grantRepo := new(MockGrantRepository)
		resolver := NewPermissionResolver(memberRepo, grantRepo, new(MockDocumentRepository), new(MockCommentRepository))
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), resolver)

		memberRepo.On("GetActive", ctx, spaceID, actorID).Return(acceptedMember(spaceID, actorID, domain.RoleAdmin), nil)
		invitationRepo.On("Create", ctx, mock.AnythingOfType("*domain.SpaceInvitation")).Return(nil)

		issued, err := svc.Invite(ctx, actorID, spaceID, domain.InviteMemberRequest{Role: domain.RoleEditor})
		assert.NoError(t, err)
		assert.Len(t, issued.Token, 43)
		assert.Equal(t, 1, issued.MaxUses)
		assert.Equal(t, domain.RoleEditor.DefaultPermissions(), issued.Permissions)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), issued.ExpiresAt, time.Minute)
	})

	t.Run("forbidden without members.invite", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		grantRepo := new(MockGrantRepository)
		resolver := NewPermissionResolver(memberRepo, grantRepo, new(MockDocumentRepository), new(MockCommentRepository))
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), resolver)

		memberRepo.On("GetActive", ctx, spaceID, actorID).Return(acceptedMember(spaceID, actorID, domain.RoleEditor), nil)
		grantRepo.On("ListForResource", ctx, domain.ResourceSpace, spaceID, actorID, mock.Anything, mock.Anything).
			Return([]domain.PermissionGrant{}, nil)

		_, err := svc.Invite(ctx, actorID, spaceID, domain.InviteMemberRequest{Role: domain.RoleEditor})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("rejects email and user together", func(t *testing.T) {
		svc := newTestInvitationService(new(MockSpaceInvitationRepository), new(MockSpaceMemberRepository), new(MockUserRepository), nil)

		email := "someone@example.com"
		userID := uuid.New()
		_, err := svc.Invite(ctx, actorID, spaceID, domain.InviteMemberRequest{
			Email:  &email,
			UserID: &userID,
			Role:   domain.RoleEditor,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("conflict when invitee already a member", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		grantRepo := new(MockGrantRepository)
		resolver := NewPermissionResolver(memberRepo, grantRepo, new(MockDocumentRepository), new(MockCommentRepository))
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), resolver)

		inviteeID := uuid.New()
		memberRepo.On("GetActive", ctx, spaceID, actorID).Return(acceptedMember(spaceID, actorID, domain.RoleAdmin), nil)
		memberRepo.On("GetActive", ctx, spaceID, inviteeID).Return(acceptedMember(spaceID, inviteeID, domain.RoleViewer), nil)

		_, err := svc.Invite(ctx, actorID, spaceID, domain.InviteMemberRequest{
			UserID: &inviteeID,
			Role:   domain.RoleEditor,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestInvitationService_Accept(t *testing.T) {
	ctx := context.Background()
	spaceID := uuid.New()
	userID := uuid.New()
	const token = "test-token"

	t.Run("creates accepted membership", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), nil)

		invitationRepo.On("GetByToken", ctx, token).Return(openInvitation(spaceID, token, 1), nil)
		memberRepo.On("GetActive", ctx, spaceID, userID).Return(nil, nil)
		invitationRepo.On("RedeemSlot", ctx, token, mock.Anything).Return(true, nil)
		memberRepo.On("Create", ctx, mock.AnythingOfType("*domain.SpaceMember")).Return(nil)

		member, err := svc.Accept(ctx, userID, token)
		assert.NoError(t, err)
		assert.Equal(t, domain.MemberAccepted, member.Status)
		assert.Equal(t, domain.RoleMember, member.Role)
		assert.NotNil(t, member.AcceptedAt)
		invitationRepo.AssertExpectations(t)
		memberRepo.AssertExpectations(t)
	})

	t.Run("unknown token", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		svc := newTestInvitationService(invitationRepo, new(MockSpaceMemberRepository), new(MockUserRepository), nil)

		invitationRepo.On("GetByToken", ctx, token).Return(nil, nil)

		_, err := svc.Accept(ctx, userID, token)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("expired invitation never creates a member", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), nil)

		invitation := openInvitation(spaceID, token, 5)
		invitation.ExpiresAt = time.Now().Add(-time.Hour)
		invitationRepo.On("GetByToken", ctx, token).Return(invitation, nil)

		_, err := svc.Accept(ctx, userID, token)
		assert.ErrorIs(t, err, domain.ErrExpired)
		memberRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		invitationRepo.AssertNotCalled(t, "RedeemSlot", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("exhausted invitation", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), nil)

		invitation := openInvitation(spaceID, token, 2)
		invitation.UsedCount = 2
		invitationRepo.On("GetByToken", ctx, token).Return(invitation, nil)
		memberRepo.On("GetActive", ctx, spaceID, userID).Return(nil, nil)

		_, err := svc.Accept(ctx, userID, token)
		assert.ErrorIs(t, err, domain.ErrQuotaExhausted)
	})

	t.Run("addressed to another user", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		svc := newTestInvitationService(invitationRepo, new(MockSpaceMemberRepository), new(MockUserRepository), nil)

		other := uuid.New()
		invitation := openInvitation(spaceID, token, 1)
		invitation.UserID = &other
		invitationRepo.On("GetByToken", ctx, token).Return(invitation, nil)

		_, err := svc.Accept(ctx, userID, token)
		assert.ErrorIs(t, err, domain.ErrNotAddressed)
	})

	t.Run("addressed to another email", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		userRepo := new(MockUserRepository)
		svc := newTestInvitationService(invitationRepo, new(MockSpaceMemberRepository), userRepo, nil)

		email := "invitee@example.com"
		invitation := openInvitation(spaceID, token, 1)
		invitation.Email = &email
		invitationRepo.On("GetByToken", ctx, token).Return(invitation, nil)
		userRepo.On("GetByID", ctx, userID).Return(&domain.User{ID: userID, Email: "someone-else@example.com"}, nil)

		_, err := svc.Accept(ctx, userID, token)
		assert.ErrorIs(t, err, domain.ErrNotAddressed)
	})

	t.Run("re-accept is idempotent and consumes no slot", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), nil)

		existing := acceptedMember(spaceID, userID, domain.RoleMember)
		invitationRepo.On("GetByToken", ctx, token).Return(openInvitation(spaceID, token, 1), nil)
		memberRepo.On("GetActive", ctx, spaceID, userID).Return(existing, nil)

		member, err := svc.Accept(ctx, userID, token)
		assert.NoError(t, err)
		assert.Equal(t, existing.ID, member.ID)
		invitationRepo.AssertNotCalled(t, "RedeemSlot", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pending membership transitions without consuming a slot", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), nil)

		pending := acceptedMember(spaceID, userID, domain.RoleMember)
		pending.Status = domain.MemberPending
		pending.AcceptedAt = nil
		invitationRepo.On("GetByToken", ctx, token).Return(openInvitation(spaceID, token, 1), nil)
		memberRepo.On("GetActive", ctx, spaceID, userID).Return(pending, nil)
		memberRepo.On("SetStatus", ctx, pending.ID, domain.MemberAccepted, mock.Anything).Return(nil)

		member, err := svc.Accept(ctx, userID, token)
		assert.NoError(t, err)
		assert.Equal(t, domain.MemberAccepted, member.Status)
		assert.NotNil(t, member.AcceptedAt)
		invitationRepo.AssertNotCalled(t, "RedeemSlot", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost race on last slot", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), nil)

		invitationRepo.On("GetByToken", ctx, token).Return(openInvitation(spaceID, token, 1), nil)
		memberRepo.On("GetActive", ctx, spaceID, userID).Return(nil, nil)
		invitationRepo.On("RedeemSlot", ctx, token, mock.Anything).Return(false, nil)

		_, err := svc.Accept(ctx, userID, token)
		assert.ErrorIs(t, err, domain.ErrQuotaExhausted)
		memberRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("conflict on create recovers existing member", func(t *testing.T) {
		invitationRepo := new(MockSpaceInvitationRepository)
		memberRepo := new(MockSpaceMemberRepository)
		svc := newTestInvitationService(invitationRepo, memberRepo, new(MockUserRepository), nil)

		winner := acceptedMember(spaceID, userID, domain.RoleMember)
		invitationRepo.On("GetByToken", ctx, token).Return(openInvitation(spaceID, token, 2), nil)
		memberRepo.On("GetActive", ctx, spaceID, userID).Return(nil, nil).Once()
		invitationRepo.On("RedeemSlot", ctx, token, mock.Anything).Return(true, nil)
		memberRepo.On("Create", ctx, mock.AnythingOfType("*domain.SpaceMember")).Return(domain.ErrConflict)
		memberRepo.On("GetActive", ctx, spaceID, userID).Return(winner, nil)

		member, err := svc.Accept(ctx, userID, token)
		assert.NoError(t, err)
		assert.Equal(t, winner.ID, member.ID)
	})
}

// fakeInvitationStore is an in-memory implementation with the same
// compare-and-swap semantics the SQL store provides, used to exercise
// concurrent redemption.
type fakeInvitationStore struct {
	mu         sync.Mutex
	invitation *domain.SpaceInvitation
}

func (f *fakeInvitationStore) Create(ctx context.Context, invitation *domain.SpaceInvitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invitation = invitation
	return nil
}

func (f *fakeInvitationStore) GetByToken(ctx context.Context, token string) (*domain.SpaceInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invitation == nil || f.invitation.Token != token {
		return nil, nil
	}
	copied := *f.invitation
	return &copied, nil
}

func (f *fakeInvitationStore) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.SpaceInvitation, error) {
	return nil, nil
}

func (f *fakeInvitationStore) RedeemSlot(ctx context.Context, token string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.invitation
	if inv == nil || inv.Token != token {
		return false, nil
	}
	if inv.UsedCount >= inv.MaxUses || !inv.ExpiresAt.After(at) {
		return false, nil
	}
	inv.UsedCount++
	return true, nil
}

// fakeMemberStore enforces the one-active-record-per-pair constraint the
// partial unique index provides
type fakeMemberStore struct {
	mu      sync.Mutex
	members map[string]*domain.SpaceMember
}

func memberKey(spaceID, userID uuid.UUID) string {
	return spaceID.String() + "/" + userID.String()
}

func (f *fakeMemberStore) Create(ctx context.Context, member *domain.SpaceMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members == nil {
		f.members = make(map[string]*domain.SpaceMember)
	}
	key := memberKey(member.SpaceID, member.UserID)
	if _, ok := f.members[key]; ok {
		return domain.ErrConflict
	}
	copied := *member
	f.members[key] = &copied
	return nil
}

func (f *fakeMemberStore) GetActive(ctx context.Context, spaceID, userID uuid.UUID) (*domain.SpaceMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	member, ok := f.members[memberKey(spaceID, userID)]
	if !ok {
		return nil, nil
	}
	copied := *member
	return &copied, nil
}

func (f *fakeMemberStore) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.SpaceMember, error) {
	return nil, nil
}

func (f *fakeMemberStore) ListSpaceIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeMemberStore) CountActiveByRole(ctx context.Context, spaceID uuid.UUID, role domain.Role) (int, error) {
	return 0, nil
}

func (f *fakeMemberStore) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role, permissions []string) error {
	return nil
}

func (f *fakeMemberStore) SetStatus(ctx context.Context, id uuid.UUID, status domain.MemberStatus, acceptedAt *time.Time) error {
	return nil
}

func TestInvitationService_Accept_ConcurrentLastSlot(t *testing.T) {
	ctx := context.Background()
	spaceID := uuid.New()
	const token = "race-token"

	invitationStore := &fakeInvitationStore{invitation: openInvitation(spaceID, token, 1)}
	memberStore := &fakeMemberStore{}
	svc := newTestInvitationService(invitationStore, memberStore, new(MockUserRepository), nil)

	userA := uuid.New()
	userB := uuid.New()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	members := make([]*domain.SpaceMember, 2)
	for i, userID := range []uuid.UUID{userA, userB} {
		wg.Add(1)
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			members[i], errs[i] = svc.Accept(ctx, userID, token)
		}(i, userID)
	}
	wg.Wait()

	succeeded := 0
	for i := range errs {
		if errs[i] == nil {
			succeeded++
			assert.NotNil(t, members[i])
		} else {
			assert.ErrorIs(t, errs[i], domain.ErrQuotaExhausted)
		}
	}
	assert.Equal(t, 1, succeeded)

	final, err := invitationStore.GetByToken(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, 1, final.UsedCount)
}
