package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/aldenhart/docspace/internal/security"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// redeemAttempts bounds retries of the atomic slot redemption on transient
// store errors
const redeemAttempts = 3

// InvitationService issues and redeems space invitations
type InvitationService struct {
	invitationRepo    domain.SpaceInvitationRepository
	memberRepo        domain.SpaceMemberRepository
	userRepo          domain.UserRepository
	spaceRepo         domain.SpaceRepository
	notificationRepo  domain.NotificationRepository
	resolver          *PermissionResolver
	defaultExpiryDays int
	defaultMaxUses    int
}

// NewInvitationService creates a new invitation service
func NewInvitationService(
	invitationRepo domain.SpaceInvitationRepository,
	memberRepo domain.SpaceMemberRepository,
	userRepo domain.UserRepository,
	spaceRepo domain.SpaceRepository,
	notificationRepo domain.NotificationRepository,
	resolver *PermissionResolver,
	defaultExpiryDays int,
	defaultMaxUses int,
) *InvitationService {
	return &InvitationService{
		invitationRepo:    invitationRepo,
		memberRepo:        memberRepo,
		userRepo:          userRepo,
		spaceRepo:         spaceRepo,
		notificationRepo:  notificationRepo,
		resolver:          resolver,
		defaultExpiryDays: defaultExpiryDays,
		defaultMaxUses:    defaultMaxUses,
	}
}

// Invite issues an invitation into a space. The actor needs members.invite.
// An invitation may be addressed to an email, to a known user, or left open.
// The raw token is returned once, in the issuance response.
func (s *InvitationService) Invite(ctx context.Context, actorID, spaceID uuid.UUID, req domain.InviteMemberRequest) (*domain.InvitationIssued, error) {
	if req.Email != nil && req.UserID != nil {
		return nil, fmt.Errorf("invitation may be addressed to an email or a user, not both: %w", domain.ErrValidation)
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, domain.ErrValidation)
	}

	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceSpace, spaceID, domain.PermMembersInvite) {
		return nil, fmt.Errorf("%s required to invite members: %w", domain.PermMembersInvite, domain.ErrForbidden)
	}

	if req.UserID != nil {
		existing, err := s.memberRepo.GetActive(ctx, spaceID, *req.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing membership: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("user %s already has a membership in space %s: %w", *req.UserID, spaceID, domain.ErrConflict)
		}
	}

	token, err := security.NewInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	expiryDays := s.defaultExpiryDays
	if req.ExpiresInDays != nil {
		expiryDays = *req.ExpiresInDays
	}
	maxUses := s.defaultMaxUses
	if req.MaxUses != nil {
		maxUses = *req.MaxUses
	}
	permissions := req.Permissions
	if len(permissions) == 0 {
		permissions = req.Role.DefaultPermissions()
	}

	now := time.Now()
	invitation := &domain.SpaceInvitation{
		ID:          uuid.New(),
		SpaceID:     spaceID,
		Email:       req.Email,
		UserID:      req.UserID,
		Token:       token,
		Role:        req.Role,
		Permissions: permissions,
		InvitedBy:   actorID,
		Message:     req.Message,
		MaxUses:     maxUses,
		UsedCount:   0,
		ExpiresAt:   now.AddDate(0, 0, expiryDays),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	if req.UserID != nil {
		s.notifyInvitee(ctx, invitation)
	}

	return &domain.InvitationIssued{
		SpaceInvitation: *invitation,
		Token:           token,
	}, nil
}

// ListInvitations returns a space's invitations without their tokens. The
// actor needs members.invite.
func (s *InvitationService) ListInvitations(ctx context.Context, actorID, spaceID uuid.UUID) ([]domain.SpaceInvitation, error) {
	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceSpace, spaceID, domain.PermMembersInvite) {
		return nil, fmt.Errorf("%s required to list invitations: %w", domain.PermMembersInvite, domain.ErrForbidden)
	}

	invitations, err := s.invitationRepo.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}

	return invitations, nil
}

// Accept redeems an invitation token for the calling user. Acceptance is
// idempotent for the (space, user) pair: an existing accepted membership is
// returned as-is and a pending one is transitioned without consuming a
// redemption slot. A fresh acceptance consumes exactly one slot even under
// concurrent redeemers.
func (s *InvitationService) Accept(ctx context.Context, userID uuid.UUID, token string) (*domain.SpaceMember, error) {
	now := time.Now()

	invitation, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if invitation == nil {
		return nil, fmt.Errorf("invitation: %w", domain.ErrNotFound)
	}

	if invitation.UserID != nil && *invitation.UserID != userID {
		return nil, fmt.Errorf("invitation is addressed to another user: %w", domain.ErrNotAddressed)
	}
	if invitation.Email != nil {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil || !strings.EqualFold(user.Email, *invitation.Email) {
			return nil, fmt.Errorf("invitation is addressed to another email: %w", domain.ErrNotAddressed)
		}
	}

	if invitation.Expired(now) {
		return nil, fmt.Errorf("invitation expired at %s: %w", invitation.ExpiresAt.Format(time.RFC3339), domain.ErrExpired)
	}

	existing, err := s.memberRepo.GetActive(ctx, invitation.SpaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}
	if existing != nil {
		if existing.Status == domain.MemberAccepted {
			return existing, nil
		}
		// Pending records hold a reserved seat, so accepting one does not
		// draw down the invitation quota
		if err := s.memberRepo.SetStatus(ctx, existing.ID, domain.MemberAccepted, &now); err != nil {
			return nil, fmt.Errorf("failed to accept pending membership: %w", err)
		}
		existing.Status = domain.MemberAccepted
		existing.AcceptedAt = &now
		existing.UpdatedAt = now
		return existing, nil
	}

	if invitation.Exhausted() {
		return nil, fmt.Errorf("invitation %s: %w", invitation.ID, domain.ErrQuotaExhausted)
	}

	redeemed, err := s.redeemSlot(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if !redeemed {
		// Lost the race on the last slot, or expired between the read above
		// and the conditional update
		latest, err := s.invitationRepo.GetByToken(ctx, token)
		if err == nil && latest != nil && latest.Expired(time.Now()) {
			return nil, fmt.Errorf("invitation expired at %s: %w", latest.ExpiresAt.Format(time.RFC3339), domain.ErrExpired)
		}
		return nil, fmt.Errorf("invitation %s: %w", invitation.ID, domain.ErrQuotaExhausted)
	}

	member := &domain.SpaceMember{
		ID:          uuid.New(),
		SpaceID:     invitation.SpaceID,
		UserID:      userID,
		Role:        invitation.Role,
		Permissions: invitation.Permissions,
		InvitedBy:   invitation.InvitedBy,
		InvitedAt:   invitation.CreatedAt,
		AcceptedAt:  &now,
		Status:      domain.MemberAccepted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// A concurrent acceptance materialized the membership first;
			// return it rather than failing the retry
			existing, getErr := s.memberRepo.GetActive(ctx, invitation.SpaceID, userID)
			if getErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	return member, nil
}

func (s *InvitationService) redeemSlot(ctx context.Context, token string, at time.Time) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < redeemAttempts; attempt++ {
		redeemed, err := s.invitationRepo.RedeemSlot(ctx, token, at)
		if err == nil {
			return redeemed, nil
		}
		lastErr = err
	}
	return false, fmt.Errorf("failed to redeem invitation slot after %d attempts: %v: %w", redeemAttempts, lastErr, domain.ErrConflict)
}

func (s *InvitationService) notifyInvitee(ctx context.Context, invitation *domain.SpaceInvitation) {
	spaceName := "a space"
	if space, err := s.spaceRepo.GetByID(ctx, invitation.SpaceID); err == nil && space != nil {
		spaceName = space.Name
	}
	inviterName := "Someone"
	if inviter, err := s.userRepo.GetByID(ctx, invitation.InvitedBy); err == nil && inviter != nil {
		if inviter.DisplayName != "" {
			inviterName = inviter.DisplayName
		} else {
			inviterName = inviter.Email
		}
	}

	content := fmt.Sprintf("%s invited you to join %s", inviterName, spaceName)
	if invitation.Message != nil && *invitation.Message != "" {
		content = fmt.Sprintf("%s: %s", content, *invitation.Message)
	}

	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    *invitation.UserID,
		Type:      domain.NotificationInvitation,
		Title:     "Space invitation",
		Content:   content,
		SpaceID:   &invitation.SpaceID,
		CreatedAt: time.Now(),
	}

	// Notification delivery is best effort and never fails the invitation
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Warn().Err(err).
			Stringer("invitation_id", invitation.ID).
			Stringer("user_id", *invitation.UserID).
			Msg("failed to create invitation notification")
	}
}
