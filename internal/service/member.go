package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
)

// MemberService manages the membership lifecycle within a space
type MemberService struct {
	memberRepo domain.SpaceMemberRepository
	resolver   *PermissionResolver
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo domain.SpaceMemberRepository, resolver *PermissionResolver) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		resolver:   resolver,
	}
}

// ListMembers returns the non-removed members of a space. The actor needs
// docs.read on the space.
func (s *MemberService) ListMembers(ctx context.Context, actorID, spaceID uuid.UUID) ([]domain.SpaceMember, error) {
	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceSpace, spaceID, domain.PermDocsRead) {
		return nil, fmt.Errorf("%s required to list members: %w", domain.PermDocsRead, domain.ErrForbidden)
	}

	members, err := s.memberRepo.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return members, nil
}

// UpdateMember changes a member's role or permission overrides. The actor
// needs members.manage and may not assign a role ranked above their own.
func (s *MemberService) UpdateMember(ctx context.Context, actorID, spaceID, targetUserID uuid.UUID, req domain.UpdateMemberRequest) (*domain.SpaceMember, error) {
	if !s.resolver.HasPermission(ctx, actorID, domain.ResourceSpace, spaceID, domain.PermMembersManage) {
		return nil, fmt.Errorf("%s required to update members: %w", domain.PermMembersManage, domain.ErrForbidden)
	}

	target, err := s.memberRepo.GetActive(ctx, spaceID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("member %s in space %s: %w", targetUserID, spaceID, domain.ErrNotFound)
	}

	role := target.Role
	permissions := target.Permissions
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, fmt.Errorf("unknown role %q: %w", *req.Role, domain.ErrValidation)
		}
		actorRank := 0
		if actor, err := s.memberRepo.GetActive(ctx, spaceID, actorID); err != nil {
			return nil, fmt.Errorf("failed to get actor membership: %w", err)
		} else if actor != nil && actor.Active(time.Now()) {
			actorRank = actor.Role.CapabilityRank()
		}
		if req.Role.CapabilityRank() > actorRank {
			return nil, fmt.Errorf("cannot assign role %s above own capability: %w", *req.Role, domain.ErrForbidden)
		}
		role = *req.Role
		// A role change resets the overrides to the new role's defaults;
		// explicit permissions in the request apply on top
		permissions = role.DefaultPermissions()
	}
	if req.Permissions != nil {
		permissions = *req.Permissions
	}

	if err := s.memberRepo.UpdateRole(ctx, target.ID, role, permissions); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	target.Role = role
	target.Permissions = permissions
	target.UpdatedAt = time.Now()
	return target, nil
}

// RemoveMember transitions a member to removed. Members may always remove
// themselves; removing anyone else needs members.remove. Removing a pending
// member cancels the outstanding invite. The final owner of a space can never
// be removed.
func (s *MemberService) RemoveMember(ctx context.Context, actorID, spaceID, targetUserID uuid.UUID) error {
	if actorID != targetUserID {
		if !s.resolver.HasPermission(ctx, actorID, domain.ResourceSpace, spaceID, domain.PermMembersRemove) {
			return fmt.Errorf("%s required to remove members: %w", domain.PermMembersRemove, domain.ErrForbidden)
		}
	}

	target, err := s.memberRepo.GetActive(ctx, spaceID, targetUserID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}
	if target == nil {
		return fmt.Errorf("member %s in space %s: %w", targetUserID, spaceID, domain.ErrNotFound)
	}

	if target.Role == domain.RoleOwner {
		owners, err := s.memberRepo.CountActiveByRole(ctx, spaceID, domain.RoleOwner)
		if err != nil {
			return fmt.Errorf("failed to count owners: %w", err)
		}
		if owners <= 1 {
			return fmt.Errorf("space %s: %w", spaceID, domain.ErrLastOwner)
		}
	}

	if err := s.memberRepo.SetStatus(ctx, target.ID, domain.MemberRemoved, nil); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// DeclineInvitation transitions the caller's own pending membership to
// rejected
func (s *MemberService) DeclineInvitation(ctx context.Context, userID, spaceID uuid.UUID) error {
	member, err := s.memberRepo.GetActive(ctx, spaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to get membership: %w", err)
	}
	if member == nil {
		return fmt.Errorf("membership in space %s: %w", spaceID, domain.ErrNotFound)
	}
	if member.Status != domain.MemberPending {
		return fmt.Errorf("membership is %s, not pending: %w", member.Status, domain.ErrConflict)
	}

	if err := s.memberRepo.SetStatus(ctx, member.ID, domain.MemberRejected, nil); err != nil {
		return fmt.Errorf("failed to decline invitation: %w", err)
	}

	return nil
}
