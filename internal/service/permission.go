package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PermissionResolver answers authorization questions by composing space
// membership, explicit grants, and one-hop inheritance for comments.
// Resolution is always computed fresh from storage; results are never cached.
type PermissionResolver struct {
	memberRepo   domain.SpaceMemberRepository
	grantRepo    domain.GrantRepository
	documentRepo domain.DocumentRepository
	commentRepo  domain.CommentRepository
}

// NewPermissionResolver creates a new permission resolver
func NewPermissionResolver(
	memberRepo domain.SpaceMemberRepository,
	grantRepo domain.GrantRepository,
	documentRepo domain.DocumentRepository,
	commentRepo domain.CommentRepository,
) *PermissionResolver {
	return &PermissionResolver{
		memberRepo:   memberRepo,
		grantRepo:    grantRepo,
		documentRepo: documentRepo,
		commentRepo:  commentRepo,
	}
}

// resourceScope locates a resource within its ownership chain. DocumentID is
// set only for comments.
type resourceScope struct {
	SpaceID    uuid.UUID
	DocumentID uuid.UUID
}

func (r *PermissionResolver) resolveScope(ctx context.Context, resourceType domain.ResourceType, resourceID uuid.UUID) (*resourceScope, error) {
	switch resourceType {
	case domain.ResourceSpace:
		return &resourceScope{SpaceID: resourceID}, nil
	case domain.ResourceDocument:
		doc, err := r.documentRepo.GetByID(ctx, resourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve document scope: %w", err)
		}
		if doc == nil {
			return nil, nil
		}
		return &resourceScope{SpaceID: doc.SpaceID}, nil
	case domain.ResourceComment:
		comment, err := r.commentRepo.GetByID(ctx, resourceID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve comment scope: %w", err)
		}
		if comment == nil {
			return nil, nil
		}
		return &resourceScope{SpaceID: comment.SpaceID, DocumentID: comment.DocumentID}, nil
	}
	return nil, nil
}

// HasPermission reports whether the user holds perm on the resource right now.
// The decision is fail-closed: unknown resources, missing memberships, and
// storage errors all deny. Storage errors are logged, never surfaced.
func (r *PermissionResolver) HasPermission(ctx context.Context, userID uuid.UUID, resourceType domain.ResourceType, resourceID uuid.UUID, perm string) bool {
	now := time.Now()

	scope, err := r.resolveScope(ctx, resourceType, resourceID)
	if err != nil {
		log.Error().Err(err).
			Str("resource_type", string(resourceType)).
			Stringer("resource_id", resourceID).
			Msg("permission check failed resolving scope")
		return false
	}
	if scope == nil {
		return false
	}

	// Membership carries the role's implicit permissions plus overrides
	var role *domain.Role
	member, err := r.memberRepo.GetActive(ctx, scope.SpaceID, userID)
	if err != nil {
		log.Error().Err(err).
			Stringer("space_id", scope.SpaceID).
			Stringer("user_id", userID).
			Msg("permission check failed loading membership")
		return false
	}
	if member != nil && member.Active(now) {
		for _, p := range member.EffectivePermissions() {
			if p == perm {
				return true
			}
		}
		role = &member.Role
	}

	// Explicit grants on the resource itself
	grants, err := r.grantRepo.ListForResource(ctx, resourceType, resourceID, userID, role, now)
	if err != nil {
		log.Error().Err(err).
			Str("resource_type", string(resourceType)).
			Stringer("resource_id", resourceID).
			Msg("permission check failed loading grants")
		return false
	}
	for i := range grants {
		if grants[i].HasPermission(perm, now) {
			return true
		}
	}

	// Comments additionally inherit grants from the parent document and the
	// owning space. Grants that are themselves inherited do not cascade, and
	// docs.comment.manage on a parent acts as a blanket comment permission.
	if resourceType == domain.ResourceComment {
		parents := []struct {
			resourceType domain.ResourceType
			resourceID   uuid.UUID
		}{
			{domain.ResourceDocument, scope.DocumentID},
			{domain.ResourceSpace, scope.SpaceID},
		}
		for _, parent := range parents {
			parentGrants, err := r.grantRepo.ListForResource(ctx, parent.resourceType, parent.resourceID, userID, role, now)
			if err != nil {
				log.Error().Err(err).
					Str("resource_type", string(parent.resourceType)).
					Stringer("resource_id", parent.resourceID).
					Msg("permission check failed loading parent grants")
				return false
			}
			for i := range parentGrants {
				if parentGrants[i].IsInherited {
					continue
				}
				if parentGrants[i].HasPermission(perm, now) || parentGrants[i].HasPermission(domain.PermCommentManage, now) {
					return true
				}
			}
		}
	}

	return false
}

// ResolveAll builds the full permission aggregate for a user across every
// space and document they can reach. Role-scoped grants apply through each
// membership role, the same composition HasPermission uses.
func (r *PermissionResolver) ResolveAll(ctx context.Context, userID uuid.UUID) (*domain.UserPermissions, error) {
	now := time.Now()
	resolved := domain.NewUserPermissions(userID)

	spaceIDs, err := r.memberRepo.ListSpaceIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user spaces: %w", err)
	}
	for _, spaceID := range spaceIDs {
		member, err := r.memberRepo.GetActive(ctx, spaceID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load membership: %w", err)
		}
		if member == nil || !member.Active(now) {
			continue
		}
		perms := member.EffectivePermissions()
		spaceGrants, err := r.grantRepo.ListForResource(ctx, domain.ResourceSpace, spaceID, userID, &member.Role, now)
		if err != nil {
			return nil, fmt.Errorf("failed to load space grants: %w", err)
		}
		for i := range spaceGrants {
			if spaceGrants[i].Role != nil && !spaceGrants[i].Expired(now) {
				perms = mergePerms(perms, spaceGrants[i].Permissions)
			}
		}
		resolved.SpacePermissions[spaceID.String()] = mergePerms(resolved.SpacePermissions[spaceID.String()], perms)
		for _, p := range perms {
			if p == domain.PermCommentManage {
				resolved.InheritedPermissions = mergePerms(resolved.InheritedPermissions, []string{p})
			}
		}
	}

	grants, err := r.grantRepo.ListByUser(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list user grants: %w", err)
	}
	for i := range grants {
		g := &grants[i]
		if g.Expired(now) {
			continue
		}
		switch g.ResourceType {
		case domain.ResourceSpace:
			key := g.ResourceID.String()
			resolved.SpacePermissions[key] = mergePerms(resolved.SpacePermissions[key], g.Permissions)
		case domain.ResourceDocument:
			key := g.ResourceID.String()
			resolved.DocumentPermissions[key] = mergePerms(resolved.DocumentPermissions[key], g.Permissions)
		}
		if g.IsInherited {
			resolved.InheritedPermissions = mergePerms(resolved.InheritedPermissions, g.Permissions)
		}
	}

	return resolved, nil
}

// Grant creates an explicit permission grant. The actor must hold space.admin
// on a space target or docs.admin on a document or comment target.
func (r *PermissionResolver) Grant(ctx context.Context, actorID uuid.UUID, req domain.GrantPermissionRequest) (*domain.PermissionGrant, error) {
	if (req.UserID == nil) == (req.Role == nil) {
		return nil, fmt.Errorf("grant requires exactly one of user_id and role: %w", domain.ErrValidation)
	}
	if !req.ResourceType.Valid() {
		return nil, fmt.Errorf("unknown resource type %q: %w", req.ResourceType, domain.ErrValidation)
	}

	required := domain.PermDocsAdmin
	if req.ResourceType == domain.ResourceSpace {
		required = domain.PermSpaceAdmin
	}
	if !r.HasPermission(ctx, actorID, req.ResourceType, req.ResourceID, required) {
		return nil, fmt.Errorf("%s required to grant on %s: %w", required, req.ResourceType, domain.ErrForbidden)
	}

	grant := &domain.PermissionGrant{
		ID:           uuid.New(),
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		UserID:       req.UserID,
		Role:         req.Role,
		Permissions:  req.Permissions,
		GrantedBy:    actorID,
		GrantedAt:    time.Now(),
		ExpiresAt:    req.ExpiresAt,
	}

	if err := r.grantRepo.Create(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to create grant: %w", err)
	}

	return grant, nil
}

func mergePerms(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		seen[p] = struct{}{}
	}
	for _, p := range extra {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			existing = append(existing, p)
		}
	}
	return existing
}
