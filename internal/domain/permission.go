package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResourceType identifies what a permission grant or check is scoped to
type ResourceType string

const (
	ResourceSpace    ResourceType = "space"
	ResourceDocument ResourceType = "document"
	ResourceComment  ResourceType = "comment"
)

// Valid reports whether t is a known resource type
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceSpace, ResourceDocument, ResourceComment:
		return true
	}
	return false
}

// Parent returns the resource type one hop up the ownership chain
// (Comment -> Document -> Space). Space has no parent.
func (t ResourceType) Parent() (ResourceType, bool) {
	switch t {
	case ResourceComment:
		return ResourceDocument, true
	case ResourceDocument:
		return ResourceSpace, true
	}
	return "", false
}

// PermissionGrant is an explicit authorization record binding a permission set
// to a user or a role on a specific resource. Exactly one of UserID and Role
// is set. Grants are never mutated after creation; expiry is evaluated at
// read time.
type PermissionGrant struct {
	ID           uuid.UUID    `json:"id"`
	ResourceType ResourceType `json:"resource_type"`
	ResourceID   uuid.UUID    `json:"resource_id"`
	UserID       *uuid.UUID   `json:"user_id,omitempty"`
	Role         *Role        `json:"role,omitempty"`
	Permissions  []string     `json:"permissions"`
	GrantedBy    uuid.UUID    `json:"granted_by"`
	GrantedAt    time.Time    `json:"granted_at"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty"`
	// IsInherited marks grants synthesized by walking up from a child
	// resource. Inherited grants are never the source of further inheritance.
	IsInherited bool `json:"is_inherited"`
}

// Expired reports whether the grant is expired at the given instant.
// A grant expiring exactly at that instant is already expired.
func (g *PermissionGrant) Expired(at time.Time) bool {
	return g.ExpiresAt != nil && !g.ExpiresAt.After(at)
}

// HasPermission reports whether the grant carries perm and is live at the
// given instant
func (g *PermissionGrant) HasPermission(perm string, at time.Time) bool {
	if g.Expired(at) {
		return false
	}
	for _, p := range g.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// GrantPermissionRequest is the payload for creating an explicit grant
type GrantPermissionRequest struct {
	ResourceType ResourceType `json:"resource_type" validate:"required,oneof=space document comment"`
	ResourceID   uuid.UUID    `json:"resource_id" validate:"required"`
	UserID       *uuid.UUID   `json:"user_id,omitempty"`
	Role         *Role        `json:"role,omitempty" validate:"omitempty,oneof=owner admin editor viewer member"`
	Permissions  []string     `json:"permissions" validate:"required,min=1,dive,required"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty"`
}

// UserPermissions is the resolved per-user aggregate view. It is built fresh
// on each resolution request and never cached; individual authorization
// decisions must go through HasPermission instead.
type UserPermissions struct {
	UserID               uuid.UUID           `json:"user_id"`
	SpacePermissions     map[string][]string `json:"space_permissions"`
	DocumentPermissions  map[string][]string `json:"document_permissions"`
	InheritedPermissions []string            `json:"inherited_permissions"`
}

// NewUserPermissions creates an empty aggregate for a user
func NewUserPermissions(userID uuid.UUID) *UserPermissions {
	return &UserPermissions{
		UserID:              userID,
		SpacePermissions:    make(map[string][]string),
		DocumentPermissions: make(map[string][]string),
	}
}

// GrantRepository defines the interface for explicit grant storage
type GrantRepository interface {
	Create(ctx context.Context, grant *PermissionGrant) error
	// ListForResource returns the unexpired grants on a resource whose
	// subject is the given user or the given role. Role may be nil when the
	// caller has no membership on the owning space.
	ListForResource(ctx context.Context, resourceType ResourceType, resourceID, userID uuid.UUID, role *Role, at time.Time) ([]PermissionGrant, error)
	ListByUser(ctx context.Context, userID uuid.UUID, at time.Time) ([]PermissionGrant, error)
}
