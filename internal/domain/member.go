package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MemberStatus is the lifecycle state of a space membership
type MemberStatus string

const (
	MemberPending  MemberStatus = "pending"
	MemberAccepted MemberStatus = "accepted"
	MemberRejected MemberStatus = "rejected"
	MemberRemoved  MemberStatus = "removed"
)

// SpaceMember is a membership record. At most one record per (space, user)
// pair may be pending or accepted at a time; rejected and removed are
// terminal.
type SpaceMember struct {
	ID      uuid.UUID `json:"id"`
	SpaceID uuid.UUID `json:"space_id"`
	UserID  uuid.UUID `json:"user_id"`
	Role    Role      `json:"role"`
	// Permissions are explicit overrides; empty means role defaults only
	Permissions []string     `json:"permissions"`
	InvitedBy   uuid.UUID    `json:"invited_by"`
	InvitedAt   time.Time    `json:"invited_at"`
	AcceptedAt  *time.Time   `json:"accepted_at,omitempty"`
	Status      MemberStatus `json:"status"`
	ExpiresAt   *time.Time   `json:"expires_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Active reports whether the membership counts for permission checks at the
// given instant: accepted and not expired. An expired membership is inert but
// its stored status is untouched.
func (m *SpaceMember) Active(at time.Time) bool {
	if m.Status != MemberAccepted {
		return false
	}
	return m.ExpiresAt == nil || m.ExpiresAt.After(at)
}

// EffectivePermissions is the union of the role defaults and the explicit
// overrides
func (m *SpaceMember) EffectivePermissions() []string {
	perms := m.Role.DefaultPermissions()
	seen := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		seen[p] = struct{}{}
	}
	for _, p := range m.Permissions {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			perms = append(perms, p)
		}
	}
	return perms
}

// SpaceInvitation is a redeemable invitation token. Invitations are never
// deleted; expiry and quota exhaustion are read/write-time checks.
type SpaceInvitation struct {
	ID      uuid.UUID  `json:"id"`
	SpaceID uuid.UUID  `json:"space_id"`
	Email   *string    `json:"email,omitempty"`
	UserID  *uuid.UUID `json:"user_id,omitempty"`

	// Token is omitted from serialized listings; only the creation response
	// carries it, via InvitationIssued.
	Token       string     `json:"-"`
	Role        Role       `json:"role"`
	Permissions []string   `json:"permissions"`
	InvitedBy   uuid.UUID  `json:"invited_by"`
	Message     *string    `json:"message,omitempty"`
	MaxUses     int        `json:"max_uses"`
	UsedCount   int        `json:"used_count"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Exhausted reports whether every redemption slot has been used
func (i *SpaceInvitation) Exhausted() bool {
	return i.UsedCount >= i.MaxUses
}

// Expired reports whether the invitation is past its expiry at the given
// instant; expiring exactly at that instant counts as expired
func (i *SpaceInvitation) Expired(at time.Time) bool {
	return !i.ExpiresAt.After(at)
}

// InvitationIssued is the creation response, the single place the raw token
// is exposed
type InvitationIssued struct {
	SpaceInvitation
	Token string `json:"token"`
}

// InviteMemberRequest is the payload for issuing an invitation
type InviteMemberRequest struct {
	Email       *string    `json:"email,omitempty" validate:"omitempty,email"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Role        Role       `json:"role" validate:"required,oneof=owner admin editor viewer member"`
	Permissions []string   `json:"permissions,omitempty"`
	Message     *string    `json:"message,omitempty" validate:"omitempty,max=1000"`
	// ExpiresInDays defaults to 7 when absent
	ExpiresInDays *int `json:"expires_in_days,omitempty" validate:"omitempty,min=1,max=365"`
	MaxUses       *int `json:"max_uses,omitempty" validate:"omitempty,min=1"`
}

// AcceptInvitationRequest carries the redemption token
type AcceptInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}

// UpdateMemberRequest is the payload for changing a member's role or
// permission overrides
type UpdateMemberRequest struct {
	Role        *Role     `json:"role,omitempty" validate:"omitempty,oneof=owner admin editor viewer member"`
	Permissions *[]string `json:"permissions,omitempty"`
}

// SpaceMemberRepository defines the interface for membership storage
type SpaceMemberRepository interface {
	// Create inserts a membership record. It returns ErrConflict when a
	// pending or accepted record already exists for the (space, user) pair.
	Create(ctx context.Context, member *SpaceMember) error
	// GetActive returns the single pending or accepted record for the pair,
	// or nil when none exists
	GetActive(ctx context.Context, spaceID, userID uuid.UUID) (*SpaceMember, error)
	// ListBySpace returns all non-removed members of a space
	ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]SpaceMember, error)
	ListSpaceIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountActiveByRole(ctx context.Context, spaceID uuid.UUID, role Role) (int, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role Role, permissions []string) error
	SetStatus(ctx context.Context, id uuid.UUID, status MemberStatus, acceptedAt *time.Time) error
}

// SpaceInvitationRepository defines the interface for invitation storage.
// RedeemSlot is the one linearizable primitive the core depends on.
type SpaceInvitationRepository interface {
	Create(ctx context.Context, invitation *SpaceInvitation) error
	GetByToken(ctx context.Context, token string) (*SpaceInvitation, error)
	ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]SpaceInvitation, error)
	// RedeemSlot atomically increments used_count by one iff a slot remains
	// and the invitation is not expired at the given instant. It reports
	// whether the increment happened. Concurrent redeemers racing on the last
	// slot see exactly one true.
	RedeemSlot(ctx context.Context, token string, at time.Time) (bool, error)
}
