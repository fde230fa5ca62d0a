package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SpaceInvitationRepository handles invitation data access. Invitations are
// never deleted; expiry and quota exhaustion are enforced by RedeemSlot's
// conditional update.
type SpaceInvitationRepository struct {
	db *DB
}

// NewSpaceInvitationRepository creates a new invitation repository
func NewSpaceInvitationRepository(db *DB) *SpaceInvitationRepository {
	return &SpaceInvitationRepository{db: db}
}

// Create inserts an invitation
func (r *SpaceInvitationRepository) Create(ctx context.Context, invitation *domain.SpaceInvitation) error {
	query := `
		INSERT INTO space_invitations
			(id, space_id, email, user_id, token, role, permissions, invited_by,
			 message, max_uses, used_count, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		invitation.ID,
		invitation.SpaceID,
		invitation.Email,
		invitation.UserID,
		invitation.Token,
		invitation.Role,
		invitation.Permissions,
		invitation.InvitedBy,
		invitation.Message,
		invitation.MaxUses,
		invitation.UsedCount,
		invitation.ExpiresAt,
		invitation.CreatedAt,
		invitation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

// GetByToken retrieves an invitation by its token, or nil when absent
func (r *SpaceInvitationRepository) GetByToken(ctx context.Context, token string) (*domain.SpaceInvitation, error) {
	query := `
		SELECT id, space_id, email, user_id, token, role, permissions, invited_by,
		       message, max_uses, used_count, expires_at, created_at, updated_at
		FROM space_invitations
		WHERE token = $1
	`

	inv, err := scanInvitation(r.db.Pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// ListBySpace retrieves all invitations issued for a space
func (r *SpaceInvitationRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.SpaceInvitation, error) {
	query := `
		SELECT id, space_id, email, user_id, token, role, permissions, invited_by,
		       message, max_uses, used_count, expires_at, created_at, updated_at
		FROM space_invitations
		WHERE space_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []domain.SpaceInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, *inv)
	}

	return invitations, rows.Err()
}

// RedeemSlot consumes one redemption slot with a single conditional update.
// The WHERE clause carries both the quota and the expiry check, so concurrent
// acceptors racing on the last slot get exactly one affected row between them.
func (r *SpaceInvitationRepository) RedeemSlot(ctx context.Context, token string, at time.Time) (bool, error) {
	query := `
		UPDATE space_invitations
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE token = $1 AND used_count < max_uses AND expires_at > $2
	`

	tag, err := r.db.Pool.Exec(ctx, query, token, at)
	if err != nil {
		return false, fmt.Errorf("failed to redeem invitation slot: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func scanInvitation(row pgx.Row) (*domain.SpaceInvitation, error) {
	var inv domain.SpaceInvitation
	err := row.Scan(
		&inv.ID,
		&inv.SpaceID,
		&inv.Email,
		&inv.UserID,
		&inv.Token,
		&inv.Role,
		&inv.Permissions,
		&inv.InvitedBy,
		&inv.Message,
		&inv.MaxUses,
		&inv.UsedCount,
		&inv.ExpiresAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
