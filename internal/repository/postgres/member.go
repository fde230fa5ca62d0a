package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the postgres error code raised by the partial unique
// index guarding the one-active-membership-per-pair invariant
const uniqueViolation = "23505"

// SpaceMemberRepository handles membership data access
type SpaceMemberRepository struct {
	db *DB
}

// NewSpaceMemberRepository creates a new space member repository
func NewSpaceMemberRepository(db *DB) *SpaceMemberRepository {
	return &SpaceMemberRepository{db: db}
}

// Create inserts a membership record. The partial unique index on
// (space_id, user_id) WHERE status IN ('pending','accepted') turns a
// concurrent duplicate into domain.ErrConflict instead of a second row.
func (r *SpaceMemberRepository) Create(ctx context.Context, member *domain.SpaceMember) error {
	query := `
		INSERT INTO space_members
			(id, space_id, user_id, role, permissions, invited_by, invited_at,
			 accepted_at, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		member.ID,
		member.SpaceID,
		member.UserID,
		member.Role,
		member.Permissions,
		member.InvitedBy,
		member.InvitedAt,
		member.AcceptedAt,
		member.Status,
		member.ExpiresAt,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("membership already active for pair: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetActive retrieves the single pending or accepted record for a
// (space, user) pair, or nil when none exists
func (r *SpaceMemberRepository) GetActive(ctx context.Context, spaceID, userID uuid.UUID) (*domain.SpaceMember, error) {
	query := `
		SELECT id, space_id, user_id, role, permissions, invited_by, invited_at,
		       accepted_at, status, expires_at, created_at, updated_at
		FROM space_members
		WHERE space_id = $1 AND user_id = $2 AND status IN ('pending', 'accepted')
	`

	member, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, spaceID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// ListBySpace retrieves all non-removed members of a space
func (r *SpaceMemberRepository) ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.SpaceMember, error) {
	query := `
		SELECT id, space_id, user_id, role, permissions, invited_by, invited_at,
		       accepted_at, status, expires_at, created_at, updated_at
		FROM space_members
		WHERE space_id = $1 AND status != 'removed'
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []domain.SpaceMember
	for rows.Next() {
		member, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *member)
	}

	return members, rows.Err()
}

// ListSpaceIDsByUser retrieves the spaces where the user is an accepted member
func (r *SpaceMemberRepository) ListSpaceIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT space_id FROM space_members
		WHERE user_id = $1 AND status = 'accepted'
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	defer rows.Close()

	var spaceIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan space id: %w", err)
		}
		spaceIDs = append(spaceIDs, id)
	}

	return spaceIDs, rows.Err()
}

// CountActiveByRole counts accepted members holding a role in a space
func (r *SpaceMemberRepository) CountActiveByRole(ctx context.Context, spaceID uuid.UUID, role domain.Role) (int, error) {
	query := `
		SELECT COUNT(*) FROM space_members
		WHERE space_id = $1 AND role = $2 AND status = 'accepted'
	`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, spaceID, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}

// UpdateRole changes a member's role and permission overrides
func (r *SpaceMemberRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role, permissions []string) error {
	query := `
		UPDATE space_members
		SET role = $2, permissions = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, role, permissions)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetStatus transitions a member to a new lifecycle status
func (r *SpaceMemberRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.MemberStatus, acceptedAt *time.Time) error {
	query := `
		UPDATE space_members
		SET status = $2, accepted_at = COALESCE($3, accepted_at), updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, status, acceptedAt)
	if err != nil {
		return fmt.Errorf("failed to set member status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *SpaceMemberRepository) scanOne(row pgx.Row) (*domain.SpaceMember, error) {
	var member domain.SpaceMember
	err := row.Scan(
		&member.ID,
		&member.SpaceID,
		&member.UserID,
		&member.Role,
		&member.Permissions,
		&member.InvitedBy,
		&member.InvitedAt,
		&member.AcceptedAt,
		&member.Status,
		&member.ExpiresAt,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}
