package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GrantRepository handles explicit permission grant data access. Grants are
// append-only; expiry is a read-time filter, never a delete.
type GrantRepository struct {
	db *DB
}

// NewGrantRepository creates a new grant repository
func NewGrantRepository(db *DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// Create inserts a permission grant
func (r *GrantRepository) Create(ctx context.Context, grant *domain.PermissionGrant) error {
	query := `
		INSERT INTO permission_grants
			(id, resource_type, resource_id, user_id, role, permissions,
			 granted_by, granted_at, expires_at, is_inherited)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		grant.ID,
		grant.ResourceType,
		grant.ResourceID,
		grant.UserID,
		grant.Role,
		grant.Permissions,
		grant.GrantedBy,
		grant.GrantedAt,
		grant.ExpiresAt,
		grant.IsInherited,
	)
	if err != nil {
		return fmt.Errorf("failed to create grant: %w", err)
	}

	return nil
}

// ListForResource returns the unexpired grants on a resource targeting the
// user directly or the user's membership role. Expiry comparison is strict:
// a grant expiring exactly at the given instant is excluded.
func (r *GrantRepository) ListForResource(ctx context.Context, resourceType domain.ResourceType, resourceID, userID uuid.UUID, role *domain.Role, at time.Time) ([]domain.PermissionGrant, error) {
	query := `
		SELECT id, resource_type, resource_id, user_id, role, permissions,
		       granted_by, granted_at, expires_at, is_inherited
		FROM permission_grants
		WHERE resource_type = $1 AND resource_id = $2
		  AND (user_id = $3 OR ($4::text IS NOT NULL AND role = $4))
		  AND (expires_at IS NULL OR expires_at > $5)
	`

	rows, err := r.db.Pool.Query(ctx, query, resourceType, resourceID, userID, role, at)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

// ListByUser returns all unexpired grants targeting the user directly
func (r *GrantRepository) ListByUser(ctx context.Context, userID uuid.UUID, at time.Time) ([]domain.PermissionGrant, error) {
	query := `
		SELECT id, resource_type, resource_id, user_id, role, permissions,
		       granted_by, granted_at, expires_at, is_inherited
		FROM permission_grants
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > $2)
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	return scanGrants(rows)
}

func scanGrants(rows pgx.Rows) ([]domain.PermissionGrant, error) {
	var grants []domain.PermissionGrant
	for rows.Next() {
		var g domain.PermissionGrant
		if err := rows.Scan(
			&g.ID,
			&g.ResourceType,
			&g.ResourceID,
			&g.UserID,
			&g.Role,
			&g.Permissions,
			&g.GrantedBy,
			&g.GrantedAt,
			&g.ExpiresAt,
			&g.IsInherited,
		); err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, g)
	}

	return grants, rows.Err()
}
