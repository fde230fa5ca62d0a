package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aldenhart/docspace/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SpaceRepository handles space data access
type SpaceRepository struct {
	db *DB
}

// NewSpaceRepository creates a new space repository
func NewSpaceRepository(db *DB) *SpaceRepository {
	return &SpaceRepository{db: db}
}

// Create creates a new space
func (r *SpaceRepository) Create(ctx context.Context, space *domain.Space) error {
	query := `
		INSERT INTO spaces (id, name, description, color, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		space.ID,
		space.Name,
		space.Description,
		space.Color,
		space.OwnerID,
		space.CreatedAt,
		space.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}

	return nil
}

// GetByID retrieves a space by ID
func (r *SpaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Space, error) {
	query := `
		SELECT id, name, description, color, owner_id, created_at, updated_at
		FROM spaces
		WHERE id = $1
	`

	var space domain.Space
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&space.ID,
		&space.Name,
		&space.Description,
		&space.Color,
		&space.OwnerID,
		&space.CreatedAt,
		&space.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get space: %w", err)
	}

	return &space, nil
}

// ListByUserID retrieves all spaces where the user is an accepted member
func (r *SpaceRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Space, error) {
	query := `
		SELECT s.id, s.name, s.description, s.color, s.owner_id, s.created_at, s.updated_at
		FROM spaces s
		INNER JOIN space_members sm ON s.id = sm.space_id
		WHERE sm.user_id = $1 AND sm.status = 'accepted'
		ORDER BY s.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	defer rows.Close()

	var spaces []domain.Space
	for rows.Next() {
		var space domain.Space
		if err := rows.Scan(
			&space.ID,
			&space.Name,
			&space.Description,
			&space.Color,
			&space.OwnerID,
			&space.CreatedAt,
			&space.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan space: %w", err)
		}
		spaces = append(spaces, space)
	}

	return spaces, rows.Err()
}

// Update updates a space
func (r *SpaceRepository) Update(ctx context.Context, id uuid.UUID, update *domain.SpaceUpdate) error {
	query := `
		UPDATE spaces
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    color = COALESCE($4, color),
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, update.Name, update.Description, update.Color)
	if err != nil {
		return fmt.Errorf("failed to update space: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("space %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a space
func (r *SpaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM spaces WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete space: %w", err)
	}

	return nil
}
