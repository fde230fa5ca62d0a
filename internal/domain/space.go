package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Space is a tenant container for documents and comments
type Space struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SpaceCreate represents space creation data
type SpaceCreate struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// SpaceUpdate represents space update data
type SpaceUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// SpaceRepository defines the interface for space storage
type SpaceRepository interface {
	Create(ctx context.Context, space *Space) error
	GetByID(ctx context.Context, id uuid.UUID) (*Space, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Space, error)
	Update(ctx context.Context, id uuid.UUID, update *SpaceUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}
