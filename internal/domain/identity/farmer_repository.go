package identity

import (
	"context"

	"github.com/google/uuid"
)

// FarmerRepository defines the interface for farmer persistence
type FarmerRepository interface {
	// Create persists a newly registered farmer
	Create(ctx context.Context, farmer *Farmer) error

	// Update saves login bookkeeping with an optimistic version check
	Update(ctx context.Context, farmer *Farmer) error

	// FindByID finds a farmer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Farmer, error)

	// FindByUsername finds a farmer by lower-cased username
	FindByUsername(ctx context.Context, username string) (*Farmer, error)

	// ExistsByUsername checks if a username is already taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
