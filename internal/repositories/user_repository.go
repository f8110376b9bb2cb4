package repositories

import (
	"context"

	"healthtracker/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create stores a new user. It returns an error wrapping ErrDuplicate when
	// the username or email is already taken.
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
