package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	// Create inserts a user. ID is generated when empty.
	// Returns *domain.ConflictError if the email is taken.
	Create(ctx context.Context, user *social.User) error

	// GetByID returns domain.ErrNotFound if the user does not exist
	GetByID(ctx context.Context, id string) (*social.User, error)

	// GetByEmail looks a user up by (lower-cased) email
	GetByEmail(ctx context.Context, email string) (*social.User, error)

	// Update updates profile fields (name, image, email_verified)
	Update(ctx context.Context, user *social.User) error

	// FindMissing returns the subset of ids that do not reference existing users
	FindMissing(ctx context.Context, ids []string) ([]string, error)
}
