package social

import (
	"context"
	"time"

	"arbor/internal/domain/models/social"
)

// RegisterUserRequest represents a request to create the local user record.
// ID comes from the identity provider; it is generated when empty.
type RegisterUserRequest struct {
	ID            string     `json:"-"`
	Email         string     `json:"email"`
	Name          *string    `json:"name"`
	Image         *string    `json:"image"`
	EmailVerified *time.Time `json:"email_verified"`
}

// UpdateUserRequest updates profile fields; nil pointers leave the field unchanged
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// UserService defines business logic operations for users
type UserService interface {
	// RegisterUser creates a user; duplicate email is a conflict
	RegisterUser(ctx context.Context, req *RegisterUserRequest) (*social.User, error)

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id string) (*social.User, error)

	GetUserByEmail(ctx context.Context, email string) (*social.User, error)

	// UpdateUser updates the caller's profile
	UpdateUser(ctx context.Context, id string, req *UpdateUserRequest) (*social.User, error)
}

// FollowService maintains the directed follow graph.
// Follow is idempotent: repeating it returns the existing edge.
type FollowService interface {
	Follow(ctx context.Context, followerID, followedID string) (*social.Follow, error)

	// Unfollow is a no-op when the edge does not exist
	Unfollow(ctx context.Context, followerID, followedID string) error

	ListFollowers(ctx context.Context, userID string) ([]social.Follow, error)

	ListFollowing(ctx context.Context, userID string) ([]social.Follow, error)

	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)

	Counts(ctx context.Context, userID string) (*social.FollowCounts, error)
}
