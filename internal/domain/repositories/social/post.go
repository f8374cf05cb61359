package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// PostRepository defines data access operations for posts
type PostRepository interface {
	Create(ctx context.Context, post *social.Post) error

	// GetByID returns domain.ErrNotFound if the post does not exist
	GetByID(ctx context.Context, id string) (*social.Post, error)

	// ListByBranch lists posts in a branch, newest first
	ListByBranch(ctx context.Context, branchID string) ([]social.Post, error)

	// ListIDsByBranches returns the ids of all posts in the given branches
	ListIDsByBranches(ctx context.Context, branchIDs []string) ([]string, error)

	// Update updates title, content and updated_at
	Update(ctx context.Context, post *social.Post) error

	// Delete removes the post; media cascade
	Delete(ctx context.Context, id string) error
}

// MediaRepository defines data access operations for post media
type MediaRepository interface {
	Create(ctx context.Context, media *social.PostMedia) error

	GetByID(ctx context.Context, id string) (*social.PostMedia, error)

	// ListByPost lists media of a post in insertion order
	ListByPost(ctx context.Context, postID string) ([]social.PostMedia, error)

	CountByPost(ctx context.Context, postID string) (int, error)

	Delete(ctx context.Context, id string) error
}
