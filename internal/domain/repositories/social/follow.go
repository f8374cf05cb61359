package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// FollowRepository defines data access operations for the follow graph
type FollowRepository interface {
	// Create inserts the edge if absent (atomic upsert) and loads the stored row into follow.
	// Returns true when a new row was written.
	Create(ctx context.Context, follow *social.Follow) (bool, error)

	// Delete removes the edge. Returns false if it did not exist.
	Delete(ctx context.Context, followerID, followedID string) (bool, error)

	// Get returns domain.ErrNotFound if the edge does not exist
	Get(ctx context.Context, followerID, followedID string) (*social.Follow, error)

	// ListFollowers lists edges pointing at userID, oldest first
	ListFollowers(ctx context.Context, userID string) ([]social.Follow, error)

	// ListFollowing lists edges starting at userID, oldest first
	ListFollowing(ctx context.Context, userID string) ([]social.Follow, error)

	// Counts returns follower/following totals
	Counts(ctx context.Context, userID string) (*social.FollowCounts, error)
}
