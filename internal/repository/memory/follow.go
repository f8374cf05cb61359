package memory

import (
	"context"
	"fmt"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
)

// FollowRepository implements socialRepo.FollowRepository on the store
type FollowRepository struct {
	store *Store
}

// NewFollowRepository returns a FollowRepository backed by store.
func NewFollowRepository(store *Store) socialRepo.FollowRepository {
	return &FollowRepository{store: store}
}

func (r *FollowRepository) find(followerID, followedID string) (models.Follow, bool) {
	for _, rec := range r.store.data.follows {
		if rec.v.FollowerID == followerID && rec.v.FollowedID == followedID {
			return rec.v, true
		}
	}
	return models.Follow{}, false
}

// Create records the edge, or fills follow with the existing one and reports false.
func (r *FollowRepository) Create(ctx context.Context, follow *models.Follow) (bool, error) {
	defer r.store.lock(ctx)()
	d := r.store.data

	if follow.FollowerID == follow.FollowedID {
		return false, fmt.Errorf("%w: a user cannot follow themselves", domain.ErrValidation)
	}
	if !r.store.userExists(follow.FollowerID) {
		return false, fmt.Errorf("user %s: %w", follow.FollowerID, domain.ErrNotFound)
	}
	if !r.store.userExists(follow.FollowedID) {
		return false, fmt.Errorf("user %s: %w", follow.FollowedID, domain.ErrNotFound)
	}

	if existing, ok := r.find(follow.FollowerID, follow.FollowedID); ok {
		*follow = existing
		return false, nil
	}

	follow.ID = newID()
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = r.store.now()
	}
	d.follows[follow.ID] = record[models.Follow]{v: *follow, seq: d.next()}
	return true, nil
}

// Delete reports whether an edge was removed.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followedID string) (bool, error) {
	defer r.store.lock(ctx)()

	existing, ok := r.find(followerID, followedID)
	if !ok {
		return false, nil
	}
	delete(r.store.data.follows, existing.ID)
	return true, nil
}

// Get returns ErrNotFound when followerID does not follow followedID.
func (r *FollowRepository) Get(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	defer r.store.lock(ctx)()

	existing, ok := r.find(followerID, followedID)
	if !ok {
		return nil, fmt.Errorf("follow %s -> %s: %w", followerID, followedID, domain.ErrNotFound)
	}
	return &existing, nil
}

// ListFollowers lists edges pointing at userID, oldest first.
func (r *FollowRepository) ListFollowers(ctx context.Context, userID string) ([]models.Follow, error) {
	defer r.store.lock(ctx)()

	return sorted(r.store.data.follows,
		func(f models.Follow) bool { return f.FollowedID == userID },
		func(a, b models.Follow) int { return oldestFirst(a.CreatedAt, b.CreatedAt) },
	), nil
}

// ListFollowing lists edges starting at userID, oldest first.
func (r *FollowRepository) ListFollowing(ctx context.Context, userID string) ([]models.Follow, error) {
	defer r.store.lock(ctx)()

	return sorted(r.store.data.follows,
		func(f models.Follow) bool { return f.FollowerID == userID },
		func(a, b models.Follow) int { return oldestFirst(a.CreatedAt, b.CreatedAt) },
	), nil
}

// Counts returns follower and following totals for userID.
func (r *FollowRepository) Counts(ctx context.Context, userID string) (*models.FollowCounts, error) {
	defer r.store.lock(ctx)()

	counts := &models.FollowCounts{UserID: userID}
	for _, rec := range r.store.data.follows {
		if rec.v.FollowedID == userID {
			counts.Followers++
		}
		if rec.v.FollowerID == userID {
			counts.Following++
		}
	}
	return counts, nil
}
