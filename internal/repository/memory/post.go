package memory

import (
	"context"
	"fmt"
	"slices"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
)

// PostRepository implements socialRepo.PostRepository on the store
type PostRepository struct {
	store *Store
}

// NewPostRepository returns a PostRepository backed by store.
func NewPostRepository(store *Store) socialRepo.PostRepository {
	return &PostRepository{store: store}
}

// Create inserts a post under an existing branch.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	if _, ok := d.branches[post.BranchID]; !ok || !r.store.userExists(post.AuthorID) {
		return fmt.Errorf("post parent: %w", domain.ErrNotFound)
	}
	if post.ID == "" {
		post.ID = newID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.store.now()
	}
	d.posts[post.ID] = record[models.Post]{v: *post, seq: d.next()}
	return nil
}

// GetByID returns ErrNotFound for unknown ids.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	p := rec.v
	return &p, nil
}

// ListByBranch lists a branch's posts, newest first.
func (r *PostRepository) ListByBranch(ctx context.Context, branchID string) ([]models.Post, error) {
	defer r.store.lock(ctx)()

	return sorted(r.store.data.posts,
		func(p models.Post) bool { return p.BranchID == branchID },
		func(a, b models.Post) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	), nil
}

// ListIDsByBranches returns the ids of posts under any of branchIDs.
func (r *PostRepository) ListIDsByBranches(ctx context.Context, branchIDs []string) ([]string, error) {
	defer r.store.lock(ctx)()

	ids := []string{}
	for id, rec := range r.store.data.posts {
		if slices.Contains(branchIDs, rec.v.BranchID) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Update saves title and content changes.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	rec, ok := d.posts[post.ID]
	if !ok {
		return fmt.Errorf("post %s: %w", post.ID, domain.ErrNotFound)
	}
	rec.v.Title = post.Title
	rec.v.Content = post.Content
	rec.v.UpdatedAt = post.UpdatedAt
	d.posts[post.ID] = rec
	return nil
}

// Delete removes the post and its media.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	r.store.deletePost(id)
	return nil
}

// deletePost removes a post and its media. Must be called with the lock held.
func (s *Store) deletePost(id string) {
	delete(s.data.posts, id)
	for mediaID, rec := range s.data.media {
		if rec.v.PostID == id {
			delete(s.data.media, mediaID)
		}
	}
}

// MediaRepository implements socialRepo.MediaRepository on the store
type MediaRepository struct {
	store *Store
}

// NewMediaRepository returns a MediaRepository backed by store.
func NewMediaRepository(store *Store) socialRepo.MediaRepository {
	return &MediaRepository{store: store}
}

// Create attaches media to an existing post.
func (r *MediaRepository) Create(ctx context.Context, media *models.PostMedia) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	if _, ok := d.posts[media.PostID]; !ok {
		return fmt.Errorf("post %s: %w", media.PostID, domain.ErrNotFound)
	}
	if media.ID == "" {
		media.ID = newID()
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = r.store.now()
	}
	d.media[media.ID] = record[models.PostMedia]{v: *media, seq: d.next()}
	return nil
}

// GetByID returns ErrNotFound for unknown ids.
func (r *MediaRepository) GetByID(ctx context.Context, id string) (*models.PostMedia, error) {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.media[id]
	if !ok {
		return nil, fmt.Errorf("media %s: %w", id, domain.ErrNotFound)
	}
	m := rec.v
	return &m, nil
}

// ListByPost lists a post's media in insertion order.
func (r *MediaRepository) ListByPost(ctx context.Context, postID string) ([]models.PostMedia, error) {
	defer r.store.lock(ctx)()

	return sorted(r.store.data.media,
		func(m models.PostMedia) bool { return m.PostID == postID },
		nil,
	), nil
}

// CountByPost returns how many media items a post has.
func (r *MediaRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	defer r.store.lock(ctx)()

	n := 0
	for _, rec := range r.store.data.media {
		if rec.v.PostID == postID {
			n++
		}
	}
	return n, nil
}

// Delete removes one media item.
func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.media[id]; !ok {
		return fmt.Errorf("media %s: %w", id, domain.ErrNotFound)
	}
	delete(r.store.data.media, id)
	return nil
}
