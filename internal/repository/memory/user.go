package memory

import (
	"context"
	"fmt"
	"strings"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
)

// UserRepository implements socialRepo.UserRepository on the store
type UserRepository struct {
	store *Store
}

// NewUserRepository returns a UserRepository backed by store.
func NewUserRepository(store *Store) socialRepo.UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a user, rejecting a duplicate id or email.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	if user.ID == "" {
		user.ID = newID()
	}
	if _, exists := d.users[user.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("user %s already exists", user.ID),
			ResourceType: "user",
			ResourceID:   user.ID,
		}
	}
	for _, rec := range d.users {
		if rec.v.Email == user.Email {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("email '%s' is already registered", user.Email),
				ResourceType: "user",
				ResourceID:   rec.v.ID,
			}
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.store.now()
	}

	d.users[user.ID] = record[models.User]{v: *user, seq: d.next()}
	return nil
}

// GetByID returns ErrNotFound for unknown ids.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u := rec.v
	return &u, nil
}

// GetByEmail matches the email case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.store.lock(ctx)()

	email = strings.ToLower(email)
	for _, rec := range r.store.data.users {
		if rec.v.Email == email {
			u := rec.v
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
}

// Update saves name, image and email verification changes.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	rec, ok := d.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	rec.v.Name = user.Name
	rec.v.Image = user.Image
	rec.v.EmailVerified = user.EmailVerified
	d.users[user.ID] = rec
	return nil
}

// FindMissing returns the ids in ids that match no user.
func (r *UserRepository) FindMissing(ctx context.Context, ids []string) ([]string, error) {
	defer r.store.lock(ctx)()

	missing := []string{}
	for _, id := range ids {
		if _, ok := r.store.data.users[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// userExists must be called with the lock held
func (s *Store) userExists(id string) bool {
	_, ok := s.data.users[id]
	return ok
}
