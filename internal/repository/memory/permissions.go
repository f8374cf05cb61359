package memory

import (
	"context"
	"fmt"
	"slices"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
)

// PermissionsRepository implements socialRepo.PermissionsRepository on the store
type PermissionsRepository struct {
	store *Store
}

// NewPermissionsRepository returns a PermissionsRepository backed by store.
func NewPermissionsRepository(store *Store) socialRepo.PermissionsRepository {
	return &PermissionsRepository{store: store}
}

func (r *PermissionsRepository) find(target models.Target) (record[models.Permissions], bool) {
	for _, rec := range r.store.data.permissions {
		if rec.v.TargetKind == target.Kind && rec.v.TargetID == target.ID {
			return rec, true
		}
	}
	return record[models.Permissions]{}, false
}

// Get returns ErrNotFound when the target has no explicit permissions.
func (r *PermissionsRepository) Get(ctx context.Context, target models.Target) (*models.Permissions, error) {
	defer r.store.lock(ctx)()

	rec, ok := r.find(target)
	if !ok {
		return nil, nil
	}
	perms := rec.v
	perms.AllowedUsers = slices.Clone(rec.v.AllowedUsers)
	return &perms, nil
}

// Upsert creates or replaces the permissions row for the target.
func (r *PermissionsRepository) Upsert(ctx context.Context, perms *models.Permissions) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	if !perms.TargetKind.SupportsPermissions() {
		return fmt.Errorf("%w: permissions cannot be attached to a %s", domain.ErrValidation, perms.TargetKind)
	}

	allowed := make([]string, 0, len(perms.AllowedUsers))
	for _, id := range perms.AllowedUsers {
		if !r.store.userExists(id) {
			return fmt.Errorf("%w: allowed_users references an unknown user", domain.ErrValidation)
		}
		if !slices.Contains(allowed, id) {
			allowed = append(allowed, id)
		}
	}

	stored := *perms
	stored.AllowedUsers = allowed
	now := r.store.now()

	if existing, ok := r.find(perms.Target()); ok {
		stored.ID = existing.v.ID
		stored.CreatedAt = existing.v.CreatedAt
		stored.UpdatedAt = &now
		d.permissions[stored.ID] = record[models.Permissions]{v: stored, seq: existing.seq}
	} else {
		stored.ID = newID()
		stored.CreatedAt = now
		stored.UpdatedAt = nil
		d.permissions[stored.ID] = record[models.Permissions]{v: stored, seq: d.next()}
	}

	perms.ID = stored.ID
	perms.CreatedAt = stored.CreatedAt
	perms.UpdatedAt = stored.UpdatedAt
	perms.AllowedUsers = slices.Clone(allowed)
	return nil
}

// Delete reports whether a row was removed.
func (r *PermissionsRepository) Delete(ctx context.Context, target models.Target) (bool, error) {
	defer r.store.lock(ctx)()

	rec, ok := r.find(target)
	if !ok {
		return false, nil
	}
	delete(r.store.data.permissions, rec.v.ID)
	return true, nil
}

// DeleteByTargets drops permission rows for the given targets.
func (r *PermissionsRepository) DeleteByTargets(ctx context.Context, kind models.TargetKind, ids []string) error {
	defer r.store.lock(ctx)()

	for id, rec := range r.store.data.permissions {
		if rec.v.TargetKind == kind && slices.Contains(ids, rec.v.TargetID) {
			delete(r.store.data.permissions, id)
		}
	}
	return nil
}
