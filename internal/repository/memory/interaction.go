package memory

import (
	"context"
	"fmt"
	"slices"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
)

// InteractionRepository implements socialRepo.InteractionRepository on the store
type InteractionRepository struct {
	store *Store
}

// NewInteractionRepository creates an interaction repository on store
func NewInteractionRepository(store *Store) socialRepo.InteractionRepository {
	return &InteractionRepository{store: store}
}

// LockTarget checks the target exists. The store mutex held by ExecTx already
// excludes a concurrent delete.
func (r *InteractionRepository) LockTarget(ctx context.Context, target models.Target) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	var ok bool
	switch target.Kind {
	case models.TargetProject:
		_, ok = d.projects[target.ID]
	case models.TargetBranch:
		_, ok = d.branches[target.ID]
	case models.TargetPost:
		_, ok = d.posts[target.ID]
	default:
		return fmt.Errorf("%w: unknown target kind %q", domain.ErrValidation, target.Kind)
	}
	if !ok {
		return fmt.Errorf("%s %s: %w", target.Kind, target.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *InteractionRepository) find(target models.Target, userID string, t models.InteractionType) (models.Interaction, bool) {
	for _, rec := range r.store.data.interactions {
		i := rec.v
		if i.TargetKind == target.Kind && i.TargetID == target.ID && i.UserID == userID && i.Type == t {
			return i, true
		}
	}
	return models.Interaction{}, false
}

func onTarget(target models.Target) func(models.Interaction) bool {
	return func(i models.Interaction) bool {
		return i.TargetKind == target.Kind && i.TargetID == target.ID
	}
}

// Add records the interaction, or fills it with the existing row and reports false.
func (r *InteractionRepository) Add(ctx context.Context, interaction *models.Interaction) (bool, error) {
	defer r.store.lock(ctx)()
	d := r.store.data

	if existing, ok := r.find(interaction.Target(), interaction.UserID, interaction.Type); ok {
		*interaction = existing
		return false, nil
	}

	if !r.store.userExists(interaction.UserID) {
		return false, fmt.Errorf("user %s: %w", interaction.UserID, domain.ErrNotFound)
	}

	interaction.ID = newID()
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = r.store.now()
	}
	d.interactions[interaction.ID] = record[models.Interaction]{v: *interaction, seq: d.next()}
	return true, nil
}

// Remove reports whether a row was deleted.
func (r *InteractionRepository) Remove(ctx context.Context, target models.Target, userID string, t models.InteractionType) (bool, error) {
	defer r.store.lock(ctx)()

	existing, ok := r.find(target, userID, t)
	if !ok {
		return false, nil
	}
	delete(r.store.data.interactions, existing.ID)
	return true, nil
}

// Count returns the number of distinct users with type t on target.
func (r *InteractionRepository) Count(ctx context.Context, target models.Target, t models.InteractionType) (int, error) {
	defer r.store.lock(ctx)()

	n := 0
	match := onTarget(target)
	for _, rec := range r.store.data.interactions {
		if match(rec.v) && rec.v.Type == t {
			n++
		}
	}
	return n, nil
}

// CountAll returns per-type counts for target.
func (r *InteractionRepository) CountAll(ctx context.Context, target models.Target) (map[models.InteractionType]int, error) {
	defer r.store.lock(ctx)()

	counts := map[models.InteractionType]int{}
	match := onTarget(target)
	for _, rec := range r.store.data.interactions {
		if match(rec.v) {
			counts[rec.v.Type]++
		}
	}
	return counts, nil
}

// ListTypesByUser returns the types userID recorded on target.
func (r *InteractionRepository) ListTypesByUser(ctx context.Context, target models.Target, userID string) ([]models.InteractionType, error) {
	defer r.store.lock(ctx)()

	types := []models.InteractionType{}
	match := onTarget(target)
	for _, rec := range r.store.data.interactions {
		if match(rec.v) && rec.v.UserID == userID {
			types = append(types, rec.v.Type)
		}
	}
	slices.Sort(types)
	return types, nil
}

// ListByUser returns userID's interactions of type t, newest first.
func (r *InteractionRepository) ListByUser(ctx context.Context, userID string, t models.InteractionType, limit int) ([]models.Interaction, error) {
	defer r.store.lock(ctx)()

	list := sorted(r.store.data.interactions,
		func(i models.Interaction) bool { return i.UserID == userID && i.Type == t },
		func(a, b models.Interaction) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// DeleteByTargets drops every interaction on the given targets.
func (r *InteractionRepository) DeleteByTargets(ctx context.Context, kind models.TargetKind, ids []string) error {
	defer r.store.lock(ctx)()

	for id, rec := range r.store.data.interactions {
		if rec.v.TargetKind == kind && slices.Contains(ids, rec.v.TargetID) {
			delete(r.store.data.interactions, id)
		}
	}
	return nil
}
