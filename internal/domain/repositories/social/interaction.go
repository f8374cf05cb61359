package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// InteractionRepository is the ledger of typed reactions
type InteractionRepository interface {
	// LockTarget returns ErrNotFound when the project, branch or post is missing.
	// Inside a transaction the target row stays share-locked until commit, so a
	// concurrent delete of the target waits for the caller's writes.
	LockTarget(ctx context.Context, target social.Target) error

	// Add inserts the row if absent (atomic upsert) and loads the stored row.
	// Returns true when a new row was written.
	Add(ctx context.Context, interaction *social.Interaction) (bool, error)

	// Remove deletes the matching row. Returns false if none existed.
	Remove(ctx context.Context, target social.Target, userID string, t social.InteractionType) (bool, error)

	// Count returns the number of rows (= distinct users) of one type on a target
	Count(ctx context.Context, target social.Target, t social.InteractionType) (int, error)

	// CountAll returns counts per type; absent types are omitted
	CountAll(ctx context.Context, target social.Target) (map[social.InteractionType]int, error)

	// ListTypesByUser returns the types userID has recorded on target
	ListTypesByUser(ctx context.Context, target social.Target, userID string) ([]social.InteractionType, error)

	// ListByUser lists a user's interactions of one type, newest first (limit <= 0 = all)
	ListByUser(ctx context.Context, userID string, t social.InteractionType, limit int) ([]social.Interaction, error)

	// DeleteByTargets removes every row for the listed targets
	DeleteByTargets(ctx context.Context, kind social.TargetKind, ids []string) error
}
