package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// InteractionRequest identifies one (target, user, type) ledger entry
type InteractionRequest struct {
	Target social.Target
	UserID string
	Type   social.InteractionType
}

// InteractionService records and tallies reactions.
// One row per (target, user, type): Add is idempotent, Remove undoes it.
type InteractionService interface {
	AddInteraction(ctx context.Context, req *InteractionRequest) (*social.Interaction, error)

	// RemoveInteraction is a no-op when nothing was recorded
	RemoveInteraction(ctx context.Context, req *InteractionRequest) error

	ToggleInteraction(ctx context.Context, req *InteractionRequest) (*social.ToggleResult, error)

	// CountByType returns the number of distinct users who recorded t on target
	CountByType(ctx context.Context, target social.Target, t social.InteractionType) (int, error)

	// Summary returns counts for every type plus the viewer's own types
	Summary(ctx context.Context, target social.Target, viewerID string) (*social.InteractionSummary, error)

	// ListUserInteractions lists the caller's interactions of one type, newest first
	ListUserInteractions(ctx context.Context, userID string, t social.InteractionType, limit int) ([]social.Interaction, error)
}
