package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// BranchRepository defines data access operations for branches
type BranchRepository interface {
	// Create creates a branch. Returns *domain.ConflictError on a duplicate
	// name within the project or a second default branch.
	Create(ctx context.Context, branch *social.Branch) error

	// GetByID retrieves a branch by ID
	GetByID(ctx context.Context, id string) (*social.Branch, error)

	// ListByProject lists branches, default first, then oldest first
	ListByProject(ctx context.Context, projectID string) ([]social.Branch, error)

	// GetDefault returns the default branch of a project
	GetDefault(ctx context.Context, projectID string) (*social.Branch, error)

	// LockByProject returns every branch of the project and locks the rows
	// until the surrounding transaction ends. Must be called inside ExecTx.
	LockByProject(ctx context.Context, projectID string) ([]social.Branch, error)

	// SetDefault clears the default flag on the project's branches and sets it on branchID.
	// Must be called inside ExecTx after LockByProject.
	SetDefault(ctx context.Context, projectID, branchID string) error

	// Update updates name, description and updated_at
	Update(ctx context.Context, branch *social.Branch) error

	// Delete removes the branch; posts and media cascade
	Delete(ctx context.Context, id string) error
}
