package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// CreateBranchRequest represents a request to create a non-default branch
type CreateBranchRequest struct {
	ProjectID   string  `json:"-"`
	AuthorID    string  `json:"-"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	// FromBranchID records the branch this one was created from; posts are not copied
	FromBranchID *string `json:"from_branch_id"`
}

// UpdateBranchRequest represents a partial branch update
type UpdateBranchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// BranchService defines business logic operations for branches
type BranchService interface {
	CreateBranch(ctx context.Context, req *CreateBranchRequest) (*social.Branch, error)

	GetBranch(ctx context.Context, id, viewerID string) (*social.Branch, error)

	// ListBranches returns the project's branches visible to viewerID, default first
	ListBranches(ctx context.Context, projectID, viewerID string) ([]social.Branch, error)

	GetDefaultBranch(ctx context.Context, projectID, viewerID string) (*social.Branch, error)

	// SetDefaultBranch atomically moves the default flag to branchID
	SetDefaultBranch(ctx context.Context, projectID, branchID, viewerID string) (*social.Branch, error)

	UpdateBranch(ctx context.Context, id, viewerID string, req *UpdateBranchRequest) (*social.Branch, error)

	// DeleteBranch refuses to delete the default branch unless promoteID names
	// another branch of the same project to promote in the same transaction
	DeleteBranch(ctx context.Context, id, viewerID, promoteID string) error
}
