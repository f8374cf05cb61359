package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// PermissionService evaluates and manages project/branch permissions
type PermissionService interface {
	// EvaluatePermission always returns a Decision when the target exists.
	// A denied decision is accompanied by *domain.PermissionDeniedError.
	EvaluatePermission(ctx context.Context, viewerID string, target social.Target, action social.Action) (*social.Decision, error)

	// Authorize is EvaluatePermission reduced to its error.
	// Posts are authorized against their branch.
	Authorize(ctx context.Context, viewerID string, target social.Target, action social.Action) error

	// IsOwner reports whether viewerID owns the target
	IsOwner(ctx context.Context, viewerID string, target social.Target) (bool, error)

	// GetPermissions returns the effective record (defaults when none is stored)
	GetPermissions(ctx context.Context, target social.Target, viewerID string) (*social.Permissions, error)

	// SetPermissions creates or replaces the record; owner only
	SetPermissions(ctx context.Context, target social.Target, viewerID string, input *PermissionsInput) (*social.Permissions, error)

	// DeletePermissions reverts the target to the public default; owner only
	DeletePermissions(ctx context.Context, target social.Target, viewerID string) error
}
