package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// PermissionsRepository stores the 1:1 permissions record of projects and branches
// together with its allow-list join rows
type PermissionsRepository interface {
	// Get returns nil (not an error) when the target has no record
	Get(ctx context.Context, target social.Target) (*social.Permissions, error)

	// Upsert writes the record and replaces the allow-list.
	// Must be called inside ExecTx so record and allow-list change together.
	Upsert(ctx context.Context, perms *social.Permissions) error

	// Delete removes the record. Returns false if none existed.
	Delete(ctx context.Context, target social.Target) (bool, error)

	// DeleteByTargets removes the records of every listed target
	DeleteByTargets(ctx context.Context, kind social.TargetKind, ids []string) error
}
