package social

import (
	"context"

	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
)

// targetPurger removes permissions and interactions of deleted targets.
// Those rows reference their target polymorphically, so no foreign key
// cascades them; callers run the delete helpers inside the deleting transaction.
//
// The purge runs after the delete statement. Deleting the target row waits for
// any transaction holding it through InteractionRepository.LockTarget, so rows
// those transactions wrote are visible to the purge.
type targetPurger struct {
	permsRepo       socialRepo.PermissionsRepository
	interactionRepo socialRepo.InteractionRepository
}

func (p *targetPurger) purge(ctx context.Context, kind models.TargetKind, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := p.interactionRepo.DeleteByTargets(ctx, kind, ids); err != nil {
		return err
	}
	if kind.SupportsPermissions() {
		if err := p.permsRepo.DeleteByTargets(ctx, kind, ids); err != nil {
			return err
		}
	}
	return nil
}

// deleteTargets runs del and then purges the rows of ids
func (p *targetPurger) deleteTargets(ctx context.Context, kind models.TargetKind, ids []string, del func() error) error {
	if err := del(); err != nil {
		return err
	}
	return p.purge(ctx, kind, ids)
}

// deleteBranches runs del, which cascades to the branches and their posts, and then
// purges both. Post ids are listed first because del removes them.
func (p *targetPurger) deleteBranches(ctx context.Context, postRepo socialRepo.PostRepository, branchIDs []string, del func() error) error {
	postIDs, err := postRepo.ListIDsByBranches(ctx, branchIDs)
	if err != nil {
		return err
	}
	if err := del(); err != nil {
		return err
	}
	if err := p.purge(ctx, models.TargetPost, postIDs); err != nil {
		return err
	}
	return p.purge(ctx, models.TargetBranch, branchIDs)
}
