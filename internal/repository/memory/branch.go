package memory

import (
	"context"
	"fmt"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
)

// BranchRepository implements socialRepo.BranchRepository on the store
type BranchRepository struct {
	store *Store
}

// NewBranchRepository returns a BranchRepository backed by store.
func NewBranchRepository(store *Store) socialRepo.BranchRepository {
	return &BranchRepository{store: store}
}

// findByName must be called with the lock held
func (r *BranchRepository) findByName(projectID, name, exceptID string) (string, bool) {
	for id, rec := range r.store.data.branches {
		if id != exceptID && rec.v.ProjectID == projectID && rec.v.Name == name {
			return id, true
		}
	}
	return "", false
}

func (r *BranchRepository) findDefault(projectID string) (models.Branch, bool) {
	for _, rec := range r.store.data.branches {
		if rec.v.ProjectID == projectID && rec.v.Default {
			return rec.v, true
		}
	}
	return models.Branch{}, false
}

// Create inserts a branch, rejecting a second default branch for the same project.
func (r *BranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	if branch.Default {
		if _, ok := r.findDefault(branch.ProjectID); ok {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project %s already has a default branch", branch.ProjectID),
				ResourceType: "branch",
			}
		}
	}
	if existingID, ok := r.findByName(branch.ProjectID, branch.Name, ""); ok {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("branch '%s' already exists", branch.Name),
			ResourceType: "branch",
			ResourceID:   existingID,
		}
	}
	if _, ok := d.projects[branch.ProjectID]; !ok {
		return fmt.Errorf("branch parent: %w", domain.ErrNotFound)
	}
	if !r.store.userExists(branch.AuthorID) {
		return fmt.Errorf("branch parent: %w", domain.ErrNotFound)
	}
	if branch.ForkedFromID != nil {
		if _, ok := d.branches[*branch.ForkedFromID]; !ok {
			return fmt.Errorf("branch parent: %w", domain.ErrNotFound)
		}
	}

	if branch.ID == "" {
		branch.ID = newID()
	}
	if branch.CreatedAt.IsZero() {
		branch.CreatedAt = r.store.now()
	}
	d.branches[branch.ID] = record[models.Branch]{v: *branch, seq: d.next()}
	return nil
}

// GetByID returns ErrNotFound for unknown ids.
func (r *BranchRepository) GetByID(ctx context.Context, id string) (*models.Branch, error) {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.branches[id]
	if !ok {
		return nil, fmt.Errorf("branch %s: %w", id, domain.ErrNotFound)
	}
	b := rec.v
	return &b, nil
}

func (r *BranchRepository) list(projectID string) []models.Branch {
	return sorted(r.store.data.branches,
		func(b models.Branch) bool { return b.ProjectID == projectID },
		func(a, b models.Branch) int {
			if a.Default != b.Default {
				if a.Default {
					return -1
				}
				return 1
			}
			return oldestFirst(a.CreatedAt, b.CreatedAt)
		},
	)
}

// ListByProject lists a project's branches, default first, then oldest first.
func (r *BranchRepository) ListByProject(ctx context.Context, projectID string) ([]models.Branch, error) {
	defer r.store.lock(ctx)()
	return r.list(projectID), nil
}

// GetDefault returns the project's default branch.
func (r *BranchRepository) GetDefault(ctx context.Context, projectID string) (*models.Branch, error) {
	defer r.store.lock(ctx)()

	b, ok := r.findDefault(projectID)
	if !ok {
		return nil, fmt.Errorf("default branch of project %s: %w", projectID, domain.ErrNotFound)
	}
	return &b, nil
}

// LockByProject relies on ExecTx holding the store lock
func (r *BranchRepository) LockByProject(ctx context.Context, projectID string) ([]models.Branch, error) {
	if !r.store.inTx(ctx) {
		return nil, fmt.Errorf("lock branches of project %s: no transaction in context", projectID)
	}
	return r.list(projectID), nil
}

// SetDefault clears the current default and marks branchID as default.
func (r *BranchRepository) SetDefault(ctx context.Context, projectID, branchID string) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	target, ok := d.branches[branchID]
	if !ok || target.v.ProjectID != projectID {
		return fmt.Errorf("branch %s in project %s: %w", branchID, projectID, domain.ErrNotFound)
	}
	for id, rec := range d.branches {
		if rec.v.ProjectID == projectID && rec.v.Default && id != branchID {
			rec.v.Default = false
			d.branches[id] = rec
		}
	}
	target.v.Default = true
	d.branches[branchID] = target
	return nil
}

// Update renames the branch and saves its description; names stay unique per project.
func (r *BranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	rec, ok := d.branches[branch.ID]
	if !ok {
		return fmt.Errorf("branch %s: %w", branch.ID, domain.ErrNotFound)
	}
	if existingID, taken := r.findByName(rec.v.ProjectID, branch.Name, branch.ID); taken {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("branch name '%s' already exists", branch.Name),
			ResourceType: "branch",
			ResourceID:   existingID,
		}
	}
	rec.v.Name = branch.Name
	rec.v.Description = branch.Description
	rec.v.UpdatedAt = branch.UpdatedAt
	d.branches[branch.ID] = rec
	return nil
}

// Delete removes the branch with its posts and media and clears forks pointing at it.
func (r *BranchRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.branches[id]; !ok {
		return fmt.Errorf("branch %s: %w", id, domain.ErrNotFound)
	}
	r.store.deleteBranch(id)
	return nil
}

// deleteBranch removes a branch with its posts and media and clears
// forked_from references to it. Must be called with the lock held.
func (s *Store) deleteBranch(id string) {
	d := s.data
	delete(d.branches, id)
	for otherID, rec := range d.branches {
		if rec.v.ForkedFromID != nil && *rec.v.ForkedFromID == id {
			rec.v.ForkedFromID = nil
			d.branches[otherID] = rec
		}
	}
	for postID, rec := range d.posts {
		if rec.v.BranchID == id {
			s.deletePost(postID)
		}
	}
}
