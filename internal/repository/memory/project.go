package memory

import (
	"context"
	"fmt"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
)

// ProjectRepository implements socialRepo.ProjectRepository on the store
type ProjectRepository struct {
	store *Store
}

// NewProjectRepository returns a ProjectRepository backed by store.
func NewProjectRepository(store *Store) socialRepo.ProjectRepository {
	return &ProjectRepository{store: store}
}

// Create inserts a project for an existing author.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	if !r.store.userExists(project.AuthorID) {
		return fmt.Errorf("project author %s: %w", project.AuthorID, domain.ErrNotFound)
	}
	if project.ID == "" {
		project.ID = newID()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = r.store.now()
	}
	d.projects[project.ID] = record[models.Project]{v: *project, seq: d.next()}
	return nil
}

// GetByID returns ErrNotFound for unknown ids.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	defer r.store.lock(ctx)()

	rec, ok := r.store.data.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	p := rec.v
	return &p, nil
}

// ListByAuthor lists an author's projects, newest first.
func (r *ProjectRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Project, error) {
	defer r.store.lock(ctx)()

	projects := sorted(r.store.data.projects,
		func(p models.Project) bool { return p.AuthorID == authorID },
		func(a, b models.Project) int { return newestFirst(a.CreatedAt, b.CreatedAt) },
	)
	return projects, nil
}

// Update saves name, description and picture changes.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	rec, ok := d.projects[project.ID]
	if !ok {
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	}
	rec.v.Name = project.Name
	rec.v.Description = project.Description
	rec.v.Picture = project.Picture
	rec.v.UpdatedAt = project.UpdatedAt
	d.projects[project.ID] = rec
	return nil
}

// Delete removes the project with its branches, posts and media.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	defer r.store.lock(ctx)()
	d := r.store.data

	if _, ok := d.projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	delete(d.projects, id)
	for branchID, rec := range d.branches {
		if rec.v.ProjectID == id {
			r.store.deleteBranch(branchID)
		}
	}
	return nil
}
