package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	// Create creates a new project and fills in generated ID
	Create(ctx context.Context, project *social.Project) error

	// GetByID retrieves a project by ID
	GetByID(ctx context.Context, id string) (*social.Project, error)

	// ListByAuthor retrieves all projects of an author, newest first
	ListByAuthor(ctx context.Context, authorID string) ([]social.Project, error)

	// Update updates name, description, picture and updated_at
	Update(ctx context.Context, project *social.Project) error

	// Delete removes the project; branches, posts and media cascade
	Delete(ctx context.Context, id string) error
}
