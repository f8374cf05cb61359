package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// PermissionsInput is the caller-supplied part of a permissions record
type PermissionsInput struct {
	Private          bool     `json:"private"`
	AllowedUsers     []string `json:"allowed_users"`
	AllowCollaborate bool     `json:"allow_collaborate"`
	AllowBranch      bool     `json:"allow_branch"`
	AllowShare       bool     `json:"allow_share"`
}

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	AuthorID    string            `json:"-"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Picture     *string           `json:"picture"`
	Permissions *PermissionsInput `json:"permissions"`
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Picture     *string `json:"picture"`
}

// ProjectDetails is a project with its default branch
type ProjectDetails struct {
	social.Project
	DefaultBranch *social.Branch      `json:"default_branch"`
	Permissions   *social.Permissions `json:"permissions,omitempty"`
}

// ProjectService defines business logic operations for projects
type ProjectService interface {
	// CreateProject creates a project and its default branch in one transaction
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*ProjectDetails, error)

	// GetProject returns the project if viewerID may see it
	GetProject(ctx context.Context, id, viewerID string) (*ProjectDetails, error)

	// ListProjectsByAuthor returns the author's projects visible to viewerID
	ListProjectsByAuthor(ctx context.Context, authorID, viewerID string) ([]social.Project, error)

	// UpdateProject is restricted to the owner
	UpdateProject(ctx context.Context, id, viewerID string, req *UpdateProjectRequest) (*social.Project, error)

	// DeleteProject is restricted to the owner and cascades to everything below
	DeleteProject(ctx context.Context, id, viewerID string) error
}
