package social

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"arbor/internal/config"
	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	"arbor/internal/domain/repositories"
	socialRepo "arbor/internal/domain/repositories/social"
	socialSvc "arbor/internal/domain/services/social"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo socialRepo.ProjectRepository
	branchRepo  socialRepo.BranchRepository
	postRepo    socialRepo.PostRepository
	permsRepo   socialRepo.PermissionsRepository
	userRepo    socialRepo.UserRepository
	purger      *targetPurger
	permissions socialSvc.PermissionService
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo socialRepo.ProjectRepository,
	branchRepo socialRepo.BranchRepository,
	postRepo socialRepo.PostRepository,
	permsRepo socialRepo.PermissionsRepository,
	interactionRepo socialRepo.InteractionRepository,
	userRepo socialRepo.UserRepository,
	permissions socialSvc.PermissionService,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) socialSvc.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		branchRepo:  branchRepo,
		postRepo:    postRepo,
		permsRepo:   permsRepo,
		userRepo:    userRepo,
		purger:      &targetPurger{permsRepo: permsRepo, interactionRepo: interactionRepo},
		permissions: permissions,
		txManager:   txManager,
		logger:      logger,
	}
}

// CreateProject creates a project, its default branch and optional
// permissions in one transaction
func (s *projectService) CreateProject(ctx context.Context, req *socialSvc.CreateProjectRequest) (*socialSvc.ProjectDetails, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	project := &models.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: trimmed(req.Description),
		Picture:     trimmed(req.Picture),
		AuthorID:    req.AuthorID,
		CreatedAt:   now,
	}
	branch := &models.Branch{
		Name:      models.DefaultBranchName,
		Default:   true,
		AuthorID:  req.AuthorID,
		CreatedAt: now,
	}
	details := &socialSvc.ProjectDetails{DefaultBranch: branch}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.Create(txCtx, project); err != nil {
			return err
		}

		branch.ProjectID = project.ID
		if err := s.branchRepo.Create(txCtx, branch); err != nil {
			return err
		}

		if req.Permissions == nil {
			return nil
		}
		perms := permissionsFromInput(models.Target{Kind: models.TargetProject, ID: project.ID}, req.Permissions)
		if err := writePermissions(txCtx, s.userRepo, s.permsRepo, perms); err != nil {
			return err
		}
		details.Permissions = perms
		return nil
	})
	if err != nil {
		return nil, err
	}

	details.Project = *project

	s.logger.Info("project created",
		"id", project.ID,
		"name", project.Name,
		"default_branch_id", branch.ID,
		"author_id", req.AuthorID,
	)

	return details, nil
}

// GetProject returns the project with its default branch when the viewer can see it
func (s *projectService) GetProject(ctx context.Context, id, viewerID string) (*socialSvc.ProjectDetails, error) {
	target := models.Target{Kind: models.TargetProject, ID: id}
	decision, err := s.permissions.EvaluatePermission(ctx, viewerID, target, models.ActionView)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &socialSvc.ProjectDetails{Project: *project}

	branch, err := s.branchRepo.GetDefault(ctx, id)
	if err != nil {
		return nil, err
	}
	branchTarget := models.Target{Kind: models.TargetBranch, ID: branch.ID}
	switch err := s.permissions.Authorize(ctx, viewerID, branchTarget, models.ActionView); {
	case err == nil:
		details.DefaultBranch = branch
	case !isDenied(err):
		return nil, err
	}

	if decision.IsOwner {
		perms, err := s.permsRepo.Get(ctx, target)
		if err != nil {
			return nil, err
		}
		details.Permissions = perms
	}

	return details, nil
}

// ListProjectsByAuthor returns the author's projects visible to viewerID, newest first
func (s *projectService) ListProjectsByAuthor(ctx context.Context, authorID, viewerID string) ([]models.Project, error) {
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Project, 0, len(projects))
	for _, project := range projects {
		target := models.Target{Kind: models.TargetProject, ID: project.ID}
		err := s.permissions.Authorize(ctx, viewerID, target, models.ActionView)
		if err == nil {
			visible = append(visible, project)
			continue
		}
		if !isDenied(err) {
			return nil, err
		}
	}

	return visible, nil
}

// UpdateProject updates name, description and picture; owner only
func (s *projectService) UpdateProject(ctx context.Context, id, viewerID string, req *socialSvc.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.requireOwner(ctx, viewerID, id, "update"); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		project.Description = trimmed(req.Description)
	}
	if req.Picture != nil {
		project.Picture = trimmed(req.Picture)
	}
	now := time.Now()
	project.UpdatedAt = &now

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated",
		"id", project.ID,
		"name", project.Name,
		"user_id", viewerID,
	)

	return project, nil
}

// DeleteProject removes the project and everything below it; owner only
func (s *projectService) DeleteProject(ctx context.Context, id, viewerID string) error {
	if err := s.requireOwner(ctx, viewerID, id, "delete"); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		branches, err := s.branchRepo.ListByProject(txCtx, id)
		if err != nil {
			return err
		}

		branchIDs := make([]string, len(branches))
		for i, b := range branches {
			branchIDs[i] = b.ID
		}

		err = s.purger.deleteBranches(txCtx, s.postRepo, branchIDs, func() error {
			return s.projectRepo.Delete(txCtx, id)
		})
		if err != nil {
			return err
		}
		return s.purger.purge(txCtx, models.TargetProject, []string{id})
	})
	if err != nil {
		return err
	}

	s.logger.Info("project deleted",
		"id", id,
		"user_id", viewerID,
	)

	return nil
}

func (s *projectService) requireOwner(ctx context.Context, viewerID, projectID, action string) error {
	target := models.Target{Kind: models.TargetProject, ID: projectID}
	owner, err := s.permissions.IsOwner(ctx, viewerID, target)
	if err != nil {
		return err
	}
	if !owner {
		return &domain.PermissionDeniedError{
			Action:     action,
			TargetKind: string(models.TargetProject),
			TargetID:   projectID,
			Reason:     "owner only",
		}
	}
	return nil
}

// validateCreateRequest validates a create project request
func (s *projectService) validateCreateRequest(req *socialSvc.CreateProjectRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.AuthorID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxProjectNameLength),
			notBlank,
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.Picture, validation.Length(0, config.MaxURLLength), is.RequestURL),
	)
	if err != nil {
		return err
	}
	if req.Permissions != nil {
		return validatePermissionsInput(req.Permissions)
	}
	return nil
}

// validateUpdateRequest validates an update project request
func (s *projectService) validateUpdateRequest(req *socialSvc.UpdateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxProjectNameLength),
			notBlank,
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.Picture, validation.Length(0, config.MaxURLLength), is.RequestURL),
	)
}
