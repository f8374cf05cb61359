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
)

// branchService implements the BranchService interface
type branchService struct {
	branchRepo  socialRepo.BranchRepository
	postRepo    socialRepo.PostRepository
	purger      *targetPurger
	permissions socialSvc.PermissionService
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewBranchService creates a new branch service
func NewBranchService(
	branchRepo socialRepo.BranchRepository,
	postRepo socialRepo.PostRepository,
	permsRepo socialRepo.PermissionsRepository,
	interactionRepo socialRepo.InteractionRepository,
	permissions socialSvc.PermissionService,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) socialSvc.BranchService {
	return &branchService{
		branchRepo:  branchRepo,
		postRepo:    postRepo,
		purger:      &targetPurger{permsRepo: permsRepo, interactionRepo: interactionRepo},
		permissions: permissions,
		txManager:   txManager,
		logger:      logger,
	}
}

func projectTarget(id string) models.Target {
	return models.Target{Kind: models.TargetProject, ID: id}
}

func branchTarget(id string) models.Target {
	return models.Target{Kind: models.TargetBranch, ID: id}
}

// CreateBranch creates a non-default branch. The author needs the branch
// capability on the project and, when forking, on the source branch.
func (s *branchService) CreateBranch(ctx context.Context, req *socialSvc.CreateBranchRequest) (*models.Branch, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.permissions.Authorize(ctx, req.AuthorID, projectTarget(req.ProjectID), models.ActionBranch); err != nil {
		return nil, err
	}

	if req.FromBranchID != nil {
		source, err := s.branchRepo.GetByID(ctx, *req.FromBranchID)
		if err != nil {
			return nil, err
		}
		if source.ProjectID != req.ProjectID {
			return nil, fmt.Errorf("%w: branch %s belongs to another project", domain.ErrValidation, source.ID)
		}
		if err := s.permissions.Authorize(ctx, req.AuthorID, branchTarget(source.ID), models.ActionBranch); err != nil {
			return nil, err
		}
	}

	branch := &models.Branch{
		Name:         strings.TrimSpace(req.Name),
		Description:  trimmed(req.Description),
		Default:      false,
		ProjectID:    req.ProjectID,
		AuthorID:     req.AuthorID,
		ForkedFromID: req.FromBranchID,
		CreatedAt:    time.Now(),
	}

	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}

	s.logger.Info("branch created",
		"id", branch.ID,
		"name", branch.Name,
		"project_id", branch.ProjectID,
		"author_id", branch.AuthorID,
	)

	return branch, nil
}

// GetBranch retrieves a branch the viewer can see
func (s *branchService) GetBranch(ctx context.Context, id, viewerID string) (*models.Branch, error) {
	if err := s.permissions.Authorize(ctx, viewerID, branchTarget(id), models.ActionView); err != nil {
		return nil, err
	}
	return s.branchRepo.GetByID(ctx, id)
}

// ListBranches lists the project's branches visible to viewerID
func (s *branchService) ListBranches(ctx context.Context, projectID, viewerID string) ([]models.Branch, error) {
	if err := s.permissions.Authorize(ctx, viewerID, projectTarget(projectID), models.ActionView); err != nil {
		return nil, err
	}

	branches, err := s.branchRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Branch, 0, len(branches))
	for _, branch := range branches {
		err := s.permissions.Authorize(ctx, viewerID, branchTarget(branch.ID), models.ActionView)
		if err == nil {
			visible = append(visible, branch)
			continue
		}
		if !isDenied(err) {
			return nil, err
		}
	}

	return visible, nil
}

// GetDefaultBranch returns the project's default branch
func (s *branchService) GetDefaultBranch(ctx context.Context, projectID, viewerID string) (*models.Branch, error) {
	if err := s.permissions.Authorize(ctx, viewerID, projectTarget(projectID), models.ActionView); err != nil {
		return nil, err
	}

	branch, err := s.branchRepo.GetDefault(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.permissions.Authorize(ctx, viewerID, branchTarget(branch.ID), models.ActionView); err != nil {
		return nil, err
	}

	return branch, nil
}

// SetDefaultBranch moves the default flag to branchID. The project's branch
// rows stay locked from the read until commit.
func (s *branchService) SetDefaultBranch(ctx context.Context, projectID, branchID, viewerID string) (*models.Branch, error) {
	if err := s.requireProjectOwner(ctx, viewerID, projectID, "set default branch"); err != nil {
		return nil, err
	}

	var result *models.Branch
	changed := false

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		branches, err := s.branchRepo.LockByProject(txCtx, projectID)
		if err != nil {
			return err
		}

		target := findBranch(branches, branchID)
		if target == nil {
			return fmt.Errorf("branch %s in project %s: %w", branchID, projectID, domain.ErrNotFound)
		}
		if target.Default {
			result = target
			return nil
		}

		if err := s.branchRepo.SetDefault(txCtx, projectID, branchID); err != nil {
			return err
		}
		target.Default = true
		result = target
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("default branch changed",
			"project_id", projectID,
			"branch_id", branchID,
			"user_id", viewerID,
		)
	}

	return result, nil
}

// UpdateBranch updates name and description; branch or project owner only
func (s *branchService) UpdateBranch(ctx context.Context, id, viewerID string, req *socialSvc.UpdateBranchRequest) (*models.Branch, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.requireBranchOwner(ctx, viewerID, id, "update"); err != nil {
		return nil, err
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		branch.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		branch.Description = trimmed(req.Description)
	}
	now := time.Now()
	branch.UpdatedAt = &now

	if err := s.branchRepo.Update(ctx, branch); err != nil {
		return nil, err
	}

	s.logger.Info("branch updated",
		"id", branch.ID,
		"name", branch.Name,
		"user_id", viewerID,
	)

	return branch, nil
}

// DeleteBranch removes a branch with its posts. The default branch can only be
// deleted by the project owner while promoting another branch.
func (s *branchService) DeleteBranch(ctx context.Context, id, viewerID, promoteID string) error {
	if err := s.requireBranchOwner(ctx, viewerID, id, "delete"); err != nil {
		return err
	}

	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if branch.Default {
		if promoteID == "" {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("branch %s is the default branch of project %s; promote another branch first", id, branch.ProjectID),
				ResourceType: "branch",
				ResourceID:   id,
			}
		}
		if err := s.requireProjectOwner(ctx, viewerID, branch.ProjectID, "set default branch"); err != nil {
			return err
		}
	}

	promoted := false
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		branches, err := s.branchRepo.LockByProject(txCtx, branch.ProjectID)
		if err != nil {
			return err
		}

		current := findBranch(branches, id)
		if current == nil {
			return fmt.Errorf("branch %s: %w", id, domain.ErrNotFound)
		}

		// The flag may have moved since the unlocked read
		if current.Default {
			if promoteID == "" || !branch.Default {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("branch %s is the default branch of project %s", id, branch.ProjectID),
					ResourceType: "branch",
					ResourceID:   id,
				}
			}
			if promoteID == id || findBranch(branches, promoteID) == nil {
				return fmt.Errorf("%w: promote must name another branch of project %s", domain.ErrValidation, branch.ProjectID)
			}
			if err := s.branchRepo.SetDefault(txCtx, branch.ProjectID, promoteID); err != nil {
				return err
			}
			promoted = true
		}

		return s.purger.deleteBranches(txCtx, s.postRepo, []string{id}, func() error {
			return s.branchRepo.Delete(txCtx, id)
		})
	})
	if err != nil {
		return err
	}

	attrs := []any{"id", id, "project_id", branch.ProjectID, "user_id", viewerID}
	if promoted {
		attrs = append(attrs, "promoted_id", promoteID)
	}
	s.logger.Info("branch deleted", attrs...)

	return nil
}

func (s *branchService) requireBranchOwner(ctx context.Context, viewerID, branchID, action string) error {
	owner, err := s.permissions.IsOwner(ctx, viewerID, branchTarget(branchID))
	if err != nil {
		return err
	}
	if !owner {
		return &domain.PermissionDeniedError{
			Action:     action,
			TargetKind: string(models.TargetBranch),
			TargetID:   branchID,
			Reason:     "owner only",
		}
	}
	return nil
}

func (s *branchService) requireProjectOwner(ctx context.Context, viewerID, projectID, action string) error {
	owner, err := s.permissions.IsOwner(ctx, viewerID, projectTarget(projectID))
	if err != nil {
		return err
	}
	if !owner {
		return &domain.PermissionDeniedError{
			Action:     action,
			TargetKind: string(models.TargetProject),
			TargetID:   projectID,
			Reason:     "project owner only",
		}
	}
	return nil
}

func findBranch(branches []models.Branch, id string) *models.Branch {
	for i := range branches {
		if branches[i].ID == id {
			return &branches[i]
		}
	}
	return nil
}

// validateCreateRequest validates a create branch request
func (s *branchService) validateCreateRequest(req *socialSvc.CreateBranchRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.AuthorID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxBranchNameLength),
			notBlank,
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.FromBranchID, validation.NilOrNotEmpty),
	)
}

// validateUpdateRequest validates an update branch request
func (s *branchService) validateUpdateRequest(req *socialSvc.UpdateBranchRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxBranchNameLength),
			notBlank,
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
}
