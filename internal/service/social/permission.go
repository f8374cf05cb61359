package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
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

// permissionService evaluates visibility and capabilities of projects,
// branches and posts.
//
// Evaluation order:
//  1. load the target's Permissions; none stored means public with every capability
//  2. owners are granted everything (project: author; branch: branch or project author)
//  3. for a branch, a non-owner must also be able to view the parent project
//  4. a private target is visible only to owners and the allow-list
//  5. branch/share/collaborate require the matching capability flag
//
// Posts are evaluated against their branch.
type permissionService struct {
	projectRepo socialRepo.ProjectRepository
	branchRepo  socialRepo.BranchRepository
	postRepo    socialRepo.PostRepository
	permsRepo   socialRepo.PermissionsRepository
	userRepo    socialRepo.UserRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewPermissionService creates a new permission service
func NewPermissionService(
	projectRepo socialRepo.ProjectRepository,
	branchRepo socialRepo.BranchRepository,
	postRepo socialRepo.PostRepository,
	permsRepo socialRepo.PermissionsRepository,
	userRepo socialRepo.UserRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) socialSvc.PermissionService {
	return &permissionService{
		projectRepo: projectRepo,
		branchRepo:  branchRepo,
		postRepo:    postRepo,
		permsRepo:   permsRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// subject is a loaded project or branch with everything the evaluator needs
type subject struct {
	target   models.Target
	owners   []string
	perms    *models.Permissions
	explicit bool
	// parent is the project of a branch, nil for projects
	parent *models.Target
}

func (s *subject) isOwner(userID string) bool {
	return userID != "" && slices.Contains(s.owners, userID)
}

// load resolves target to a project or branch subject. Posts resolve to their branch.
func (s *permissionService) load(ctx context.Context, target models.Target) (*subject, error) {
	var sub subject

	switch target.Kind {
	case models.TargetProject:
		project, err := s.projectRepo.GetByID(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		sub.target = target
		sub.owners = []string{project.AuthorID}

	case models.TargetBranch:
		branch, err := s.branchRepo.GetByID(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		project, err := s.projectRepo.GetByID(ctx, branch.ProjectID)
		if err != nil {
			return nil, err
		}
		sub.target = target
		sub.owners = []string{branch.AuthorID, project.AuthorID}
		sub.parent = &models.Target{Kind: models.TargetProject, ID: project.ID}

	case models.TargetPost:
		post, err := s.postRepo.GetByID(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		return s.load(ctx, models.Target{Kind: models.TargetBranch, ID: post.BranchID})

	default:
		return nil, fmt.Errorf("%w: unknown target kind %q", domain.ErrValidation, target.Kind)
	}

	perms, err := s.permsRepo.Get(ctx, sub.target)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		sub.perms = models.DefaultPermissions(sub.target)
	} else {
		sub.perms = perms
		sub.explicit = true
	}

	return &sub, nil
}

// decide applies the evaluation rules to a loaded subject
func (s *permissionService) decide(ctx context.Context, viewerID string, sub *subject, action models.Action) (*models.Decision, error) {
	decision := &models.Decision{
		Target:   sub.target,
		Action:   action,
		IsOwner:  sub.isOwner(viewerID),
		Explicit: sub.explicit,
	}

	if decision.IsOwner {
		decision.Granted = true
		return decision, nil
	}

	if sub.parent != nil {
		parent, err := s.load(ctx, *sub.parent)
		if err != nil {
			return nil, err
		}
		parentDecision, err := s.decide(ctx, viewerID, parent, models.ActionView)
		if err != nil {
			return nil, err
		}
		if !parentDecision.Granted {
			decision.Reason = "parent project is not visible"
			return decision, nil
		}
	}

	if sub.perms.Private && (viewerID == "" || !sub.perms.IsAllowed(viewerID)) {
		decision.Reason = fmt.Sprintf("%s is private", sub.target.Kind)
		return decision, nil
	}

	if !sub.perms.Capability(action) {
		decision.Reason = fmt.Sprintf("%s is disabled on this %s", action, sub.target.Kind)
		return decision, nil
	}

	decision.Granted = true
	return decision, nil
}

// EvaluatePermission returns the decision for viewerID performing action on target
func (s *permissionService) EvaluatePermission(ctx context.Context, viewerID string, target models.Target, action models.Action) (*models.Decision, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrValidation, action)
	}

	sub, err := s.load(ctx, target)
	if err != nil {
		return nil, err
	}

	decision, err := s.decide(ctx, viewerID, sub, action)
	if err != nil {
		return nil, err
	}
	// Report the caller's target even when a post was evaluated through its branch
	decision.Target = target

	if !decision.Granted {
		return decision, &domain.PermissionDeniedError{
			Action:     string(action),
			TargetKind: string(target.Kind),
			TargetID:   target.ID,
			Reason:     decision.Reason,
		}
	}

	return decision, nil
}

// Authorize returns nil when the action is granted
func (s *permissionService) Authorize(ctx context.Context, viewerID string, target models.Target, action models.Action) error {
	_, err := s.EvaluatePermission(ctx, viewerID, target, action)
	return err
}

// IsOwner reports whether viewerID owns target. A post is owned by its
// author and by the owners of its branch.
func (s *permissionService) IsOwner(ctx context.Context, viewerID string, target models.Target) (bool, error) {
	if target.Kind == models.TargetPost {
		post, err := s.postRepo.GetByID(ctx, target.ID)
		if err != nil {
			return false, err
		}
		if viewerID != "" && post.AuthorID == viewerID {
			return true, nil
		}
	}

	sub, err := s.load(ctx, target)
	if err != nil {
		return false, err
	}
	return sub.isOwner(viewerID), nil
}

// GetPermissions returns the effective record. Non-owners do not see the allow-list.
func (s *permissionService) GetPermissions(ctx context.Context, target models.Target, viewerID string) (*models.Permissions, error) {
	if !target.Kind.SupportsPermissions() {
		return nil, fmt.Errorf("%w: permissions apply to projects and branches only", domain.ErrValidation)
	}

	decision, err := s.EvaluatePermission(ctx, viewerID, target, models.ActionView)
	if err != nil {
		return nil, err
	}

	perms, err := s.permsRepo.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = models.DefaultPermissions(target)
	}
	if !decision.IsOwner {
		perms.AllowedUsers = []string{}
	}

	return perms, nil
}

// SetPermissions replaces the record and its allow-list in one transaction
func (s *permissionService) SetPermissions(ctx context.Context, target models.Target, viewerID string, input *socialSvc.PermissionsInput) (*models.Permissions, error) {
	if !target.Kind.SupportsPermissions() {
		return nil, fmt.Errorf("%w: permissions apply to projects and branches only", domain.ErrValidation)
	}
	if err := validatePermissionsInput(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.requireOwner(ctx, viewerID, target, "manage permissions"); err != nil {
		return nil, err
	}

	perms := permissionsFromInput(target, input)
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return writePermissions(txCtx, s.userRepo, s.permsRepo, perms)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("permissions updated",
		"target_kind", target.Kind,
		"target_id", target.ID,
		"private", perms.Private,
		"allowed_users", len(perms.AllowedUsers),
		"user_id", viewerID,
	)

	return perms, nil
}

// DeletePermissions reverts target to the public default
func (s *permissionService) DeletePermissions(ctx context.Context, target models.Target, viewerID string) error {
	if !target.Kind.SupportsPermissions() {
		return fmt.Errorf("%w: permissions apply to projects and branches only", domain.ErrValidation)
	}

	if err := s.requireOwner(ctx, viewerID, target, "manage permissions"); err != nil {
		return err
	}

	deleted, err := s.permsRepo.Delete(ctx, target)
	if err != nil {
		return err
	}

	if deleted {
		s.logger.Info("permissions deleted",
			"target_kind", target.Kind,
			"target_id", target.ID,
			"user_id", viewerID,
		)
	}

	return nil
}

func (s *permissionService) requireOwner(ctx context.Context, viewerID string, target models.Target, action string) error {
	owner, err := s.IsOwner(ctx, viewerID, target)
	if err != nil {
		return err
	}
	if !owner {
		return &domain.PermissionDeniedError{
			Action:     action,
			TargetKind: string(target.Kind),
			TargetID:   target.ID,
			Reason:     "owner only",
		}
	}
	return nil
}

// writePermissions checks the allow-list against the users table and upserts
// perms. Must run inside a transaction.
func writePermissions(ctx context.Context, userRepo socialRepo.UserRepository, permsRepo socialRepo.PermissionsRepository, perms *models.Permissions) error {
	missing, err := userRepo.FindMissing(ctx, perms.AllowedUsers)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: allowed_users contains unknown users %v", domain.ErrValidation, missing)
	}

	perms.CreatedAt = time.Now()
	return permsRepo.Upsert(ctx, perms)
}

func permissionsFromInput(target models.Target, input *socialSvc.PermissionsInput) *models.Permissions {
	allowed := make([]string, 0, len(input.AllowedUsers))
	for _, id := range input.AllowedUsers {
		if !slices.Contains(allowed, id) {
			allowed = append(allowed, id)
		}
	}

	return &models.Permissions{
		TargetKind:       target.Kind,
		TargetID:         target.ID,
		Private:          input.Private,
		AllowedUsers:     allowed,
		AllowCollaborate: input.AllowCollaborate,
		AllowBranch:      input.AllowBranch,
		AllowShare:       input.AllowShare,
	}
}

func validatePermissionsInput(input *socialSvc.PermissionsInput) error {
	if input == nil {
		return errors.New("permissions are required")
	}
	return validation.ValidateStruct(input,
		validation.Field(&input.AllowedUsers,
			validation.Length(0, config.MaxAllowedUsers),
			validation.Each(is.UUID),
		),
	)
}

// isDenied reports whether err is a permission denial
func isDenied(err error) bool {
	return errors.Is(err, domain.ErrPermissionDenied)
}
