package social

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"arbor/internal/config"
	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	"arbor/internal/domain/repositories"
	socialRepo "arbor/internal/domain/repositories/social"
	socialSvc "arbor/internal/domain/services/social"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// postService implements the PostService interface
type postService struct {
	postRepo    socialRepo.PostRepository
	purger      *targetPurger
	permissions socialSvc.PermissionService
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewPostService creates a new post service
func NewPostService(
	postRepo socialRepo.PostRepository,
	permsRepo socialRepo.PermissionsRepository,
	interactionRepo socialRepo.InteractionRepository,
	permissions socialSvc.PermissionService,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) socialSvc.PostService {
	return &postService{
		postRepo:    postRepo,
		purger:      &targetPurger{permsRepo: permsRepo, interactionRepo: interactionRepo},
		permissions: permissions,
		txManager:   txManager,
		logger:      logger,
	}
}

func postTarget(id string) models.Target {
	return models.Target{Kind: models.TargetPost, ID: id}
}

// CreatePost publishes a post to a branch. Non-owners need the collaborate capability.
// Title and content are stored exactly as given; markup is sanitized when rendered.
func (s *postService) CreatePost(ctx context.Context, req *socialSvc.CreatePostRequest) (*models.Post, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.permissions.Authorize(ctx, req.AuthorID, branchTarget(req.BranchID), models.ActionCollaborate); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:     req.Title,
		Content:   req.Content,
		BranchID:  req.BranchID,
		AuthorID:  req.AuthorID,
		CreatedAt: time.Now(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		"id", post.ID,
		"branch_id", post.BranchID,
		"author_id", post.AuthorID,
	)

	return post, nil
}

// GetPost retrieves a post from a branch the viewer can see
func (s *postService) GetPost(ctx context.Context, id, viewerID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.permissions.Authorize(ctx, viewerID, branchTarget(post.BranchID), models.ActionView); err != nil {
		return nil, err
	}

	return post, nil
}

// ListPosts lists a branch's posts, newest first
func (s *postService) ListPosts(ctx context.Context, branchID, viewerID string) ([]models.Post, error) {
	if err := s.permissions.Authorize(ctx, viewerID, branchTarget(branchID), models.ActionView); err != nil {
		return nil, err
	}
	return s.postRepo.ListByBranch(ctx, branchID)
}

// EditPost applies a partial update; post author or branch/project owner only
func (s *postService) EditPost(ctx context.Context, id, viewerID string, req *socialSvc.EditPostRequest) (*models.Post, error) {
	if err := s.validateEditRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := requirePostOwner(ctx, s.permissions, viewerID, id, "edit"); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content.Present {
		post.Content = req.Content.Value
	}
	now := time.Now()
	post.UpdatedAt = &now

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post updated",
		"id", post.ID,
		"user_id", viewerID,
	)

	return post, nil
}

// DeletePost removes a post with its media and interactions
func (s *postService) DeletePost(ctx context.Context, id, viewerID string) error {
	if err := requirePostOwner(ctx, s.permissions, viewerID, id, "delete"); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.purger.deleteTargets(txCtx, models.TargetPost, []string{id}, func() error {
			return s.postRepo.Delete(txCtx, id)
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("post deleted",
		"id", id,
		"user_id", viewerID,
	)

	return nil
}

// requirePostOwner allows the post author and the owners of its branch
func requirePostOwner(ctx context.Context, permissions socialSvc.PermissionService, viewerID, postID, action string) error {
	owner, err := permissions.IsOwner(ctx, viewerID, postTarget(postID))
	if err != nil {
		return err
	}
	if !owner {
		return &domain.PermissionDeniedError{
			Action:     action,
			TargetKind: string(models.TargetPost),
			TargetID:   postID,
			Reason:     "author or owner only",
		}
	}
	return nil
}

// validateCreateRequest validates a create post request
func (s *postService) validateCreateRequest(req *socialSvc.CreatePostRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.BranchID, validation.Required),
		validation.Field(&req.AuthorID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxPostTitleLength),
			notBlank,
		),
		validation.Field(&req.Content, validation.Length(0, config.MaxPostContentLength)),
	)
}

// validateEditRequest validates an edit post request
func (s *postService) validateEditRequest(req *socialSvc.EditPostRequest) error {
	if err := validation.Validate(req.Title,
		validation.NilOrNotEmpty,
		validation.Length(1, config.MaxPostTitleLength),
		notBlank,
	); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	if err := validation.Validate(req.Content.Value, validation.Length(0, config.MaxPostContentLength)); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}
