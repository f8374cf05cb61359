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

// mediaService implements the MediaService interface
type mediaService struct {
	mediaRepo   socialRepo.MediaRepository
	postRepo    socialRepo.PostRepository
	permissions socialSvc.PermissionService
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewMediaService creates a new media service
func NewMediaService(
	mediaRepo socialRepo.MediaRepository,
	postRepo socialRepo.PostRepository,
	permissions socialSvc.PermissionService,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) socialSvc.MediaService {
	return &mediaService{
		mediaRepo:   mediaRepo,
		postRepo:    postRepo,
		permissions: permissions,
		txManager:   txManager,
		logger:      logger,
	}
}

// AddMedia attaches a media reference; post author or owners only
func (s *mediaService) AddMedia(ctx context.Context, req *socialSvc.AddMediaRequest) (*models.PostMedia, error) {
	if err := s.validateAddRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := requirePostOwner(ctx, s.permissions, req.ViewerID, req.PostID, "add media"); err != nil {
		return nil, err
	}

	media := &models.PostMedia{
		Name:      strings.TrimSpace(req.Name),
		URL:       strings.TrimSpace(req.URL),
		PostID:    req.PostID,
		CreatedAt: time.Now(),
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		count, err := s.mediaRepo.CountByPost(txCtx, req.PostID)
		if err != nil {
			return err
		}
		if count >= config.MaxMediaPerPost {
			return fmt.Errorf("%w: a post can carry at most %d media", domain.ErrValidation, config.MaxMediaPerPost)
		}
		return s.mediaRepo.Create(txCtx, media)
	}, repositories.WithIsolation(repositories.Serializable))
	if err != nil {
		return nil, err
	}

	s.logger.Info("media added",
		"id", media.ID,
		"post_id", media.PostID,
		"user_id", req.ViewerID,
	)

	return media, nil
}

// GetMedia retrieves a media row of a visible post
func (s *mediaService) GetMedia(ctx context.Context, id, viewerID string) (*models.PostMedia, error) {
	media, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeView(ctx, viewerID, media.PostID); err != nil {
		return nil, err
	}

	return media, nil
}

// ListMedia lists the media of a visible post in insertion order
func (s *mediaService) ListMedia(ctx context.Context, postID, viewerID string) ([]models.PostMedia, error) {
	if err := s.authorizeView(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	return s.mediaRepo.ListByPost(ctx, postID)
}

// DeleteMedia removes a media row; post author or owners only
func (s *mediaService) DeleteMedia(ctx context.Context, id, viewerID string) error {
	media, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := requirePostOwner(ctx, s.permissions, viewerID, media.PostID, "delete media"); err != nil {
		return err
	}

	if err := s.mediaRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("media deleted",
		"id", id,
		"post_id", media.PostID,
		"user_id", viewerID,
	)

	return nil
}

func (s *mediaService) authorizeView(ctx context.Context, viewerID, postID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	return s.permissions.Authorize(ctx, viewerID, branchTarget(post.BranchID), models.ActionView)
}

// validateAddRequest validates an add media request
func (s *mediaService) validateAddRequest(req *socialSvc.AddMediaRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PostID, validation.Required),
		validation.Field(&req.ViewerID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxMediaNameLength),
			notBlank,
		),
		validation.Field(&req.URL,
			validation.Required,
			validation.Length(1, config.MaxURLLength),
			is.RequestURL,
		),
	)
}
