package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialRepo "arbor/internal/domain/repositories/social"
	socialSvc "arbor/internal/domain/services/social"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// followService implements the FollowService interface
type followService struct {
	followRepo socialRepo.FollowRepository
	userRepo   socialRepo.UserRepository
	logger     *slog.Logger
}

// NewFollowService creates a new follow service
func NewFollowService(
	followRepo socialRepo.FollowRepository,
	userRepo socialRepo.UserRepository,
	logger *slog.Logger,
) socialSvc.FollowService {
	return &followService{
		followRepo: followRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Follow creates the edge follower -> followed, or returns the existing one
func (s *followService) Follow(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	if err := validatePair(followerID, followedID); err != nil {
		return nil, err
	}
	if followerID == followedID {
		return nil, fmt.Errorf("%w: a user cannot follow themselves", domain.ErrValidation)
	}

	follow := &models.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now(),
	}

	created, err := s.followRepo.Create(ctx, follow)
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("user followed",
			"follower_id", followerID,
			"followed_id", followedID,
		)
	}

	return follow, nil
}

// Unfollow removes the edge if present
func (s *followService) Unfollow(ctx context.Context, followerID, followedID string) error {
	if err := validatePair(followerID, followedID); err != nil {
		return err
	}

	deleted, err := s.followRepo.Delete(ctx, followerID, followedID)
	if err != nil {
		return err
	}

	if deleted {
		s.logger.Info("user unfollowed",
			"follower_id", followerID,
			"followed_id", followedID,
		)
	}

	return nil
}

// ListFollowers lists the edges pointing at userID, oldest first
func (s *followService) ListFollowers(ctx context.Context, userID string) ([]models.Follow, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, userID)
}

// ListFollowing lists the edges starting at userID, oldest first
func (s *followService) ListFollowing(ctx context.Context, userID string) ([]models.Follow, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, userID)
}

// IsFollowing reports whether the edge exists
func (s *followService) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	_, err := s.followRepo.Get(ctx, followerID, followedID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Counts returns follower and following totals
func (s *followService) Counts(ctx context.Context, userID string) (*models.FollowCounts, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Counts(ctx, userID)
}

func validatePair(followerID, followedID string) error {
	if err := validation.Validate(followerID, validation.Required); err != nil {
		return fmt.Errorf("%w: follower: %v", domain.ErrValidation, err)
	}
	if err := validation.Validate(followedID, validation.Required); err != nil {
		return fmt.Errorf("%w: followed user: %v", domain.ErrValidation, err)
	}
	return nil
}
