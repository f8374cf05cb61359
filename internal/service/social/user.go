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
	socialRepo "arbor/internal/domain/repositories/social"
	socialSvc "arbor/internal/domain/services/social"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// userService implements the UserService interface
type userService struct {
	userRepo socialRepo.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo socialRepo.UserRepository, logger *slog.Logger) socialSvc.UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterUser creates the local record of an identity. Emails are stored lower-cased.
func (s *userService) RegisterUser(ctx context.Context, req *socialSvc.RegisterUserRequest) (*models.User, error) {
	if err := s.validateRegisterRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user := &models.User{
		ID:            req.ID,
		Name:          trimmed(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		EmailVerified: req.EmailVerified,
		Image:         trimmed(req.Image),
		CreatedAt:     time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		"id", user.ID,
		"email", user.Email,
	)

	return user, nil
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return nil, fmt.Errorf("%w: email: %v", domain.ErrValidation, err)
	}
	return s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
}

// UpdateUser updates the profile fields present in req
func (s *userService) UpdateUser(ctx context.Context, id string, req *socialSvc.UpdateUserRequest) (*models.User, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = trimmed(req.Name)
	}
	if req.Image != nil {
		user.Image = trimmed(req.Image)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "id", user.ID)

	return user, nil
}

// validateRegisterRequest validates a register user request
func (s *userService) validateRegisterRequest(req *socialSvc.RegisterUserRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ID, is.UUID),
		validation.Field(&req.Email,
			validation.Required,
			validation.Length(3, config.MaxEmailLength),
			is.EmailFormat,
		),
		validation.Field(&req.Name, validation.Length(0, config.MaxUserNameLength)),
		validation.Field(&req.Image, validation.Length(0, config.MaxURLLength), is.RequestURL),
	)
}

// validateUpdateRequest validates an update user request
func (s *userService) validateUpdateRequest(req *socialSvc.UpdateUserRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(0, config.MaxUserNameLength)),
		validation.Field(&req.Image, validation.Length(0, config.MaxURLLength), is.RequestURL),
	)
}
