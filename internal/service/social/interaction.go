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

// interactionService implements the InteractionService interface.
// The ledger holds at most one row per (target, user, type).
type interactionService struct {
	interactionRepo socialRepo.InteractionRepository
	userRepo        socialRepo.UserRepository
	permissions     socialSvc.PermissionService
	txManager       repositories.TransactionManager
	logger          *slog.Logger
}

// NewInteractionService creates a new interaction service
func NewInteractionService(
	interactionRepo socialRepo.InteractionRepository,
	userRepo socialRepo.UserRepository,
	permissions socialSvc.PermissionService,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) socialSvc.InteractionService {
	return &interactionService{
		interactionRepo: interactionRepo,
		userRepo:        userRepo,
		permissions:     permissions,
		txManager:       txManager,
		logger:          logger,
	}
}

// AddInteraction records the interaction once; repeating it returns the stored row.
// The target stays locked from the permission check to the insert so a concurrent
// delete cannot leave the row behind.
func (s *interactionService) AddInteraction(ctx context.Context, req *socialSvc.InteractionRequest) (*models.Interaction, error) {
	if err := validateInteractionRequest(req); err != nil {
		return nil, err
	}

	var (
		interaction *models.Interaction
		created     bool
	)
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.interactionRepo.LockTarget(txCtx, req.Target); err != nil {
			return err
		}
		if err := s.authorize(txCtx, req); err != nil {
			return err
		}

		var err error
		interaction, created, err = s.add(txCtx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logInteraction("interaction added", req)
	}

	return interaction, nil
}

// RemoveInteraction deletes the caller's row if present
func (s *interactionService) RemoveInteraction(ctx context.Context, req *socialSvc.InteractionRequest) error {
	if err := validateInteractionRequest(req); err != nil {
		return err
	}

	removed, err := s.interactionRepo.Remove(ctx, req.Target, req.UserID, req.Type)
	if err != nil {
		return err
	}

	if removed {
		s.logInteraction("interaction removed", req)
	}

	return nil
}

// ToggleInteraction removes the row when present, adds it otherwise
func (s *interactionService) ToggleInteraction(ctx context.Context, req *socialSvc.InteractionRequest) (*models.ToggleResult, error) {
	if err := validateInteractionRequest(req); err != nil {
		return nil, err
	}

	result := &models.ToggleResult{}
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.interactionRepo.LockTarget(txCtx, req.Target); err != nil {
			return err
		}

		removed, err := s.interactionRepo.Remove(txCtx, req.Target, req.UserID, req.Type)
		if err != nil {
			return err
		}

		if !removed {
			if err := s.authorize(txCtx, req); err != nil {
				return err
			}
			if _, _, err := s.add(txCtx, req); err != nil {
				return err
			}
			result.Active = true
		}

		result.Count, err = s.interactionRepo.Count(txCtx, req.Target, req.Type)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Active {
		s.logInteraction("interaction added", req)
	} else {
		s.logInteraction("interaction removed", req)
	}

	return result, nil
}

// CountByType returns the number of distinct users who recorded t on target
func (s *interactionService) CountByType(ctx context.Context, target models.Target, t models.InteractionType) (int, error) {
	if err := validateTarget(target); err != nil {
		return 0, err
	}
	if !t.Valid() {
		return 0, fmt.Errorf("%w: unknown interaction type %q", domain.ErrValidation, t)
	}
	if err := s.interactionRepo.LockTarget(ctx, target); err != nil {
		return 0, err
	}
	return s.interactionRepo.Count(ctx, target, t)
}

// Summary returns counts for all types plus the viewer's own types
func (s *interactionService) Summary(ctx context.Context, target models.Target, viewerID string) (*models.InteractionSummary, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}

	if err := s.permissions.Authorize(ctx, viewerID, target, models.ActionView); err != nil {
		return nil, err
	}

	stored, err := s.interactionRepo.CountAll(ctx, target)
	if err != nil {
		return nil, err
	}

	summary := &models.InteractionSummary{
		Target: target,
		Counts: make(map[models.InteractionType]int, len(models.InteractionTypes)),
		Mine:   []models.InteractionType{},
	}
	for _, t := range models.InteractionTypes {
		summary.Counts[t] = stored[t]
	}

	if viewerID != "" {
		mine, err := s.interactionRepo.ListTypesByUser(ctx, target, viewerID)
		if err != nil {
			return nil, err
		}
		summary.Mine = mine
	}

	return summary, nil
}

// ListUserInteractions lists a user's interactions of one type, newest first
func (s *interactionService) ListUserInteractions(ctx context.Context, userID string, t models.InteractionType, limit int) ([]models.Interaction, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown interaction type %q", domain.ErrValidation, t)
	}
	if err := validation.Validate(limit, validation.Min(0), validation.Max(config.MaxInteractionListLimit)); err != nil {
		return nil, fmt.Errorf("%w: limit: %v", domain.ErrValidation, err)
	}
	if limit == 0 {
		limit = config.DefaultInteractionListLimit
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return s.interactionRepo.ListByUser(ctx, userID, t, limit)
}

// authorize requires visibility of the target; SHARE also needs the share capability
func (s *interactionService) authorize(ctx context.Context, req *socialSvc.InteractionRequest) error {
	action := models.ActionView
	if req.Type == models.InteractionShare {
		action = models.ActionShare
	}
	return s.permissions.Authorize(ctx, req.UserID, req.Target, action)
}

func (s *interactionService) add(ctx context.Context, req *socialSvc.InteractionRequest) (*models.Interaction, bool, error) {
	interaction := &models.Interaction{
		Type:       req.Type,
		TargetKind: req.Target.Kind,
		TargetID:   req.Target.ID,
		UserID:     req.UserID,
		CreatedAt:  time.Now(),
	}

	created, err := s.interactionRepo.Add(ctx, interaction)
	if err != nil {
		return nil, false, err
	}
	return interaction, created, nil
}

func (s *interactionService) logInteraction(msg string, req *socialSvc.InteractionRequest) {
	s.logger.Info(msg,
		"type", req.Type,
		"target_kind", req.Target.Kind,
		"target_id", req.Target.ID,
		"user_id", req.UserID,
	)
}

func validateInteractionRequest(req *socialSvc.InteractionRequest) error {
	if err := validateTarget(req.Target); err != nil {
		return err
	}
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown interaction type %q", domain.ErrValidation, req.Type)
	}
	if err := validation.Validate(req.UserID, validation.Required); err != nil {
		return fmt.Errorf("%w: user: %v", domain.ErrValidation, err)
	}
	return nil
}
