package social

import (
	"log/slog"

	"arbor/internal/domain/repositories"
	socialRepo "arbor/internal/domain/repositories/social"
	socialSvc "arbor/internal/domain/services/social"
)

// SetupServices wires every social service onto one set of repositories.
// All services share the permission evaluator.
func SetupServices(
	repos *socialRepo.Repositories,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *socialSvc.Services {
	permissions := NewPermissionService(repos.Projects, repos.Branches, repos.Posts, repos.Permissions, repos.Users, txManager, logger)

	return &socialSvc.Services{
		Users:        NewUserService(repos.Users, logger),
		Follows:      NewFollowService(repos.Follows, repos.Users, logger),
		Projects:     NewProjectService(repos.Projects, repos.Branches, repos.Posts, repos.Permissions, repos.Interactions, repos.Users, permissions, txManager, logger),
		Branches:     NewBranchService(repos.Branches, repos.Posts, repos.Permissions, repos.Interactions, permissions, txManager, logger),
		Posts:        NewPostService(repos.Posts, repos.Permissions, repos.Interactions, permissions, txManager, logger),
		Media:        NewMediaService(repos.Media, repos.Posts, permissions, txManager, logger),
		Permissions:  permissions,
		Interactions: NewInteractionService(repos.Interactions, repos.Users, permissions, txManager, logger),
	}
}
