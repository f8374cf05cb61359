package social

import (
	socialRepo "arbor/internal/domain/repositories/social"
	"arbor/internal/repository/postgres"
)

// NewRepositories returns every repository on the configured pool
func NewRepositories(config *postgres.RepositoryConfig) *socialRepo.Repositories {
	return &socialRepo.Repositories{
		Users:        NewUserRepository(config),
		Follows:      NewFollowRepository(config),
		Projects:     NewProjectRepository(config),
		Branches:     NewBranchRepository(config),
		Posts:        NewPostRepository(config),
		Media:        NewMediaRepository(config),
		Permissions:  NewPermissionsRepository(config),
		Interactions: NewInteractionRepository(config),
	}
}
