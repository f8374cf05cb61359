package memory

import socialRepo "arbor/internal/domain/repositories/social"

// NewRepositories returns every repository backed by store
func NewRepositories(store *Store) *socialRepo.Repositories {
	return &socialRepo.Repositories{
		Users:        NewUserRepository(store),
		Follows:      NewFollowRepository(store),
		Projects:     NewProjectRepository(store),
		Branches:     NewBranchRepository(store),
		Posts:        NewPostRepository(store),
		Media:        NewMediaRepository(store),
		Permissions:  NewPermissionsRepository(store),
		Interactions: NewInteractionRepository(store),
	}
}
