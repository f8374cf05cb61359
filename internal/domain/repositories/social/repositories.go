package social

// Repositories bundles one implementation of every social repository
type Repositories struct {
	Users        UserRepository
	Follows      FollowRepository
	Projects     ProjectRepository
	Branches     BranchRepository
	Posts        PostRepository
	Media        MediaRepository
	Permissions  PermissionsRepository
	Interactions InteractionRepository
}
