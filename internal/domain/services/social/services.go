package social

// Services bundles every social service, as consumed by the HTTP layer and cmd/seed
type Services struct {
	Users        UserService
	Follows      FollowService
	Projects     ProjectService
	Branches     BranchService
	Posts        PostService
	Media        MediaService
	Permissions  PermissionService
	Interactions InteractionService
}
