package handler

import (
	"log/slog"
	"net/http"

	"arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
)

// routeSegment maps a target kind to its URL collection
var routeSegment = map[social.TargetKind]string{
	social.TargetProject: "projects",
	social.TargetBranch:  "branches",
	social.TargetPost:    "posts",
}

// NewRouter registers every route on a new ServeMux (Go 1.22+ patterns).
// store may be nil when there is nothing to health-check.
func NewRouter(svc *socialSvc.Services, sanitizer ContentSanitizer, store Pinger, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	userHandler := NewUserHandler(svc.Users, logger)
	followHandler := NewFollowHandler(svc.Follows, logger)
	projectHandler := NewProjectHandler(svc.Projects, logger)
	branchHandler := NewBranchHandler(svc.Branches, logger)
	postHandler := NewPostHandler(svc.Posts, svc.Media, sanitizer, logger)

	// Health check
	mux.HandleFunc("GET /health", HealthCheck(store))

	// User routes (the literal "me" segment takes precedence over {id})
	mux.HandleFunc("GET /api/users", userHandler.FindUser)
	mux.HandleFunc("POST /api/users/me", userHandler.RegisterMe)
	mux.HandleFunc("GET /api/users/me", userHandler.GetMe)
	mux.HandleFunc("PATCH /api/users/me", userHandler.UpdateMe)
	mux.HandleFunc("GET /api/users/{id}", userHandler.GetUser)
	mux.HandleFunc("GET /api/users/{id}/projects", projectHandler.ListUserProjects)

	// Follow routes
	mux.HandleFunc("PUT /api/users/{id}/follow", followHandler.Follow)
	mux.HandleFunc("DELETE /api/users/{id}/follow", followHandler.Unfollow)
	mux.HandleFunc("GET /api/users/{id}/follow", followHandler.IsFollowing)
	mux.HandleFunc("GET /api/users/{id}/followers", followHandler.ListFollowers)
	mux.HandleFunc("GET /api/users/{id}/following", followHandler.ListFollowing)
	mux.HandleFunc("GET /api/users/{id}/follow-counts", followHandler.Counts)

	// Project routes
	mux.HandleFunc("POST /api/projects", projectHandler.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)

	// Branch routes
	mux.HandleFunc("GET /api/projects/{id}/branches", branchHandler.ListBranches)
	mux.HandleFunc("POST /api/projects/{id}/branches", branchHandler.CreateBranch)
	mux.HandleFunc("GET /api/projects/{id}/default-branch", branchHandler.GetDefaultBranch)
	mux.HandleFunc("PUT /api/projects/{id}/default-branch", branchHandler.SetDefaultBranch)
	mux.HandleFunc("GET /api/branches/{id}", branchHandler.GetBranch)
	mux.HandleFunc("PATCH /api/branches/{id}", branchHandler.UpdateBranch)
	mux.HandleFunc("DELETE /api/branches/{id}", branchHandler.DeleteBranch)

	// Post routes
	mux.HandleFunc("GET /api/branches/{id}/posts", postHandler.ListPosts)
	mux.HandleFunc("POST /api/branches/{id}/posts", postHandler.CreatePost)
	mux.HandleFunc("GET /api/posts/{id}", postHandler.GetPost)
	mux.HandleFunc("PATCH /api/posts/{id}", postHandler.EditPost)
	mux.HandleFunc("DELETE /api/posts/{id}", postHandler.DeletePost)

	// Media routes
	mux.HandleFunc("GET /api/posts/{id}/media", postHandler.ListMedia)
	mux.HandleFunc("POST /api/posts/{id}/media", postHandler.AddMedia)
	mux.HandleFunc("GET /api/media/{id}", postHandler.GetMedia)
	mux.HandleFunc("DELETE /api/media/{id}", postHandler.DeleteMedia)

	// Permission routes (projects and branches)
	for _, kind := range []social.TargetKind{social.TargetProject, social.TargetBranch} {
		h := NewPermissionHandler(kind, svc.Permissions, logger)
		base := "/api/" + routeSegment[kind] + "/{id}/permissions"
		mux.HandleFunc("GET "+base, h.GetPermissions)
		mux.HandleFunc("PUT "+base, h.SetPermissions)
		mux.HandleFunc("DELETE "+base, h.DeletePermissions)
		mux.HandleFunc("GET "+base+"/check", h.CheckPermission)
	}

	// Interaction routes (posts, branches and projects)
	for _, kind := range []social.TargetKind{social.TargetPost, social.TargetBranch, social.TargetProject} {
		h := NewInteractionHandler(kind, svc.Interactions, logger)
		base := "/api/" + routeSegment[kind] + "/{id}/interactions"
		mux.HandleFunc("GET "+base, h.Summary)
		mux.HandleFunc("PUT "+base+"/{type}", h.Add)
		mux.HandleFunc("DELETE "+base+"/{type}", h.Remove)
		mux.HandleFunc("POST "+base+"/{type}/toggle", h.Toggle)
	}
	mux.HandleFunc("GET /api/users/me/interactions", NewInteractionHandler("", svc.Interactions, logger).ListMine)

	return mux
}
