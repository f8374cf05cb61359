package social

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	models "arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/repository/memory"
)

// testEnv wires every service to one memory store
type testEnv struct {
	store        *memory.Store
	users        socialSvc.UserService
	follows      socialSvc.FollowService
	projects     socialSvc.ProjectService
	branches     socialSvc.BranchService
	posts        socialSvc.PostService
	media        socialSvc.MediaService
	permissions  socialSvc.PermissionService
	interactions socialSvc.InteractionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	svc := SetupServices(memory.NewRepositories(store), memory.NewTransactionManager(store), logger)

	return &testEnv{
		store:        store,
		users:        svc.Users,
		follows:      svc.Follows,
		projects:     svc.Projects,
		branches:     svc.Branches,
		posts:        svc.Posts,
		media:        svc.Media,
		permissions:  svc.Permissions,
		interactions: svc.Interactions,
	}
}

func (e *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := e.users.RegisterUser(context.Background(), &socialSvc.RegisterUserRequest{Email: email})
	if err != nil {
		t.Fatalf("RegisterUser(%s) error = %v", email, err)
	}
	return u
}

func (e *testEnv) project(t *testing.T, authorID, name string) *socialSvc.ProjectDetails {
	t.Helper()
	p, err := e.projects.CreateProject(context.Background(), &socialSvc.CreateProjectRequest{
		AuthorID: authorID,
		Name:     name,
	})
	if err != nil {
		t.Fatalf("CreateProject(%s) error = %v", name, err)
	}
	return p
}

func (e *testEnv) branch(t *testing.T, projectID, authorID, name string) *models.Branch {
	t.Helper()
	b, err := e.branches.CreateBranch(context.Background(), &socialSvc.CreateBranchRequest{
		ProjectID: projectID,
		AuthorID:  authorID,
		Name:      name,
	})
	if err != nil {
		t.Fatalf("CreateBranch(%s) error = %v", name, err)
	}
	return b
}

func (e *testEnv) post(t *testing.T, branchID, authorID, title string) *models.Post {
	t.Helper()
	p, err := e.posts.CreatePost(context.Background(), &socialSvc.CreatePostRequest{
		BranchID: branchID,
		AuthorID: authorID,
		Title:    title,
	})
	if err != nil {
		t.Fatalf("CreatePost(%s) error = %v", title, err)
	}
	return p
}

func (e *testEnv) setPermissions(t *testing.T, target models.Target, ownerID string, input socialSvc.PermissionsInput) {
	t.Helper()
	if _, err := e.permissions.SetPermissions(context.Background(), target, ownerID, &input); err != nil {
		t.Fatalf("SetPermissions(%s) error = %v", target, err)
	}
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

func strPtr(s string) *string {
	return &s
}
