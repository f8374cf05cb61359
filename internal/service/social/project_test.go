package social

import (
	"context"
	"testing"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/repository/memory"
)

func TestProjectService_CreateProjectCreatesDefaultBranch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u1@example.com")

	details, err := env.projects.CreateProject(ctx, &socialSvc.CreateProjectRequest{
		AuthorID:    u.ID,
		Name:        "  Garden  ",
		Description: strPtr("plants"),
	})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	if details.Name != "Garden" {
		t.Errorf("Name = %q, want trimmed", details.Name)
	}
	if details.DefaultBranch == nil {
		t.Fatal("expected default branch")
	}
	if details.DefaultBranch.Name != models.DefaultBranchName || !details.DefaultBranch.Default {
		t.Errorf("default branch = %+v", details.DefaultBranch)
	}

	branches, err := env.branches.ListBranches(ctx, details.ID, u.ID)
	if err != nil {
		t.Fatalf("ListBranches() error = %v", err)
	}
	if len(branches) != 1 || branches[0].ID != details.DefaultBranch.ID {
		t.Errorf("branches = %+v", branches)
	}
}

func TestProjectService_CreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "u1@example.com")

	tests := []struct {
		name    string
		req     *socialSvc.CreateProjectRequest
		wantErr error
	}{
		{"blank name", &socialSvc.CreateProjectRequest{AuthorID: u.ID, Name: "   "}, domain.ErrValidation},
		{"bad picture", &socialSvc.CreateProjectRequest{AuthorID: u.ID, Name: "p", Picture: strPtr("nope")}, domain.ErrValidation},
		{"unknown author", &socialSvc.CreateProjectRequest{AuthorID: "00000000-0000-0000-0000-000000000000", Name: "p"}, domain.ErrNotFound},
		{
			"unknown allowed user",
			&socialSvc.CreateProjectRequest{
				AuthorID:    u.ID,
				Name:        "p",
				Permissions: &socialSvc.PermissionsInput{Private: true, AllowedUsers: []string{"00000000-0000-0000-0000-000000000000"}},
			},
			domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.projects.CreateProject(context.Background(), tt.req)
			wantErr(t, err, tt.wantErr)
		})
	}

	// Failed transactions leave nothing behind
	projects, err := env.projects.ListProjectsByAuthor(context.Background(), u.ID, u.ID)
	if err != nil {
		t.Fatalf("ListProjectsByAuthor() error = %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("got %d projects after failed creates, want 0", len(projects))
	}
}

// Scenario A: moving the default flag leaves exactly one default branch
func TestProjectService_SetDefaultBranchScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u1 := env.user(t, "u1@example.com")

	p := env.project(t, u1.ID, "P")
	b1 := p.DefaultBranch
	b2 := env.branch(t, p.ID, u1.ID, "b2")

	got, err := env.branches.SetDefaultBranch(ctx, p.ID, b2.ID, u1.ID)
	if err != nil {
		t.Fatalf("SetDefaultBranch() error = %v", err)
	}
	if !got.Default || got.ID != b2.ID {
		t.Errorf("returned branch = %+v", got)
	}

	// Re-read both rows in a fresh transaction
	repo := memory.NewBranchRepository(env.store)
	err = memory.NewTransactionManager(env.store).ExecTx(ctx, func(txCtx context.Context) error {
		first, err := repo.GetByID(txCtx, b1.ID)
		if err != nil {
			return err
		}
		second, err := repo.GetByID(txCtx, b2.ID)
		if err != nil {
			return err
		}
		if first.Default {
			t.Error("B1 is still default")
		}
		if !second.Default {
			t.Error("B2 is not default")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("re-read error = %v", err)
	}
}

func TestProjectService_ExactlyOneDefaultBranch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u1@example.com")
	p := env.project(t, u.ID, "P")

	ids := []string{p.DefaultBranch.ID}
	for _, name := range []string{"a", "b", "c"} {
		ids = append(ids, env.branch(t, p.ID, u.ID, name).ID)
	}

	order := []int{2, 2, 0, 3, 1, 0}
	for _, i := range order {
		if _, err := env.branches.SetDefaultBranch(ctx, p.ID, ids[i], u.ID); err != nil {
			t.Fatalf("SetDefaultBranch(%d) error = %v", i, err)
		}

		branches, err := env.branches.ListBranches(ctx, p.ID, u.ID)
		if err != nil {
			t.Fatalf("ListBranches() error = %v", err)
		}
		defaults := 0
		for _, b := range branches {
			if b.Default {
				defaults++
				if b.ID != ids[i] {
					t.Errorf("default is %s, want %s", b.ID, ids[i])
				}
			}
		}
		if defaults != 1 {
			t.Fatalf("found %d default branches, want 1", defaults)
		}
		if branches[0].ID != ids[i] {
			t.Errorf("ListBranches does not start with the default branch")
		}
	}
}

func TestProjectService_OwnerOnlyMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")
	p := env.project(t, owner.ID, "P")

	_, err := env.projects.UpdateProject(ctx, p.ID, other.ID, &socialSvc.UpdateProjectRequest{Name: strPtr("mine")})
	wantErr(t, err, domain.ErrPermissionDenied)

	err = env.projects.DeleteProject(ctx, p.ID, other.ID)
	wantErr(t, err, domain.ErrForbidden)

	updated, err := env.projects.UpdateProject(ctx, p.ID, owner.ID, &socialSvc.UpdateProjectRequest{Name: strPtr("Renamed")})
	if err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}
	if updated.Name != "Renamed" || updated.UpdatedAt == nil {
		t.Errorf("updated = %+v", updated)
	}

	_, err = env.branches.SetDefaultBranch(ctx, p.ID, p.DefaultBranch.ID, other.ID)
	wantErr(t, err, domain.ErrPermissionDenied)
}

func TestProjectService_DeleteProjectCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u1@example.com")
	fan := env.user(t, "fan@example.com")

	p := env.project(t, u.ID, "P")
	b := env.branch(t, p.ID, u.ID, "feature")
	post := env.post(t, b.ID, u.ID, "hello")
	env.setPermissions(t, branchTarget(b.ID), u.ID, socialSvc.PermissionsInput{AllowShare: true})

	like := &socialSvc.InteractionRequest{Target: postTarget(post.ID), UserID: fan.ID, Type: models.InteractionLike}
	if _, err := env.interactions.AddInteraction(ctx, like); err != nil {
		t.Fatalf("AddInteraction() error = %v", err)
	}
	star := &socialSvc.InteractionRequest{Target: projectTarget(p.ID), UserID: fan.ID, Type: models.InteractionBookmark}
	if _, err := env.interactions.AddInteraction(ctx, star); err != nil {
		t.Fatalf("AddInteraction() error = %v", err)
	}

	if err := env.projects.DeleteProject(ctx, p.ID, u.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}

	_, err := env.projects.GetProject(ctx, p.ID, u.ID)
	wantErr(t, err, domain.ErrNotFound)
	_, err = env.branches.GetBranch(ctx, b.ID, u.ID)
	wantErr(t, err, domain.ErrNotFound)
	_, err = env.posts.GetPost(ctx, post.ID, u.ID)
	wantErr(t, err, domain.ErrNotFound)

	for _, tt := range []struct {
		target models.Target
		typ    models.InteractionType
	}{
		{postTarget(post.ID), models.InteractionLike},
		{projectTarget(p.ID), models.InteractionBookmark},
	} {
		n, err := env.interactions.CountByType(ctx, tt.target, tt.typ)
		if err != nil {
			t.Fatalf("CountByType() error = %v", err)
		}
		if n != 0 {
			t.Errorf("%s still has %d %s interactions", tt.target, n, tt.typ)
		}
	}

	bookmarks, err := env.interactions.ListUserInteractions(ctx, fan.ID, models.InteractionBookmark, 0)
	if err != nil {
		t.Fatalf("ListUserInteractions() error = %v", err)
	}
	if len(bookmarks) != 0 {
		t.Errorf("bookmarks survived project deletion: %+v", bookmarks)
	}
}

func TestProjectService_ListProjectsByAuthorHidesPrivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	friend := env.user(t, "friend@example.com")
	stranger := env.user(t, "stranger@example.com")

	env.project(t, owner.ID, "public")
	_, err := env.projects.CreateProject(ctx, &socialSvc.CreateProjectRequest{
		AuthorID:    owner.ID,
		Name:        "secret",
		Permissions: &socialSvc.PermissionsInput{Private: true, AllowedUsers: []string{friend.ID}},
	})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	tests := []struct {
		viewer string
		want   int
	}{
		{owner.ID, 2},
		{friend.ID, 2},
		{stranger.ID, 1},
		{"", 1},
	}

	for _, tt := range tests {
		projects, err := env.projects.ListProjectsByAuthor(ctx, owner.ID, tt.viewer)
		if err != nil {
			t.Fatalf("ListProjectsByAuthor(%q) error = %v", tt.viewer, err)
		}
		if len(projects) != tt.want {
			t.Errorf("viewer %q sees %d projects, want %d", tt.viewer, len(projects), tt.want)
		}
	}
}
