package social

import (
	"context"
	"testing"

	"arbor/internal/domain"
	socialSvc "arbor/internal/domain/services/social"
)

func TestBranchService_CreateBranch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	p := env.project(t, owner.ID, "P")

	b, err := env.branches.CreateBranch(ctx, &socialSvc.CreateBranchRequest{
		ProjectID:    p.ID,
		AuthorID:     owner.ID,
		Name:         "draft",
		FromBranchID: &p.DefaultBranch.ID,
	})
	if err != nil {
		t.Fatalf("CreateBranch() error = %v", err)
	}
	if b.Default {
		t.Error("new branch must not be default")
	}
	if b.ForkedFromID == nil || *b.ForkedFromID != p.DefaultBranch.ID {
		t.Errorf("ForkedFromID = %v, want %s", b.ForkedFromID, p.DefaultBranch.ID)
	}

	_, err = env.branches.CreateBranch(ctx, &socialSvc.CreateBranchRequest{
		ProjectID: p.ID,
		AuthorID:  owner.ID,
		Name:      "draft",
	})
	wantErr(t, err, domain.ErrConflict)

	other := env.project(t, owner.ID, "Other")
	_, err = env.branches.CreateBranch(ctx, &socialSvc.CreateBranchRequest{
		ProjectID:    p.ID,
		AuthorID:     owner.ID,
		Name:         "cross",
		FromBranchID: &other.DefaultBranch.ID,
	})
	wantErr(t, err, domain.ErrValidation)
}

func TestBranchService_CreateBranchRequiresBranchCapability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	guest := env.user(t, "guest@example.com")
	p := env.project(t, owner.ID, "P")

	req := &socialSvc.CreateBranchRequest{ProjectID: p.ID, AuthorID: guest.ID, Name: "guest-work"}

	// No permissions record: every capability is on
	if _, err := env.branches.CreateBranch(ctx, req); err != nil {
		t.Fatalf("CreateBranch() with default permissions error = %v", err)
	}

	env.setPermissions(t, projectTarget(p.ID), owner.ID, socialSvc.PermissionsInput{AllowBranch: false})

	req.Name = "guest-work-2"
	_, err := env.branches.CreateBranch(ctx, req)
	wantErr(t, err, domain.ErrPermissionDenied)

	// Owners ignore capability flags
	req.AuthorID = owner.ID
	if _, err := env.branches.CreateBranch(ctx, req); err != nil {
		t.Fatalf("owner CreateBranch() error = %v", err)
	}
}

func TestBranchService_DeleteDefaultBranch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	p := env.project(t, owner.ID, "P")
	main := p.DefaultBranch
	next := env.branch(t, p.ID, owner.ID, "next")

	err := env.branches.DeleteBranch(ctx, main.ID, owner.ID, "")
	wantErr(t, err, domain.ErrConflict)

	err = env.branches.DeleteBranch(ctx, main.ID, owner.ID, main.ID)
	wantErr(t, err, domain.ErrValidation)

	if err := env.branches.DeleteBranch(ctx, main.ID, owner.ID, next.ID); err != nil {
		t.Fatalf("DeleteBranch() with promote error = %v", err)
	}

	def, err := env.branches.GetDefaultBranch(ctx, p.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetDefaultBranch() error = %v", err)
	}
	if def.ID != next.ID {
		t.Errorf("default = %s, want %s", def.ID, next.ID)
	}

	_, err = env.branches.GetBranch(ctx, main.ID, owner.ID)
	wantErr(t, err, domain.ErrNotFound)
}

func TestBranchService_DeleteBranchKeepsSiblings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	contributor := env.user(t, "contributor@example.com")
	p := env.project(t, owner.ID, "P")

	side := env.branch(t, p.ID, contributor.ID, "side")
	fork, err := env.branches.CreateBranch(ctx, &socialSvc.CreateBranchRequest{
		ProjectID:    p.ID,
		AuthorID:     owner.ID,
		Name:         "fork",
		FromBranchID: &side.ID,
	})
	if err != nil {
		t.Fatalf("CreateBranch() error = %v", err)
	}
	mainPost := env.post(t, p.DefaultBranch.ID, owner.ID, "stays")

	// The branch author may delete their own non-default branch
	if err := env.branches.DeleteBranch(ctx, side.ID, contributor.ID, ""); err != nil {
		t.Fatalf("DeleteBranch() error = %v", err)
	}

	got, err := env.branches.GetBranch(ctx, fork.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetBranch(fork) error = %v", err)
	}
	if got.ForkedFromID != nil {
		t.Errorf("ForkedFromID = %v, want nil after source deletion", *got.ForkedFromID)
	}
	if _, err := env.posts.GetPost(ctx, mainPost.ID, owner.ID); err != nil {
		t.Errorf("post on default branch lost: %v", err)
	}
}

func TestBranchService_UpdateBranch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	stranger := env.user(t, "stranger@example.com")
	p := env.project(t, owner.ID, "P")
	b := env.branch(t, p.ID, owner.ID, "draft")

	_, err := env.branches.UpdateBranch(ctx, b.ID, stranger.ID, &socialSvc.UpdateBranchRequest{Name: strPtr("mine")})
	wantErr(t, err, domain.ErrPermissionDenied)

	_, err = env.branches.UpdateBranch(ctx, b.ID, owner.ID, &socialSvc.UpdateBranchRequest{Name: strPtr("main")})
	wantErr(t, err, domain.ErrConflict)

	updated, err := env.branches.UpdateBranch(ctx, b.ID, owner.ID, &socialSvc.UpdateBranchRequest{
		Name:        strPtr("final"),
		Description: strPtr("ready"),
	})
	if err != nil {
		t.Fatalf("UpdateBranch() error = %v", err)
	}
	if updated.Name != "final" || updated.UpdatedAt == nil {
		t.Errorf("updated = %+v", updated)
	}
}

func TestBranchService_SetDefaultBranchForeignBranch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	p := env.project(t, owner.ID, "P")
	q := env.project(t, owner.ID, "Q")

	_, err := env.branches.SetDefaultBranch(ctx, p.ID, q.DefaultBranch.ID, owner.ID)
	wantErr(t, err, domain.ErrNotFound)

	// Setting the current default again is a no-op
	got, err := env.branches.SetDefaultBranch(ctx, p.ID, p.DefaultBranch.ID, owner.ID)
	if err != nil {
		t.Fatalf("SetDefaultBranch() error = %v", err)
	}
	if !got.Default {
		t.Error("expected default branch")
	}
}
