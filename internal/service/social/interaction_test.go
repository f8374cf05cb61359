package social

import (
	"context"
	"testing"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
)

func TestInteractionService_AddIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u@example.com")
	p := env.project(t, u.ID, "P")
	post := env.post(t, p.DefaultBranch.ID, u.ID, "hello")

	req := &socialSvc.InteractionRequest{Target: postTarget(post.ID), UserID: u.ID, Type: models.InteractionLike}

	first, err := env.interactions.AddInteraction(ctx, req)
	if err != nil {
		t.Fatalf("AddInteraction() error = %v", err)
	}
	second, err := env.interactions.AddInteraction(ctx, req)
	if err != nil {
		t.Fatalf("second AddInteraction() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second add created row %s, want %s", second.ID, first.ID)
	}

	n, err := env.interactions.CountByType(ctx, postTarget(post.ID), models.InteractionLike)
	if err != nil {
		t.Fatalf("CountByType() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountByType() = %d, want 1", n)
	}
}

func TestInteractionService_CountsDistinctUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	p := env.project(t, owner.ID, "P")
	target := branchTarget(p.DefaultBranch.ID)

	users := []string{owner.ID}
	for _, email := range []string{"a@example.com", "b@example.com"} {
		users = append(users, env.user(t, email).ID)
	}
	for _, userID := range users {
		for _, typ := range []models.InteractionType{models.InteractionLike, models.InteractionLike, models.InteractionBookmark} {
			req := &socialSvc.InteractionRequest{Target: target, UserID: userID, Type: typ}
			if _, err := env.interactions.AddInteraction(ctx, req); err != nil {
				t.Fatalf("AddInteraction() error = %v", err)
			}
		}
	}

	summary, err := env.interactions.Summary(ctx, target, users[1])
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	want := map[models.InteractionType]int{
		models.InteractionLike:     3,
		models.InteractionShare:    0,
		models.InteractionBookmark: 3,
		models.InteractionReport:   0,
		models.InteractionHide:     0,
	}
	for typ, n := range want {
		if summary.Counts[typ] != n {
			t.Errorf("Counts[%s] = %d, want %d", typ, summary.Counts[typ], n)
		}
	}
	if len(summary.Mine) != 2 {
		t.Errorf("Mine = %v, want BOOKMARK and LIKE", summary.Mine)
	}

	if err := env.interactions.RemoveInteraction(ctx, &socialSvc.InteractionRequest{Target: target, UserID: users[1], Type: models.InteractionLike}); err != nil {
		t.Fatalf("RemoveInteraction() error = %v", err)
	}
	// Removing again is a no-op
	if err := env.interactions.RemoveInteraction(ctx, &socialSvc.InteractionRequest{Target: target, UserID: users[1], Type: models.InteractionLike}); err != nil {
		t.Fatalf("repeated RemoveInteraction() error = %v", err)
	}

	n, err := env.interactions.CountByType(ctx, target, models.InteractionLike)
	if err != nil {
		t.Fatalf("CountByType() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountByType() = %d, want 2", n)
	}
}

func TestInteractionService_Toggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u@example.com")
	p := env.project(t, u.ID, "P")
	req := &socialSvc.InteractionRequest{Target: projectTarget(p.ID), UserID: u.ID, Type: models.InteractionBookmark}

	wantStates := []models.ToggleResult{
		{Active: true, Count: 1},
		{Active: false, Count: 0},
		{Active: true, Count: 1},
	}
	for i, want := range wantStates {
		got, err := env.interactions.ToggleInteraction(ctx, req)
		if err != nil {
			t.Fatalf("toggle %d error = %v", i, err)
		}
		if *got != want {
			t.Errorf("toggle %d = %+v, want %+v", i, *got, want)
		}
	}

	bookmarks, err := env.interactions.ListUserInteractions(ctx, u.ID, models.InteractionBookmark, 10)
	if err != nil {
		t.Fatalf("ListUserInteractions() error = %v", err)
	}
	if len(bookmarks) != 1 || bookmarks[0].TargetID != p.ID {
		t.Errorf("bookmarks = %+v", bookmarks)
	}
}

func TestInteractionService_Authorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	guest := env.user(t, "guest@example.com")
	p := env.project(t, owner.ID, "P")
	post := env.post(t, p.DefaultBranch.ID, owner.ID, "hello")

	env.setPermissions(t, branchTarget(p.DefaultBranch.ID), owner.ID, socialSvc.PermissionsInput{AllowShare: false})

	tests := []struct {
		name    string
		req     *socialSvc.InteractionRequest
		wantErr error
	}{
		{
			name: "like is allowed for viewers",
			req:  &socialSvc.InteractionRequest{Target: postTarget(post.ID), UserID: guest.ID, Type: models.InteractionLike},
		},
		{
			name:    "share needs the share capability",
			req:     &socialSvc.InteractionRequest{Target: postTarget(post.ID), UserID: guest.ID, Type: models.InteractionShare},
			wantErr: domain.ErrPermissionDenied,
		},
		{
			name: "owner may share",
			req:  &socialSvc.InteractionRequest{Target: postTarget(post.ID), UserID: owner.ID, Type: models.InteractionShare},
		},
		{
			name:    "unknown type",
			req:     &socialSvc.InteractionRequest{Target: postTarget(post.ID), UserID: guest.ID, Type: "CLAP"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown target",
			req:     &socialSvc.InteractionRequest{Target: postTarget("00000000-0000-0000-0000-000000000000"), UserID: guest.ID, Type: models.InteractionLike},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.interactions.AddInteraction(ctx, tt.req)
			if tt.wantErr != nil {
				wantErr(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("AddInteraction() error = %v", err)
			}
		})
	}
}

func TestInteractionService_DeletePostPurgesLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u@example.com")
	p := env.project(t, u.ID, "P")
	post := env.post(t, p.DefaultBranch.ID, u.ID, "short-lived")

	req := &socialSvc.InteractionRequest{Target: postTarget(post.ID), UserID: u.ID, Type: models.InteractionHide}
	if _, err := env.interactions.AddInteraction(ctx, req); err != nil {
		t.Fatalf("AddInteraction() error = %v", err)
	}

	if err := env.posts.DeletePost(ctx, post.ID, u.ID); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}

	hidden, err := env.interactions.ListUserInteractions(ctx, u.ID, models.InteractionHide, 0)
	if err != nil {
		t.Fatalf("ListUserInteractions() error = %v", err)
	}
	if len(hidden) != 0 {
		t.Errorf("interactions survived post deletion: %+v", hidden)
	}
}

func TestInteractionService_MissingTargetIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u@example.com")
	const missing = "00000000-0000-0000-0000-000000000001"

	for _, target := range []models.Target{postTarget(missing), branchTarget(missing), projectTarget(missing)} {
		t.Run(string(target.Kind), func(t *testing.T) {
			_, err := env.interactions.CountByType(ctx, target, models.InteractionLike)
			wantErr(t, err, domain.ErrNotFound)

			_, err = env.interactions.Summary(ctx, target, "")
			wantErr(t, err, domain.ErrNotFound)

			_, err = env.interactions.Summary(ctx, target, u.ID)
			wantErr(t, err, domain.ErrNotFound)
		})
	}
}

func TestInteractionService_DeletedTargetRejectsWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u@example.com")
	p := env.project(t, u.ID, "P")
	post := env.post(t, p.DefaultBranch.ID, u.ID, "gone")

	if err := env.posts.DeletePost(ctx, post.ID, u.ID); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}

	req := &socialSvc.InteractionRequest{Target: postTarget(post.ID), UserID: u.ID, Type: models.InteractionLike}
	_, err := env.interactions.AddInteraction(ctx, req)
	wantErr(t, err, domain.ErrNotFound)

	_, err = env.interactions.ToggleInteraction(ctx, req)
	wantErr(t, err, domain.ErrNotFound)

	liked, err := env.interactions.ListUserInteractions(ctx, u.ID, models.InteractionLike, 0)
	if err != nil {
		t.Fatalf("ListUserInteractions() error = %v", err)
	}
	if len(liked) != 0 {
		t.Errorf("interaction recorded on deleted post: %+v", liked)
	}
}
