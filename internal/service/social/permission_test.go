package social

import (
	"context"
	"errors"
	"testing"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
)

// Scenario C: a private branch is visible to its owner and the allow-list only
func TestPermissionService_PrivateBranchAllowList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u1 := env.user(t, "u1@example.com")
	u2 := env.user(t, "u2@example.com")
	u3 := env.user(t, "u3@example.com")

	p := env.project(t, u1.ID, "P")
	b := env.branch(t, p.ID, u1.ID, "private")
	env.setPermissions(t, branchTarget(b.ID), u1.ID, socialSvc.PermissionsInput{
		Private:      true,
		AllowedUsers: []string{u2.ID},
	})

	tests := []struct {
		name        string
		viewer      string
		wantGranted bool
		wantOwner   bool
	}{
		{"owner", u1.ID, true, true},
		{"allowed user", u2.ID, true, false},
		{"other user", u3.ID, false, false},
		{"anonymous", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := env.permissions.EvaluatePermission(ctx, tt.viewer, branchTarget(b.ID), models.ActionView)
			if tt.wantGranted {
				if err != nil {
					t.Fatalf("EvaluatePermission() error = %v", err)
				}
			} else {
				wantErr(t, err, domain.ErrPermissionDenied)
				var denied *domain.PermissionDeniedError
				if !errors.As(err, &denied) {
					t.Fatalf("error type = %T", err)
				}
				if denied.TargetID != b.ID || denied.Action != string(models.ActionView) {
					t.Errorf("denied = %+v", denied)
				}
			}
			if decision.Granted != tt.wantGranted || decision.IsOwner != tt.wantOwner {
				t.Errorf("decision = %+v", decision)
			}
			if !decision.Explicit {
				t.Error("decision should come from the stored record")
			}
		})
	}
}

// Owners are always granted every action on a private branch with an empty allow-list
func TestPermissionService_OwnerAlwaysGranted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	p := env.project(t, owner.ID, "P")
	b := env.branch(t, p.ID, owner.ID, "locked")

	env.setPermissions(t, branchTarget(b.ID), owner.ID, socialSvc.PermissionsInput{Private: true})
	env.setPermissions(t, projectTarget(p.ID), owner.ID, socialSvc.PermissionsInput{Private: true})

	others := make([]string, 5)
	for i := range others {
		others[i] = env.user(t, string(rune('a'+i))+"@example.com").ID
	}

	for _, action := range models.Actions {
		if err := env.permissions.Authorize(ctx, owner.ID, branchTarget(b.ID), action); err != nil {
			t.Errorf("owner %s: %v", action, err)
		}
		for _, viewer := range others {
			err := env.permissions.Authorize(ctx, viewer, branchTarget(b.ID), action)
			wantErr(t, err, domain.ErrPermissionDenied)
		}
	}
}

func TestPermissionService_DefaultsAndCapabilities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	guest := env.user(t, "guest@example.com")
	p := env.project(t, owner.ID, "P")
	target := branchTarget(p.DefaultBranch.ID)

	// No record: public, all capabilities
	for _, action := range models.Actions {
		decision, err := env.permissions.EvaluatePermission(ctx, guest.ID, target, action)
		if err != nil {
			t.Fatalf("default %s: %v", action, err)
		}
		if decision.Explicit {
			t.Error("no record exists; decision must not be explicit")
		}
	}

	env.setPermissions(t, target, owner.ID, socialSvc.PermissionsInput{AllowShare: true})

	tests := []struct {
		action  models.Action
		granted bool
	}{
		{models.ActionView, true},
		{models.ActionShare, true},
		{models.ActionBranch, false},
		{models.ActionCollaborate, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			err := env.permissions.Authorize(ctx, guest.ID, target, tt.action)
			if tt.granted && err != nil {
				t.Errorf("Authorize() error = %v", err)
			}
			if !tt.granted {
				wantErr(t, err, domain.ErrPermissionDenied)
			}
		})
	}

	if err := env.permissions.DeletePermissions(ctx, target, owner.ID); err != nil {
		t.Fatalf("DeletePermissions() error = %v", err)
	}
	if err := env.permissions.Authorize(ctx, guest.ID, target, models.ActionCollaborate); err != nil {
		t.Errorf("after delete: %v", err)
	}
}

func TestPermissionService_PrivateProjectHidesBranches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	guest := env.user(t, "guest@example.com")
	p := env.project(t, owner.ID, "P")

	env.setPermissions(t, projectTarget(p.ID), owner.ID, socialSvc.PermissionsInput{Private: true})

	// The branch itself has no record, but its project is private
	decision, err := env.permissions.EvaluatePermission(ctx, guest.ID, branchTarget(p.DefaultBranch.ID), models.ActionView)
	wantErr(t, err, domain.ErrPermissionDenied)
	if decision == nil || decision.Reason != "parent project is not visible" {
		t.Errorf("decision = %+v", decision)
	}

	post := env.post(t, p.DefaultBranch.ID, owner.ID, "hidden")
	_, err = env.posts.GetPost(ctx, post.ID, guest.ID)
	wantErr(t, err, domain.ErrPermissionDenied)

	decision, err = env.permissions.EvaluatePermission(ctx, guest.ID, postTarget(post.ID), models.ActionView)
	wantErr(t, err, domain.ErrPermissionDenied)
	if decision.Target.Kind != models.TargetPost {
		t.Errorf("decision target = %s, want the post", decision.Target)
	}
}

func TestPermissionService_ManagePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	friend := env.user(t, "friend@example.com")
	p := env.project(t, owner.ID, "P")
	target := projectTarget(p.ID)

	_, err := env.permissions.SetPermissions(ctx, target, friend.ID, &socialSvc.PermissionsInput{Private: true})
	wantErr(t, err, domain.ErrPermissionDenied)

	_, err = env.permissions.SetPermissions(ctx, target, owner.ID, &socialSvc.PermissionsInput{
		AllowedUsers: []string{"00000000-0000-0000-0000-000000000000"},
	})
	wantErr(t, err, domain.ErrValidation)

	_, err = env.permissions.SetPermissions(ctx, target, owner.ID, &socialSvc.PermissionsInput{
		AllowedUsers: []string{"not-a-uuid"},
	})
	wantErr(t, err, domain.ErrValidation)

	post := env.post(t, p.DefaultBranch.ID, owner.ID, "p")
	_, err = env.permissions.SetPermissions(ctx, postTarget(post.ID), owner.ID, &socialSvc.PermissionsInput{})
	wantErr(t, err, domain.ErrValidation)

	stored, err := env.permissions.SetPermissions(ctx, target, owner.ID, &socialSvc.PermissionsInput{
		Private:      true,
		AllowedUsers: []string{friend.ID, friend.ID},
	})
	if err != nil {
		t.Fatalf("SetPermissions() error = %v", err)
	}
	if len(stored.AllowedUsers) != 1 {
		t.Errorf("AllowedUsers = %v, want deduplicated", stored.AllowedUsers)
	}

	forOwner, err := env.permissions.GetPermissions(ctx, target, owner.ID)
	if err != nil {
		t.Fatalf("GetPermissions(owner) error = %v", err)
	}
	if !forOwner.Private || len(forOwner.AllowedUsers) != 1 {
		t.Errorf("owner view = %+v", forOwner)
	}

	forFriend, err := env.permissions.GetPermissions(ctx, target, friend.ID)
	if err != nil {
		t.Fatalf("GetPermissions(friend) error = %v", err)
	}
	if len(forFriend.AllowedUsers) != 0 {
		t.Errorf("allow-list leaked to non-owner: %v", forFriend.AllowedUsers)
	}

	_, err = env.permissions.EvaluatePermission(ctx, owner.ID, target, models.Action("delete"))
	wantErr(t, err, domain.ErrValidation)

	_, err = env.permissions.EvaluatePermission(ctx, owner.ID, projectTarget("00000000-0000-0000-0000-000000000000"), models.ActionView)
	wantErr(t, err, domain.ErrNotFound)
}
