package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"
)

func seedUser(t *testing.T, store *Store, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email}
	if err := NewUserRepository(store).Create(context.Background(), u); err != nil {
		t.Fatalf("Create user error = %v", err)
	}
	return u
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	store := NewStore()
	tm := NewTransactionManager(store)
	users := NewUserRepository(store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(txCtx context.Context) error {
		if err := users.Create(txCtx, &models.User{Email: "a@example.com"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ExecTx() error = %v, want boom", err)
	}

	_, err = users.GetByEmail(ctx, "a@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("user survived rollback: err = %v", err)
	}
}

func TestTransactionManager_NestedJoinsOuter(t *testing.T) {
	store := NewStore()
	tm := NewTransactionManager(store)
	users := NewUserRepository(store)
	ctx := context.Background()

	err := tm.ExecTx(ctx, func(txCtx context.Context) error {
		return tm.ExecTx(txCtx, func(inner context.Context) error {
			return users.Create(inner, &models.User{Email: "nested@example.com"})
		})
	})
	if err != nil {
		t.Fatalf("ExecTx() error = %v", err)
	}

	if _, err := users.GetByEmail(ctx, "nested@example.com"); err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
}

func TestBranchRepository_SingleDefault(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	u := seedUser(t, store, "owner@example.com")

	project := &models.Project{Name: "P", AuthorID: u.ID}
	if err := NewProjectRepository(store).Create(ctx, project); err != nil {
		t.Fatalf("Create project error = %v", err)
	}

	branches := NewBranchRepository(store)
	if err := branches.Create(ctx, &models.Branch{Name: "main", Default: true, ProjectID: project.ID, AuthorID: u.ID}); err != nil {
		t.Fatalf("Create main error = %v", err)
	}

	err := branches.Create(ctx, &models.Branch{Name: "second", Default: true, ProjectID: project.ID, AuthorID: u.ID})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second default error = %v, want conflict", err)
	}

	_, err = branches.LockByProject(ctx, project.ID)
	if err == nil {
		t.Fatal("LockByProject outside a transaction should fail")
	}
}

func TestInteractionRepository_ListByUserOrderAndLimit(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	u := seedUser(t, store, "reader@example.com")
	repo := NewInteractionRepository(store)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"p1", "p2", "p3"} {
		created, err := repo.Add(ctx, &models.Interaction{
			Type:       models.InteractionBookmark,
			TargetKind: models.TargetPost,
			TargetID:   id,
			UserID:     u.ID,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil || !created {
			t.Fatalf("Add(%s) = %v, %v", id, created, err)
		}
	}

	list, err := repo.ListByUser(ctx, u.ID, models.InteractionBookmark, 2)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(list) != 2 || list[0].TargetID != "p3" || list[1].TargetID != "p2" {
		t.Errorf("list = %+v, want p3, p2", list)
	}

	if err := repo.DeleteByTargets(ctx, models.TargetPost, []string{"p3"}); err != nil {
		t.Fatalf("DeleteByTargets() error = %v", err)
	}
	n, err := repo.Count(ctx, models.Target{Kind: models.TargetPost, ID: "p3"}, models.InteractionBookmark)
	if err != nil || n != 0 {
		t.Errorf("Count() = %d, %v, want 0", n, err)
	}
}
