package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeAdminAPI is an in-memory identity admin API
type fakeAdminAPI struct {
	mu      sync.Mutex
	users   []AdminUser
	deleted []string
}

func (f *fakeAdminAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer service-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(listAdminUsersResponse{Users: f.users})
	})
	mux.HandleFunc("POST /admin/users", func(w http.ResponseWriter, r *http.Request) {
		var req createAdminUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode create request: %v", err)
		}
		if !req.EmailConfirm {
			t.Error("expected email_confirm")
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		user := AdminUser{ID: "id-" + req.Email, Email: req.Email, Role: "authenticated"}
		f.users = append(f.users, user)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("DELETE /admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deleted = append(f.deleted, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func TestAdminClientEnsureUser(t *testing.T) {
	api := &fakeAdminAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	client := NewAdminClient(srv.URL+"/", "service-key")
	ctx := context.Background()

	id, err := client.EnsureUser(ctx, "ada@example.com", "pw", "Ada")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	again, err := client.EnsureUser(ctx, "ADA@example.com", "pw", "Ada")
	if err != nil {
		t.Fatalf("EnsureUser again: %v", err)
	}
	if id != again {
		t.Errorf("expected existing identity %q, got %q", id, again)
	}
	if len(api.users) != 1 {
		t.Errorf("expected 1 identity, got %d", len(api.users))
	}
}

func TestAdminClientDeleteUserByEmail(t *testing.T) {
	api := &fakeAdminAPI{users: []AdminUser{{ID: "u1", Email: "ada@example.com"}}}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	client := NewAdminClient(srv.URL, "service-key")
	ctx := context.Background()

	if err := client.DeleteUserByEmail(ctx, "missing@example.com"); err != nil {
		t.Fatalf("missing identity should be a no-op: %v", err)
	}
	if err := client.DeleteUserByEmail(ctx, "ada@example.com"); err != nil {
		t.Fatalf("DeleteUserByEmail: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "u1" {
		t.Errorf("deleted = %v", api.deleted)
	}
}

func TestAdminClientBadKey(t *testing.T) {
	srv := httptest.NewServer((&fakeAdminAPI{}).handler(t))
	defer srv.Close()

	client := NewAdminClient(srv.URL, "wrong")
	_, err := client.FindUserIDByEmail(context.Background(), "ada@example.com")
	if err == nil || errors.Is(err, ErrAdminUserNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
