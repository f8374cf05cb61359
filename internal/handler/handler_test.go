package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/middleware"
	"arbor/internal/repository/memory"
	"arbor/internal/service/sanitizer"
	socialService "arbor/internal/service/social"

	"github.com/google/uuid"
)

// newTestServer serves the full router on a memory store with dev header auth
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	svc := socialService.SetupServices(memory.NewRepositories(store), memory.NewTransactionManager(store), logger)

	var h http.Handler = NewRouter(svc, sanitizer.NewHTMLSanitizer(), nil, logger)
	h = middleware.AuthMiddleware(middleware.DevUser(), logger)(h)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t      *testing.T
	srv    *httptest.Server
	userID string
}

// do sends body as JSON and decodes the response into out when non-nil
func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.srv.URL+path, reader)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	if c.userID != "" {
		req.Header.Set(middleware.DevUserHeader, c.userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.srv.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// register creates a user with a fresh id and returns a client acting as them
func register(t *testing.T, srv *httptest.Server, email string) *client {
	t.Helper()
	c := &client{t: t, srv: srv, userID: uuid.NewString()}
	if status := c.do(http.MethodPost, "/api/users/me", map[string]string{"email": email}, nil); status != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, status)
	}
	return c
}

func createProject(t *testing.T, c *client, body map[string]any) *socialSvc.ProjectDetails {
	t.Helper()
	var project socialSvc.ProjectDetails
	if status := c.do(http.MethodPost, "/api/projects", body, &project); status != http.StatusCreated {
		t.Fatalf("create project: status %d", status)
	}
	return &project
}

func TestUserRoutes(t *testing.T) {
	srv := newTestServer(t)
	ada := register(t, srv, "ada@example.com")

	var me social.User
	if status := ada.do(http.MethodGet, "/api/users/me", nil, &me); status != http.StatusOK {
		t.Fatalf("GET me: status %d", status)
	}
	if me.ID != ada.userID || me.Email != "ada@example.com" {
		t.Errorf("unexpected profile %+v", me)
	}

	// Registering again returns the existing record with 409
	var existing social.User
	if status := ada.do(http.MethodPost, "/api/users/me", map[string]string{"email": "ada@example.com"}, &existing); status != http.StatusConflict {
		t.Fatalf("re-register: status %d", status)
	}
	if existing.ID != ada.userID {
		t.Errorf("conflict body id = %q, want %q", existing.ID, ada.userID)
	}

	anon := &client{t: t, srv: srv}
	if status := anon.do(http.MethodGet, "/api/users/me", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("anonymous GET me: status %d", status)
	}
	if status := anon.do(http.MethodGet, "/api/users/not-a-uuid", nil, nil); status != http.StatusBadRequest {
		t.Errorf("malformed id: status %d", status)
	}
	if status := anon.do(http.MethodGet, "/api/users/"+uuid.NewString(), nil, nil); status != http.StatusNotFound {
		t.Errorf("unknown user: status %d", status)
	}
}

func TestFollowRoutes(t *testing.T) {
	srv := newTestServer(t)
	ada := register(t, srv, "ada@example.com")
	bob := register(t, srv, "bob@example.com")

	var first, second social.Follow
	ada.do(http.MethodPut, "/api/users/"+bob.userID+"/follow", nil, &first)
	if status := ada.do(http.MethodPut, "/api/users/"+bob.userID+"/follow", nil, &second); status != http.StatusOK {
		t.Fatalf("repeat follow: status %d", status)
	}
	if first.ID != second.ID {
		t.Errorf("follow is not idempotent: %q vs %q", first.ID, second.ID)
	}

	var counts social.FollowCounts
	ada.do(http.MethodGet, "/api/users/"+bob.userID+"/follow-counts", nil, &counts)
	if counts.Followers != 1 || counts.Following != 0 {
		t.Errorf("counts = %+v", counts)
	}

	if status := ada.do(http.MethodPut, "/api/users/"+ada.userID+"/follow", nil, nil); status != http.StatusBadRequest {
		t.Errorf("self follow: status %d", status)
	}

	if status := ada.do(http.MethodDelete, "/api/users/"+bob.userID+"/follow", nil, nil); status != http.StatusNoContent {
		t.Fatalf("unfollow: status %d", status)
	}
	var following map[string]bool
	ada.do(http.MethodGet, "/api/users/"+bob.userID+"/follow", nil, &following)
	if following["following"] {
		t.Error("expected no edge after unfollow")
	}
}

func TestProjectAndBranchRoutes(t *testing.T) {
	srv := newTestServer(t)
	ada := register(t, srv, "ada@example.com")

	project := createProject(t, ada, map[string]any{"name": "Atlas"})
	if project.DefaultBranch == nil || project.DefaultBranch.Name != "main" || !project.DefaultBranch.Default {
		t.Fatalf("expected default branch main, got %+v", project.DefaultBranch)
	}

	var draft social.Branch
	if status := ada.do(http.MethodPost, "/api/projects/"+project.ID+"/branches", map[string]any{"name": "draft"}, &draft); status != http.StatusCreated {
		t.Fatalf("create branch: status %d", status)
	}

	// Duplicate name returns the existing branch
	var dup social.Branch
	if status := ada.do(http.MethodPost, "/api/projects/"+project.ID+"/branches", map[string]any{"name": "draft"}, &dup); status != http.StatusConflict {
		t.Fatalf("duplicate branch: status %d", status)
	}
	if dup.ID != draft.ID {
		t.Errorf("conflict body id = %q, want %q", dup.ID, draft.ID)
	}

	// The default branch cannot be deleted without a replacement
	if status := ada.do(http.MethodDelete, "/api/branches/"+project.DefaultBranch.ID, nil, nil); status != http.StatusConflict {
		t.Errorf("delete default: status %d", status)
	}
	if status := ada.do(http.MethodDelete, "/api/branches/"+project.DefaultBranch.ID+"?promote="+draft.ID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete default with promote: status %d", status)
	}

	var def social.Branch
	ada.do(http.MethodGet, "/api/projects/"+project.ID+"/default-branch", nil, &def)
	if def.ID != draft.ID {
		t.Errorf("default branch = %q, want %q", def.ID, draft.ID)
	}

	var branches []social.Branch
	ada.do(http.MethodGet, "/api/projects/"+project.ID+"/branches", nil, &branches)
	if len(branches) != 1 {
		t.Errorf("expected 1 branch, got %d", len(branches))
	}

	if status := ada.do(http.MethodDelete, "/api/projects/"+project.ID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete project: status %d", status)
	}
	if status := ada.do(http.MethodGet, "/api/branches/"+draft.ID, nil, nil); status != http.StatusNotFound {
		t.Errorf("branch after project delete: status %d", status)
	}
}

func TestPrivateProjectRoutes(t *testing.T) {
	srv := newTestServer(t)
	ada := register(t, srv, "ada@example.com")
	bob := register(t, srv, "bob@example.com")
	anon := &client{t: t, srv: srv}

	project := createProject(t, ada, map[string]any{
		"name":        "Secret",
		"permissions": map[string]any{"private": true},
	})

	var problem map[string]any
	if status := bob.do(http.MethodGet, "/api/projects/"+project.ID, nil, &problem); status != http.StatusForbidden {
		t.Fatalf("stranger GET private: status %d", status)
	}
	if problem["action"] != "view" || problem["target_kind"] != "project" {
		t.Errorf("problem extras = %v", problem)
	}

	var decision social.Decision
	if status := anon.do(http.MethodGet, "/api/projects/"+project.ID+"/permissions/check?action=view", nil, &decision); status != http.StatusOK {
		t.Fatalf("check: status %d", status)
	}
	if decision.Granted {
		t.Error("anonymous viewer must not see a private project")
	}

	// Grant bob access through the allow-list
	input := map[string]any{"private": true, "allowed_users": []string{bob.userID}}
	if status := bob.do(http.MethodPut, "/api/projects/"+project.ID+"/permissions", input, nil); status != http.StatusForbidden {
		t.Errorf("non-owner set permissions: status %d", status)
	}
	if status := ada.do(http.MethodPut, "/api/projects/"+project.ID+"/permissions", input, nil); status != http.StatusOK {
		t.Fatalf("owner set permissions: status %d", status)
	}
	if status := bob.do(http.MethodGet, "/api/projects/"+project.ID, nil, nil); status != http.StatusOK {
		t.Errorf("allowed user GET: status %d", status)
	}

	var perms social.Permissions
	bob.do(http.MethodGet, "/api/projects/"+project.ID+"/permissions", nil, &perms)
	if len(perms.AllowedUsers) != 0 {
		t.Errorf("non-owner must not see the allow-list, got %v", perms.AllowedUsers)
	}

	if status := anon.do(http.MethodPost, "/api/projects", map[string]any{"name": "x"}, nil); status != http.StatusUnauthorized {
		t.Errorf("anonymous create: status %d", status)
	}
}

func TestPostRoutes(t *testing.T) {
	srv := newTestServer(t)
	ada := register(t, srv, "ada@example.com")
	project := createProject(t, ada, map[string]any{"name": "Atlas"})
	branchPath := "/api/branches/" + project.DefaultBranch.ID

	type renderedPost struct {
		social.Post
		ContentHTML *string `json:"content_html"`
	}

	var post renderedPost
	body := map[string]any{"title": " Hello ", "content": `1 < 2 <p>hi</p><script>alert(1)</script>`}
	if status := ada.do(http.MethodPost, branchPath+"/posts", body, &post); status != http.StatusCreated {
		t.Fatalf("create post: status %d", status)
	}
	if post.Title != " Hello " || post.Content == nil || *post.Content != body["content"] {
		t.Errorf("stored post changed input: title %q content %v", post.Title, post.Content)
	}
	if post.ContentHTML == nil || strings.Contains(*post.ContentHTML, "script") ||
		!strings.Contains(*post.ContentHTML, "<p>hi</p>") || !strings.Contains(*post.ContentHTML, "&lt;") {
		t.Errorf("content_html = %v, want sanitized markup", post.ContentHTML)
	}

	var fetched renderedPost
	ada.do(http.MethodGet, "/api/posts/"+post.ID, nil, &fetched)
	if fetched.Content == nil || *fetched.Content != body["content"] || fetched.ContentHTML == nil {
		t.Errorf("get post = %+v", fetched)
	}

	// Absent content leaves it unchanged
	var edited renderedPost
	ada.do(http.MethodPatch, "/api/posts/"+post.ID, map[string]any{"title": "Hello again"}, &edited)
	if edited.Title != "Hello again" || edited.Content == nil {
		t.Errorf("title-only edit = %+v", edited)
	}

	// Explicit null clears it
	var cleared renderedPost
	ada.do(http.MethodPatch, "/api/posts/"+post.ID, map[string]any{"content": nil}, &cleared)
	if cleared.Content != nil || cleared.ContentHTML != nil {
		t.Errorf("expected content cleared, got %+v", cleared)
	}

	var media social.PostMedia
	mediaBody := map[string]string{"name": "cover", "url": "https://cdn.example.com/cover.png"}
	if status := ada.do(http.MethodPost, "/api/posts/"+post.ID+"/media", mediaBody, &media); status != http.StatusCreated {
		t.Fatalf("add media: status %d", status)
	}
	var list []social.PostMedia
	ada.do(http.MethodGet, "/api/posts/"+post.ID+"/media", nil, &list)
	if len(list) != 1 || list[0].ID != media.ID {
		t.Errorf("media list = %+v", list)
	}

	if status := ada.do(http.MethodDelete, "/api/posts/"+post.ID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete post: status %d", status)
	}
	if status := ada.do(http.MethodGet, "/api/media/"+media.ID, nil, nil); status != http.StatusNotFound {
		t.Errorf("media after post delete: status %d", status)
	}
}

func TestInteractionRoutes(t *testing.T) {
	srv := newTestServer(t)
	ada := register(t, srv, "ada@example.com")
	bob := register(t, srv, "bob@example.com")
	project := createProject(t, ada, map[string]any{"name": "Atlas"})

	var post social.Post
	ada.do(http.MethodPost, "/api/branches/"+project.DefaultBranch.ID+"/posts", map[string]any{"title": "Hi"}, &post)
	base := "/api/posts/" + post.ID + "/interactions"

	for range 2 {
		if status := bob.do(http.MethodPut, base+"/like", nil, nil); status != http.StatusOK {
			t.Fatalf("like: status %d", status)
		}
	}

	var summary social.InteractionSummary
	bob.do(http.MethodGet, base, nil, &summary)
	if summary.Counts[social.InteractionLike] != 1 {
		t.Errorf("LIKE count = %d, want 1", summary.Counts[social.InteractionLike])
	}
	if len(summary.Mine) != 1 || summary.Mine[0] != social.InteractionLike {
		t.Errorf("mine = %v", summary.Mine)
	}

	var toggled social.ToggleResult
	bob.do(http.MethodPost, base+"/LIKE/toggle", nil, &toggled)
	if toggled.Active || toggled.Count != 0 {
		t.Errorf("toggle off = %+v", toggled)
	}

	if status := bob.do(http.MethodPut, base+"/applaud", nil, nil); status != http.StatusBadRequest {
		t.Errorf("unknown type: status %d", status)
	}

	bob.do(http.MethodPut, base+"/bookmark", nil, nil)
	var mine []social.Interaction
	if status := bob.do(http.MethodGet, "/api/users/me/interactions?type=bookmark", nil, &mine); status != http.StatusOK {
		t.Fatalf("list mine: status %d", status)
	}
	if len(mine) != 1 || mine[0].TargetID != post.ID {
		t.Errorf("bookmarks = %+v", mine)
	}
	if status := bob.do(http.MethodGet, "/api/users/me/interactions?type=bookmark&limit=abc", nil, nil); status != http.StatusBadRequest {
		t.Errorf("bad limit: status %d", status)
	}
}
