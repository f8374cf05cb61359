package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
)

// defaultBranchKey names the branch every project is created with
const defaultBranchKey = "main"

// IdentityFunc returns the id a fixture user should be registered under.
// An empty id lets the user service generate one.
type IdentityFunc func(ctx context.Context, user UserFixture) (string, error)

// Result maps fixture keys to the ids that were created
type Result struct {
	Users    map[string]string
	Projects map[string]string
	Branches map[string]string // "<project>/<branch>"
	Posts    map[string]string
}

// Seeder replays a fixture through the services
type Seeder struct {
	services *socialSvc.Services
	identity IdentityFunc
	logger   *slog.Logger
}

// NewSeeder creates a seeder. identity may be nil.
func NewSeeder(services *socialSvc.Services, identity IdentityFunc, logger *slog.Logger) *Seeder {
	return &Seeder{
		services: services,
		identity: identity,
		logger:   logger,
	}
}

// Apply creates users, follows, projects (with branches, posts and media) and
// interactions, in that order. It stops at the first error.
func (s *Seeder) Apply(ctx context.Context, fixture *Fixture) (*Result, error) {
	res := &Result{
		Users:    map[string]string{},
		Projects: map[string]string{},
		Branches: map[string]string{},
		Posts:    map[string]string{},
	}

	for _, u := range fixture.Users {
		if err := s.seedUser(ctx, res, u); err != nil {
			return nil, fmt.Errorf("user %s: %w", u.Key, err)
		}
	}

	for _, f := range fixture.Follows {
		follower, err := res.user(f.Follower)
		if err != nil {
			return nil, err
		}
		followed, err := res.user(f.Followed)
		if err != nil {
			return nil, err
		}
		if _, err := s.services.Follows.Follow(ctx, follower, followed); err != nil {
			return nil, fmt.Errorf("follow %s -> %s: %w", f.Follower, f.Followed, err)
		}
	}

	for _, p := range fixture.Projects {
		if err := s.seedProject(ctx, res, p); err != nil {
			return nil, fmt.Errorf("project %s: %w", p.Key, err)
		}
	}

	for _, i := range fixture.Interactions {
		if err := s.seedInteraction(ctx, res, i); err != nil {
			return nil, fmt.Errorf("interaction %s %s on %s: %w", i.User, i.Type, i.Target, err)
		}
	}

	s.logger.Info("fixture applied",
		"users", len(res.Users),
		"projects", len(res.Projects),
		"branches", len(res.Branches),
		"posts", len(res.Posts),
		"interactions", len(fixture.Interactions),
	)

	return res, nil
}

func (s *Seeder) seedUser(ctx context.Context, res *Result, u UserFixture) error {
	req := &socialSvc.RegisterUserRequest{
		Email: u.Email,
		Name:  optional(u.Name),
		Image: optional(u.Image),
	}
	if s.identity != nil {
		id, err := s.identity(ctx, u)
		if err != nil {
			return err
		}
		req.ID = id
	}

	user, err := s.services.Users.RegisterUser(ctx, req)
	if err != nil {
		return err
	}
	res.Users[u.Key] = user.ID
	return nil
}

func (s *Seeder) seedProject(ctx context.Context, res *Result, p ProjectFixture) error {
	authorID, err := res.user(p.Author)
	if err != nil {
		return err
	}
	perms, err := p.Permissions.input(res.Users)
	if err != nil {
		return err
	}

	project, err := s.services.Projects.CreateProject(ctx, &socialSvc.CreateProjectRequest{
		AuthorID:    authorID,
		Name:        p.Name,
		Description: optional(p.Description),
		Picture:     optional(p.Picture),
		Permissions: perms,
	})
	if err != nil {
		return err
	}
	res.Projects[p.Key] = project.ID
	res.Branches[p.Key+"/"+defaultBranchKey] = project.DefaultBranch.ID

	if err := s.seedPosts(ctx, res, project.DefaultBranch.ID, p.Posts); err != nil {
		return err
	}

	for _, b := range p.Branches {
		if err := s.seedBranch(ctx, res, p.Key, project.ID, authorID, b); err != nil {
			return fmt.Errorf("branch %s: %w", b.Key, err)
		}
	}
	return nil
}

func (s *Seeder) seedBranch(ctx context.Context, res *Result, projectKey, projectID, ownerID string, b BranchFixture) error {
	authorID, err := res.user(b.Author)
	if err != nil {
		return err
	}

	req := &socialSvc.CreateBranchRequest{
		ProjectID:   projectID,
		AuthorID:    authorID,
		Name:        b.Name,
		Description: optional(b.Description),
	}
	if b.From != "" {
		fromID, ok := res.Branches[projectKey+"/"+b.From]
		if !ok {
			return fmt.Errorf("unknown source branch %q", b.From)
		}
		req.FromBranchID = &fromID
	}

	branch, err := s.services.Branches.CreateBranch(ctx, req)
	if err != nil {
		return err
	}
	res.Branches[projectKey+"/"+b.Key] = branch.ID

	target := social.Target{Kind: social.TargetBranch, ID: branch.ID}
	perms, err := b.Permissions.input(res.Users)
	if err != nil {
		return err
	}
	if perms != nil {
		if _, err := s.services.Permissions.SetPermissions(ctx, target, authorID, perms); err != nil {
			return err
		}
	}

	if err := s.seedPosts(ctx, res, branch.ID, b.Posts); err != nil {
		return err
	}

	if b.Default {
		// Only the project owner may move the default
		if _, err := s.services.Branches.SetDefaultBranch(ctx, projectID, branch.ID, ownerID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedPosts(ctx context.Context, res *Result, branchID string, posts []PostFixture) error {
	for _, p := range posts {
		authorID, err := res.user(p.Author)
		if err != nil {
			return err
		}

		post, err := s.services.Posts.CreatePost(ctx, &socialSvc.CreatePostRequest{
			BranchID: branchID,
			AuthorID: authorID,
			Title:    p.Title,
			Content:  optional(p.Content),
		})
		if err != nil {
			return fmt.Errorf("post %q: %w", p.Title, err)
		}
		if p.Key != "" {
			res.Posts[p.Key] = post.ID
		}

		for _, m := range p.Media {
			if _, err := s.services.Media.AddMedia(ctx, &socialSvc.AddMediaRequest{
				PostID:   post.ID,
				ViewerID: authorID,
				Name:     m.Name,
				URL:      m.URL,
			}); err != nil {
				return fmt.Errorf("media %q: %w", m.Name, err)
			}
		}
	}
	return nil
}

func (s *Seeder) seedInteraction(ctx context.Context, res *Result, i InteractionFixture) error {
	userID, err := res.user(i.User)
	if err != nil {
		return err
	}
	target, err := res.target(i.Target)
	if err != nil {
		return err
	}
	t, _ := social.ParseInteractionType(i.Type)

	_, err = s.services.Interactions.AddInteraction(ctx, &socialSvc.InteractionRequest{
		Target: target,
		UserID: userID,
		Type:   t,
	})
	return err
}

func (r *Result) user(key string) (string, error) {
	id, ok := r.Users[key]
	if !ok {
		return "", fmt.Errorf("unknown user %q", key)
	}
	return id, nil
}

// target resolves "<kind>:<key>"; branch keys are "<project>/<branch>"
func (r *Result) target(ref string) (social.Target, error) {
	kindStr, key, ok := strings.Cut(ref, ":")
	if !ok {
		return social.Target{}, fmt.Errorf("target %q must be <kind>:<key>", ref)
	}
	kind, ok := social.ParseTargetKind(kindStr)
	if !ok {
		return social.Target{}, fmt.Errorf("target %q: unknown kind", ref)
	}

	var ids map[string]string
	switch kind {
	case social.TargetProject:
		ids = r.Projects
	case social.TargetBranch:
		ids = r.Branches
	case social.TargetPost:
		ids = r.Posts
	}

	id, ok := ids[key]
	if !ok {
		return social.Target{}, fmt.Errorf("target %q: unknown key", ref)
	}
	return social.Target{Kind: kind, ID: id}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
