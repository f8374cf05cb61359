// Package seed loads YAML fixtures and replays them through the services,
// so seeded data obeys the same rules as API traffic.
package seed

import (
	"fmt"
	"io"
	"os"

	"arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Fixture is the top-level seed document. Entities reference each other by key.
type Fixture struct {
	Users        []UserFixture        `yaml:"users"`
	Follows      []FollowFixture      `yaml:"follows"`
	Projects     []ProjectFixture     `yaml:"projects"`
	Interactions []InteractionFixture `yaml:"interactions"`
}

type UserFixture struct {
	Key      string `yaml:"key"`
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Image    string `yaml:"image"`
	Password string `yaml:"password"` // used only when identities are created too
}

type FollowFixture struct {
	Follower string `yaml:"follower"`
	Followed string `yaml:"followed"`
}

type PermissionsFixture struct {
	Private          bool     `yaml:"private"`
	AllowedUsers     []string `yaml:"allowed_users"` // user keys
	AllowCollaborate bool     `yaml:"allow_collaborate"`
	AllowBranch      bool     `yaml:"allow_branch"`
	AllowShare       bool     `yaml:"allow_share"`
}

type ProjectFixture struct {
	Key         string              `yaml:"key"`
	Author      string              `yaml:"author"`
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	Picture     string              `yaml:"picture"`
	Permissions *PermissionsFixture `yaml:"permissions"`
	// Posts go on the default branch
	Posts    []PostFixture   `yaml:"posts"`
	Branches []BranchFixture `yaml:"branches"`
}

type BranchFixture struct {
	Key         string              `yaml:"key"`
	Author      string              `yaml:"author"`
	Name        string              `yaml:"name"`
	Description string              `yaml:"description"`
	From        string              `yaml:"from"` // branch key, or "main" for the default branch
	Default     bool                `yaml:"default"`
	Permissions *PermissionsFixture `yaml:"permissions"`
	Posts       []PostFixture       `yaml:"posts"`
}

type PostFixture struct {
	Key     string         `yaml:"key"`
	Author  string         `yaml:"author"`
	Title   string         `yaml:"title"`
	Content string         `yaml:"content"`
	Media   []MediaFixture `yaml:"media"`
}

type MediaFixture struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type InteractionFixture struct {
	User string `yaml:"user"`
	Type string `yaml:"type"`
	// Target is "<kind>:<key>", e.g. "post:hello"
	Target string `yaml:"target"`
}

// LoadFile reads and validates a fixture file
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a fixture
func Load(r io.Reader) (*Fixture, error) {
	var fixture Fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &fixture, nil
}

func (u UserFixture) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Key, validation.Required),
		validation.Field(&u.Email, validation.Required, is.EmailFormat),
		validation.Field(&u.Image, is.RequestURL),
	)
}

func (f FollowFixture) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Follower, validation.Required),
		validation.Field(&f.Followed, validation.Required),
	)
}

func (p ProjectFixture) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Key, validation.Required),
		validation.Field(&p.Author, validation.Required),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Posts),
		validation.Field(&p.Branches),
	)
}

func (b BranchFixture) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Key, validation.Required, validation.NotIn(defaultBranchKey)),
		validation.Field(&b.Author, validation.Required),
		validation.Field(&b.Name, validation.Required),
		validation.Field(&b.Posts),
	)
}

func (p PostFixture) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Author, validation.Required),
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Media),
	)
}

func (m MediaFixture) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.URL, validation.Required, is.RequestURL),
	)
}

func (i InteractionFixture) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.User, validation.Required),
		validation.Field(&i.Type, validation.Required, validation.By(func(any) error {
			if _, ok := social.ParseInteractionType(i.Type); !ok {
				return fmt.Errorf("must be one of %v", social.InteractionTypes)
			}
			return nil
		})),
		validation.Field(&i.Target, validation.Required),
	)
}

// Validate checks every entry and that each key is defined once
func (f *Fixture) Validate() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.Users),
		validation.Field(&f.Follows),
		validation.Field(&f.Projects),
		validation.Field(&f.Interactions),
	)
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, u := range f.Users {
		if seen["user:"+u.Key] {
			return fmt.Errorf("duplicate user key %q", u.Key)
		}
		seen["user:"+u.Key] = true
	}
	for _, p := range f.Projects {
		keys := []string{"project:" + p.Key}
		posts := p.Posts
		for _, b := range p.Branches {
			keys = append(keys, "branch:"+p.Key+"/"+b.Key)
			posts = append(posts, b.Posts...)
		}
		for _, post := range posts {
			if post.Key != "" {
				keys = append(keys, "post:"+post.Key)
			}
		}
		for _, k := range keys {
			if seen[k] {
				return fmt.Errorf("duplicate key %q", k)
			}
			seen[k] = true
		}
	}
	return nil
}

func (p *PermissionsFixture) input(userIDs map[string]string) (*socialSvc.PermissionsInput, error) {
	if p == nil {
		return nil, nil
	}
	allowed := make([]string, 0, len(p.AllowedUsers))
	for _, key := range p.AllowedUsers {
		id, ok := userIDs[key]
		if !ok {
			return nil, fmt.Errorf("allowed_users: unknown user %q", key)
		}
		allowed = append(allowed, id)
	}
	return &socialSvc.PermissionsInput{
		Private:          p.Private,
		AllowedUsers:     allowed,
		AllowCollaborate: p.AllowCollaborate,
		AllowBranch:      p.AllowBranch,
		AllowShare:       p.AllowShare,
	}, nil
}
