package social

import (
	"context"

	"arbor/internal/domain/models/social"
)

// CreatePostRequest represents a request to create a post
type CreatePostRequest struct {
	BranchID string  `json:"-"`
	AuthorID string  `json:"-"`
	Title    string  `json:"title"`
	Content  *string `json:"content"`
}

// OptionalContent tracks tri-state semantics for content updates.
//   - Present=false: leave unchanged
//   - Present=true, Value=nil: clear
//   - Present=true, Value!=nil: set
type OptionalContent struct {
	Present bool
	Value   *string
}

// EditPostRequest represents a partial post update
type EditPostRequest struct {
	Title   *string
	Content OptionalContent
}

// AddMediaRequest attaches a media reference to a post
type AddMediaRequest struct {
	PostID   string `json:"-"`
	ViewerID string `json:"-"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

// PostService defines business logic operations for posts
type PostService interface {
	CreatePost(ctx context.Context, req *CreatePostRequest) (*social.Post, error)

	GetPost(ctx context.Context, id, viewerID string) (*social.Post, error)

	// ListPosts returns the posts of a branch, newest first
	ListPosts(ctx context.Context, branchID, viewerID string) ([]social.Post, error)

	// EditPost is restricted to the post author and the branch/project owners
	EditPost(ctx context.Context, id, viewerID string, req *EditPostRequest) (*social.Post, error)

	// DeletePost cascades to media and interactions
	DeletePost(ctx context.Context, id, viewerID string) error
}

// MediaService manages post attachments
type MediaService interface {
	AddMedia(ctx context.Context, req *AddMediaRequest) (*social.PostMedia, error)

	GetMedia(ctx context.Context, id, viewerID string) (*social.PostMedia, error)

	ListMedia(ctx context.Context, postID, viewerID string) ([]social.PostMedia, error)

	DeleteMedia(ctx context.Context, id, viewerID string) error
}
