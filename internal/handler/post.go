package handler

import (
	"log/slog"
	"net/http"

	"arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/httputil"
)

// ContentSanitizer strips unsafe markup from user-supplied post content
type ContentSanitizer interface {
	Sanitize(html string) string
}

// PostHandler handles post and media HTTP requests
type PostHandler struct {
	postService  socialSvc.PostService
	mediaService socialSvc.MediaService
	sanitizer    ContentSanitizer
	logger       *slog.Logger
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService socialSvc.PostService, mediaService socialSvc.MediaService, sanitizer ContentSanitizer, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		postService:  postService,
		mediaService: mediaService,
		sanitizer:    sanitizer,
		logger:       logger,
	}
}

// postResponse is the stored post plus content_html, its content made safe to embed
type postResponse struct {
	*social.Post
	ContentHTML *string `json:"content_html,omitempty"`
}

func (h *PostHandler) render(post *social.Post) postResponse {
	resp := postResponse{Post: post}
	if post.Content != nil {
		html := h.sanitizer.Sanitize(*post.Content)
		resp.ContentHTML = &html
	}
	return resp
}

// editPostRequest distinguishes an absent content field from an explicit null
type editPostRequest struct {
	Title   *string                 `json:"title"`
	Content httputil.OptionalString `json:"content"`
}

// CreatePost POST /api/branches/{id}/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	branchID, ok := PathParam(w, r, "id", "Branch ID")
	if !ok {
		return
	}

	var req socialSvc.CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.BranchID = branchID
	req.AuthorID = userID

	post, err := h.postService.CreatePost(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, h.render(post))
}

// ListPosts returns the branch's posts, newest first
// GET /api/branches/{id}/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	branchID, ok := PathParam(w, r, "id", "Branch ID")
	if !ok {
		return
	}

	posts, err := h.postService.ListPosts(r.Context(), branchID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	resp := make([]postResponse, len(posts))
	for i := range posts {
		resp[i] = h.render(&posts[i])
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// GetPost GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	post, err := h.postService.GetPost(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, h.render(post))
}

// EditPost updates title and/or content. "content": null clears the body.
// PATCH /api/posts/{id}
func (h *PostHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	var body editPostRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req := socialSvc.EditPostRequest{
		Title: body.Title,
		Content: socialSvc.OptionalContent{
			Present: body.Content.Present,
			Value:   body.Content.Value,
		},
	}

	post, err := h.postService.EditPost(r.Context(), id, userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, h.render(post))
}

// DeletePost DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	if err := h.postService.DeletePost(r.Context(), id, userID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// AddMedia POST /api/posts/{id}/media
func (h *PostHandler) AddMedia(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	postID, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	var req socialSvc.AddMediaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.PostID = postID
	req.ViewerID = userID

	media, err := h.mediaService.AddMedia(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, media)
}

// ListMedia GET /api/posts/{id}/media
func (h *PostHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	postID, ok := PathParam(w, r, "id", "Post ID")
	if !ok {
		return
	}

	media, err := h.mediaService.ListMedia(r.Context(), postID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, media)
}

// GetMedia GET /api/media/{id}
func (h *PostHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Media ID")
	if !ok {
		return
	}

	media, err := h.mediaService.GetMedia(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, media)
}

// DeleteMedia DELETE /api/media/{id}
func (h *PostHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Media ID")
	if !ok {
		return
	}

	if err := h.mediaService.DeleteMedia(r.Context(), id, userID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
