package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoangchien/portfolio/internal/service"
	"github.com/hoangchien/portfolio/internal/storage"
)

// PostHandler serves the blog ("blogger") endpoints.
type PostHandler struct {
	posts   *service.PostService
	uploads uploadParser
	logger  *slog.Logger
}

func NewPostHandler(posts *service.PostService, limits storage.Limits, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, uploads: newUploadParser(limits), logger: logger}
}

type postCreatedResponse struct {
	Message   string  `json:"message"`
	ID        int64   `json:"id"`
	ImagePath *string `json:"imagePath"`
	Slug      string  `json:"slug"`
}

// HandleList returns all posts, newest date first.
//
// HTTP: GET /api/blogger
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGet returns one post by slug.
//
// HTTP: GET /api/blogger/{slug}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleCreate adds a post with an optional cover image.
//
// HTTP: POST /api/blogger (admin)
// BODY: multipart/form-data with title, source, location, date, description
// and an optional "image".
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.parse(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup(r)

	image, err := h.uploads.file(r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := service.CreatePostInput{
		Title:       r.FormValue("title"),
		Source:      r.FormValue("source"),
		Location:    r.FormValue("location"),
		Date:        r.FormValue("date"),
		Description: r.FormValue("description"),
	}

	post, err := h.posts.Create(r.Context(), in, image)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, postCreatedResponse{
		Message:   "Blog post created successfully",
		ID:        post.ID,
		ImagePath: post.ImagePath,
		Slug:      post.Slug,
	})
}

// HandleDelete removes a post and its image.
//
// HTTP: DELETE /api/blogger/{id} (admin)
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.posts.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Blog post deleted successfully"})
}
