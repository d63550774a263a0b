package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/service"
	"github.com/hoangchien/portfolio/internal/storage"
)

// AlbumHandler serves photo albums.
type AlbumHandler struct {
	albums  *service.AlbumService
	uploads uploadParser
	logger  *slog.Logger
}

func NewAlbumHandler(albums *service.AlbumService, limits storage.Limits, logger *slog.Logger) *AlbumHandler {
	return &AlbumHandler{albums: albums, uploads: newUploadParser(limits), logger: logger}
}

type albumsResponse struct {
	Albums []model.PhotoAlbum `json:"albums"`
}

type photosResponse struct {
	Photos []model.Photo `json:"photos"`
}

type albumCreatedResponse struct {
	Message string `json:"message"`
	AlbumID int64  `json:"albumId"`
	Slug    string `json:"slug"`
}

// HandleList returns every album with its photos.
//
// HTTP: GET /api/photo-albums
func (h *AlbumHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	albums, err := h.albums.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, albumsResponse{Albums: albums})
}

// HandleGet returns one album by slug.
//
// HTTP: GET /api/photo-albums/{slug}
func (h *AlbumHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	album, err := h.albums.GetBySlug(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// HandlePhotos returns the photos of one album.
//
// HTTP: GET /api/photo-albums/{id}/photos
func (h *AlbumHandler) HandlePhotos(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	photos, err := h.albums.Photos(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photosResponse{Photos: photos})
}

// HandleUpload creates an album from a multipart form.
//
// HTTP: POST /api/upload-photos (admin)
// BODY: title, description, location, date (YYYY-MM-DD) and 1..N "photos".
func (h *AlbumHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.parse(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup(r)

	photos, err := h.uploads.files(r, "photos")
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := service.CreateAlbumInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Date:        r.FormValue("date"),
	}

	album, err := h.albums.Create(r.Context(), in, photos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, albumCreatedResponse{
		Message: "Album uploaded successfully",
		AlbumID: album.ID,
		Slug:    album.Slug,
	})
}

// HandleDelete removes an album, its photo rows and the stored images.
//
// HTTP: DELETE /api/photo-albums/{id} (admin)
func (h *AlbumHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.albums.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Album deleted successfully"})
}
