package handler

import (
	"log/slog"
	"net/http"

	"github.com/hoangchien/portfolio/internal/service"
	"github.com/hoangchien/portfolio/internal/storage"
)

// AboutHandler serves the owner profile.
type AboutHandler struct {
	about   *service.AboutService
	uploads uploadParser
	logger  *slog.Logger
}

func NewAboutHandler(about *service.AboutService, limits storage.Limits, logger *slog.Logger) *AboutHandler {
	return &AboutHandler{about: about, uploads: newUploadParser(limits), logger: logger}
}

type updateAboutResponse struct {
	Message   string  `json:"message"`
	AvatarURL *string `json:"avatarUrl"`
}

// HandleGet returns the most recent profile.
//
// HTTP: GET /api/about
func (h *AboutHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.about.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdate overwrites the profile text and optionally the avatar.
//
// HTTP: PUT /api/about (admin)
// BODY: multipart/form-data with id, name, job, intro, quote, description
// and an optional "avatar" image.
func (h *AboutHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.parse(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup(r)

	avatar, err := h.uploads.file(r, "avatar")
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := service.UpdateAboutInput{
		ID:          formInt(r, "id"),
		Name:        r.FormValue("name"),
		Job:         r.FormValue("job"),
		Intro:       r.FormValue("intro"),
		Quote:       r.FormValue("quote"),
		Description: r.FormValue("description"),
	}

	profile, err := h.about.Update(r.Context(), in, avatar)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updateAboutResponse{
		Message:   "About updated successfully",
		AvatarURL: profile.Avatar,
	})
}
