package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/service"
)

// ProjectHandler serves the projects list.
type ProjectHandler struct {
	projects *service.ProjectService
	logger   *slog.Logger
}

func NewProjectHandler(projects *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// HandleList returns all projects, newest first.
//
// HTTP: GET /api/projects[?enrich=true]
//
// With enrich=true each project carries "languages" and "updatedAt" from
// the source host when the lookup succeeds.
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	enrich := false
	if raw := r.URL.Query().Get("enrich"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, apperror.ValidationFailed("enrich", "enrich must be true or false"))
			return
		}
		enrich = v
	}

	projects, err := h.projects.List(r.Context(), enrich)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// HandleCreate adds a project.
//
// HTTP: POST /api/projects (admin)
// REQUEST BODY: {"name","owner","title","description","githubLink"}
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.projects.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Message: "Project created successfully", ID: p.ID})
}

// HandleDelete removes a project.
//
// HTTP: DELETE /api/projects/{id} (admin)
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.projects.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Project deleted successfully"})
}
