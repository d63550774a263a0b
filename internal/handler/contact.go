package handler

import (
	"log/slog"
	"net/http"

	"github.com/hoangchien/portfolio/internal/service"
)

// ContactHandler relays the public contact form.
type ContactHandler struct {
	contact *service.ContactService
	logger  *slog.Logger
}

func NewContactHandler(contact *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contact: contact, logger: logger}
}

// HandleSend validates the form and emails it to the owner.
//
// HTTP: POST /api/contact
// REQUEST BODY: {"name","email","subject","message"}
//
// A relay failure is a 500; nothing is queued or retried.
func (h *ContactHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var in service.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.contact.Send(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "success"})
}
