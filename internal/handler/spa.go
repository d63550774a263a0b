// Package handler contains the HTTP request handlers of the portfolio API.
//
// WHAT IS A HANDLER?
// In Go, an HTTP handler is anything that implements the http.Handler interface:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Or more commonly, a function with the http.HandlerFunc signature. Chi's
// router accepts these directly.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (path params, JSON body, multipart form)
// 2. Call the service layer
// 3. Write the HTTP response (status code, headers, JSON body)
//
// Handlers do not contain business logic. Validation rules, slugs and file
// bookkeeping live in the service package.
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hoangchien/portfolio/internal/apperror"
)

// SPAHandler serves the built single-page client.
//
// HISTORY FALLBACK:
// The client routes on the URL path (/albums/ha-noi, /writing/da-lat), so a
// browser refresh asks the server for a path that is not a file. Any GET
// that does not match a real file gets index.html and the client router
// takes over. Paths under /api/ never fall back; they answer a JSON 404.
type SPAHandler struct {
	dir    string
	files  http.Handler
	logger *slog.Logger
}

// NewSPAHandler checks that dir holds an index.html.
func NewSPAHandler(dir string, logger *slog.Logger) (*SPAHandler, error) {
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return nil, fmt.Errorf("web dir %s: %w", dir, err)
	}
	return &SPAHandler{
		dir:    dir,
		files:  http.FileServer(http.Dir(dir)),
		logger: logger,
	}, nil
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, r, &apperror.AppError{Err: apperror.ErrNotFound, Message: "no such API route"})
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	if clean != "/" {
		info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(clean)))
		if err == nil && !info.IsDir() {
			h.files.ServeHTTP(w, r)
			return
		}
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
}
