package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/storage"
)

const (
	// multipartMemory is how much of a multipart body is kept in memory;
	// the rest spills to temporary files.
	multipartMemory = 8 << 20
	// formOverhead allows for the text fields and part headers on top of
	// the file bytes themselves.
	formOverhead = 1 << 20
)

// MULTIPART UPLOADS:
// Album, post and about writes arrive as multipart/form-data. The whole
// body is capped with http.MaxBytesReader at maxFiles × maxSize plus some
// overhead, so an oversized request is cut off while it is still being
// read. Each file part is then checked on its own by storage.Limits: size,
// extension allow-list and content sniffing.
type uploadParser struct {
	limits storage.Limits
}

func newUploadParser(limits storage.Limits) uploadParser {
	return uploadParser{limits: limits}
}

// parse reads the multipart form. Callers must defer cleanup(r).
func (p uploadParser) parse(w http.ResponseWriter, r *http.Request) error {
	files := p.limits.MaxFiles
	if files < 1 {
		files = 1
	}
	r.Body = http.MaxBytesReader(w, r.Body, p.limits.MaxSize*int64(files)+formOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperror.TooLarge("request", tooBig.Limit)
		}
		return apperror.ValidationFailed("body", "expected a multipart/form-data body")
	}
	return nil
}

// cleanup removes the temporary files ParseMultipartForm may have created.
func cleanup(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// files returns the checked uploads of a required multi-file field.
func (p uploadParser) files(r *http.Request, field string) ([]*storage.Upload, error) {
	headers := r.MultipartForm.File[field]
	if err := p.limits.CheckCount(field, len(headers)); err != nil {
		return nil, err
	}

	out := make([]*storage.Upload, 0, len(headers))
	for _, fh := range headers {
		u, err := p.open(field, fh)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// file returns the checked upload of an optional single-file field, or nil
// when the field is absent.
func (p uploadParser) file(r *http.Request, field string) (*storage.Upload, error) {
	headers := r.MultipartForm.File[field]
	switch len(headers) {
	case 0:
		return nil, nil
	case 1:
		return p.open(field, headers[0])
	default:
		return nil, apperror.ValidationFailed(field, fmt.Sprintf("only one %s file is allowed", field))
	}
}

func (p uploadParser) open(field string, fh *multipart.FileHeader) (*storage.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s part: %w", field, err)
	}
	defer f.Close()
	return p.limits.Check(field, fh.Filename, f)
}

// idParam parses the {ref} path segment as a positive id.
func idParam(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "ref"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "id must be a positive integer")
	}
	return id, nil
}

// formInt parses an integer form field. An empty or malformed value yields 0
// and is left to struct validation to reject.
func formInt(r *http.Request, field string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(r.FormValue(field)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
