package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder for DecodeConfig
	_ "image/jpeg" // register JPEG decoder for DecodeConfig
	_ "image/png"  // register PNG decoder for DecodeConfig
	"io"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp" // register WebP decoder for DecodeConfig

	"github.com/hoangchien/portfolio/internal/apperror"
)

// AllowedExtensions lists the file extensions accepted for image uploads.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif"}

// canonical extension and content type for each sniffed format
var formats = map[string]struct{ ext, contentType string }{
	"jpeg": {".jpg", "image/jpeg"},
	"png":  {".png", "image/png"},
	"gif":  {".gif", "image/gif"},
	"webp": {".webp", "image/webp"},
	"avif": {".avif", "image/avif"},
}

// Upload is an image that passed validation.
type Upload struct {
	// OriginalName is the client-supplied file name without directories.
	OriginalName string
	Format       string
	ContentType  string
	Data         []byte
}

// StoredName is OriginalName with the extension replaced by the one matching
// the sniffed format. Stores derive the object extension from it.
func (u *Upload) StoredName() string {
	base := strings.TrimSuffix(u.OriginalName, filepath.Ext(u.OriginalName))
	return base + formats[u.Format].ext
}

// Limits bounds what Check accepts.
type Limits struct {
	MaxSize  int64
	MaxFiles int
}

// CheckCount rejects a request with no files or more than MaxFiles.
func (l Limits) CheckCount(field string, n int) error {
	if n == 0 {
		return apperror.ValidationFailed(field, "at least one image is required")
	}
	if l.MaxFiles > 0 && n > l.MaxFiles {
		return apperror.ValidationFailed(field, fmt.Sprintf("at most %d images are allowed", l.MaxFiles))
	}
	return nil
}

// Check reads r fully and verifies size, extension and content. The
// extension check is cheap and runs first; the content is then sniffed so a
// renamed non-image is still rejected.
func (l Limits) Check(field, name string, r io.Reader) (*Upload, error) {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if !allowedExt(extOf(name)) {
		return nil, apperror.ValidationFailed(field,
			fmt.Sprintf("file type not allowed: %s (allowed: %s)", name, strings.Join(AllowedExtensions, ", ")))
	}

	limit := l.MaxSize
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("storage: reading %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, apperror.TooLarge(field, limit)
	}
	if len(data) == 0 {
		return nil, apperror.ValidationFailed(field, fmt.Sprintf("file is empty: %s", name))
	}

	format, ok := sniff(data)
	if !ok {
		return nil, apperror.ValidationFailed(field, fmt.Sprintf("file is not a supported image: %s", name))
	}

	return &Upload{
		OriginalName: name,
		Format:       format,
		ContentType:  formats[format].contentType,
		Data:         data,
	}, nil
}

func allowedExt(ext string) bool {
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// sniff identifies the image format from its header bytes.
func sniff(data []byte) (string, bool) {
	if isAVIF(data) {
		return "avif", true
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	_, ok := formats[format]
	return format, ok
}

// isAVIF checks the ISO-BMFF ftyp box for an AVIF major brand.
func isAVIF(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	return brand == "avif" || brand == "avis"
}
