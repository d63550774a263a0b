package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/xid"
)

// LocalURLPrefix is the path under which the server exposes LocalDir.
const LocalURLPrefix = "/uploads/"

// Local stores files in a directory on disk.
type Local struct {
	dir     string
	baseURL string // publicURL + LocalURLPrefix
}

var _ Store = (*Local)(nil)

// NewLocal creates dir if needed. publicURL is the externally reachable
// origin of this server, e.g. "https://example.com".
func NewLocal(dir, publicURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload dir: %w", err)
	}
	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(publicURL, "/") + LocalURLPrefix,
	}, nil
}

func (l *Local) Name() string { return "local" }

// Dir is the directory the HTTP server should serve at LocalURLPrefix.
func (l *Local) Dir() string { return l.dir }

// Save writes data to <dir>/<xid><ext>. The file is written to a temp name
// first and renamed, so a reader never sees a partial image.
func (l *Local) Save(_ context.Context, data []byte, name string) (string, error) {
	filename := xid.New().String() + extOf(name)
	final := filepath.Join(l.dir, filename)

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: writing %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: closing %s: %w", filename, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: renaming %s: %w", filename, err)
	}
	if err := os.Chmod(final, 0o644); err != nil {
		return "", fmt.Errorf("storage: chmod %s: %w", filename, err)
	}

	return l.baseURL + filename, nil
}

// Delete unlinks the file behind a locator produced by this store. Missing
// files are ignored, which keeps repeated deletes harmless.
func (l *Local) Delete(_ context.Context, locator string) error {
	filename, ok := l.filename(locator)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: removing %s: %w", filename, err)
	}
	return nil
}

// filename extracts the bare file name from one of our locators. Anything
// containing a path separator or dot-segment is rejected.
func (l *Local) filename(locator string) (string, bool) {
	rest, ok := strings.CutPrefix(locator, l.baseURL)
	if !ok || rest == "" {
		return "", false
	}
	if strings.ContainsAny(rest, `/\`) || rest != path.Base(rest) || strings.HasPrefix(rest, ".") {
		return "", false
	}
	return rest, true
}
