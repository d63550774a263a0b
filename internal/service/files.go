package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hoangchien/portfolio/internal/storage"
)

// files wraps the upload store with the two policies every service shares:
//   - a batch save either stores every file or none of them
//   - removals are best effort; a leftover file is logged, never returned
type files struct {
	store  storage.Store
	logger *slog.Logger
}

func (f files) saveAll(ctx context.Context, uploads []*storage.Upload) ([]string, error) {
	locators := make([]string, 0, len(uploads))
	for _, u := range uploads {
		loc, err := f.store.Save(ctx, u.Data, u.StoredName())
		if err != nil {
			f.removeAll(context.WithoutCancel(ctx), locators)
			return nil, fmt.Errorf("storing %s: %w", u.OriginalName, err)
		}
		locators = append(locators, loc)
	}
	return locators, nil
}

func (f files) save(ctx context.Context, u *storage.Upload) (string, error) {
	locs, err := f.saveAll(ctx, []*storage.Upload{u})
	if err != nil {
		return "", err
	}
	return locs[0], nil
}

// removeAll deletes the given locators. Callers pass a context detached from
// the request when cleaning up after a failure.
func (f files) removeAll(ctx context.Context, locators []string) {
	for _, loc := range locators {
		if loc == "" {
			continue
		}
		if err := f.store.Delete(ctx, loc); err != nil {
			f.logger.Warn("failed to remove stored file",
				slog.String("locator", loc),
				slog.String("backend", f.store.Name()),
				slog.String("error", err.Error()),
			)
		}
	}
}
