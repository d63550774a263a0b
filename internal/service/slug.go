package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/slug"
)

const (
	// maxSlugSuffix bounds the search for a free "-n" suffix.
	maxSlugSuffix = 1000
	// maxInsertRetries bounds retries when another request takes the
	// chosen slug between the existence check and the insert.
	maxInsertRetries = 5
)

// SLUG COLLISIONS:
// Titles that normalize to the same slug get numeric suffixes in creation
// order: "ha-noi", "ha-noi-2", "ha-noi-3". The slug column is UNIQUE, so a
// concurrent insert that wins the race makes ours fail with ErrConflict and we
// simply look for the next free suffix.

// insertWithUniqueSlug finds a free slug for base and calls insert with it,
// retrying on a uniqueness conflict.
func insertWithUniqueSlug(
	ctx context.Context,
	base string,
	exists func(context.Context, string) (bool, error),
	insert func(slug string) error,
) (string, error) {
	for attempt := 0; attempt < maxInsertRetries; attempt++ {
		candidate, err := freeSlug(ctx, base, exists)
		if err != nil {
			return "", err
		}

		err = insert(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return "", err
		}
	}
	return "", fmt.Errorf("service: slug %q still conflicting after %d attempts", base, maxInsertRetries)
}

func freeSlug(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	for n := 1; n <= maxSlugSuffix; n++ {
		candidate := slug.WithSuffix(base, n)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("service: checking slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("service: no free slug for %q", base)
}
