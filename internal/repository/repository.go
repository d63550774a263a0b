// Package repository defines the data-access interfaces used by the services.
//
// THE REPOSITORY PATTERN:
// Services depend on these interfaces, never on a concrete database. The
// sqlstore package implements all of them for SQLite and PostgreSQL, and the
// service tests use in-memory fakes.
//
// ERROR CONTRACT:
// Lookups of a missing row return an error wrapping apperror.ErrNotFound.
// Writes that violate a uniqueness constraint return apperror.ErrConflict.
// Anything else is an infrastructure failure.
package repository

import (
	"context"
	"time"

	"github.com/hoangchien/portfolio/internal/model"
)

// UserRepository stores sign-in accounts.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// AboutRepository stores the profile rows. Only the latest row is served.
type AboutRepository interface {
	Latest(ctx context.Context) (*model.AboutProfile, error)
	GetByID(ctx context.Context, id int64) (*model.AboutProfile, error)
	Create(ctx context.Context, about *model.AboutProfile) error
	Update(ctx context.Context, about *model.AboutProfile) error
}

// ProjectRepository stores the projects list.
type ProjectRepository interface {
	List(ctx context.Context) ([]model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id int64) error
}

// AlbumRepository stores photo albums together with their photos.
type AlbumRepository interface {
	List(ctx context.Context) ([]model.PhotoAlbum, error)
	GetBySlug(ctx context.Context, slug string) (*model.PhotoAlbum, error)
	Photos(ctx context.Context, albumID int64) ([]model.Photo, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Create inserts the album and its photos atomically and fills in ids.
	Create(ctx context.Context, album *model.PhotoAlbum) error
	// Delete removes the photos and then the album in one transaction and
	// returns the removed photos so their files can be unlinked.
	Delete(ctx context.Context, id int64) ([]model.Photo, error)
}

// PostRepository stores blog posts.
type PostRepository interface {
	List(ctx context.Context) ([]model.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, post *model.BlogPost) error
	// Delete removes the post and returns it so its image can be unlinked.
	Delete(ctx context.Context, id int64) (*model.BlogPost, error)
}

// TokenRepository records revoked session tokens until they expire.
type TokenRepository interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
