package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/repository"
	"github.com/hoangchien/portfolio/internal/slug"
	"github.com/hoangchien/portfolio/internal/storage"
	"github.com/hoangchien/portfolio/internal/validation"
)

// AlbumService manages photo albums and their stored images.
type AlbumService struct {
	repo   repository.AlbumRepository
	files  files
	logger *slog.Logger
}

func NewAlbumService(repo repository.AlbumRepository, store storage.Store, logger *slog.Logger) *AlbumService {
	return &AlbumService{
		repo:   repo,
		files:  files{store: store, logger: logger},
		logger: logger,
	}
}

// CreateAlbumInput is the form part of an album upload.
type CreateAlbumInput struct {
	Title       string `form:"title"       validate:"notblank,max=255"`
	Description string `form:"description" validate:"notblank"`
	Location    string `form:"location"    validate:"notblank,max=255"`
	Date        string `form:"date"        validate:"notblank,datetime=2006-01-02"`
}

func (s *AlbumService) List(ctx context.Context) ([]model.PhotoAlbum, error) {
	albums, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/album: listing: %w", err)
	}
	return albums, nil
}

// GetBySlug returns the album with its photos.
func (s *AlbumService) GetBySlug(ctx context.Context, ref string) (*model.PhotoAlbum, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperror.ValidationFailed("slug", "slug is required")
	}
	return s.repo.GetBySlug(ctx, ref)
}

// Photos lists the photos of one album. An album without photos and an
// unknown album id both yield an empty list.
func (s *AlbumService) Photos(ctx context.Context, albumID int64) ([]model.Photo, error) {
	if albumID <= 0 {
		return nil, apperror.ValidationFailed("id", "id must be a positive integer")
	}
	photos, err := s.repo.Photos(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("service/album: listing photos: %w", err)
	}
	return photos, nil
}

// Create stores the images, then inserts the album and its photo rows in one
// transaction. If the insert fails the stored images are removed again, so
// a failed upload leaves neither rows nor files behind.
//
// Each photo's alt text is its original file name.
func (s *AlbumService) Create(ctx context.Context, in CreateAlbumInput, uploads []*storage.Upload) (*model.PhotoAlbum, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, apperror.ValidationFailed("photos", "at least one image is required")
	}

	locators, err := s.files.saveAll(ctx, uploads)
	if err != nil {
		return nil, fmt.Errorf("service/album: %w", err)
	}

	album := &model.PhotoAlbum{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Location:    strings.TrimSpace(in.Location),
		Date:        in.Date,
		Photos:      make([]model.Photo, len(uploads)),
	}
	for i, u := range uploads {
		album.Photos[i] = model.Photo{Src: locators[i], Alt: u.OriginalName}
	}

	_, err = insertWithUniqueSlug(ctx, slug.MakeOr(album.Title, "album"), s.repo.SlugExists, func(candidate string) error {
		album.Slug = candidate
		return s.repo.Create(ctx, album)
	})
	if err != nil {
		s.files.removeAll(context.WithoutCancel(ctx), locators)
		return nil, fmt.Errorf("service/album: creating: %w", err)
	}

	s.logger.Info("album created",
		slog.Int64("albumID", album.ID),
		slog.String("slug", album.Slug),
		slog.Int("photos", len(album.Photos)),
	)
	return album, nil
}

// Delete removes the album and its photo rows, then unlinks the images.
// Deleting an id that does not exist returns ErrNotFound and changes nothing.
func (s *AlbumService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "id must be a positive integer")
	}

	photos, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	srcs := make([]string, len(photos))
	for i, p := range photos {
		srcs[i] = p.Src
	}
	s.files.removeAll(context.WithoutCancel(ctx), srcs)

	s.logger.Info("album deleted", slog.Int64("albumID", id), slog.Int("photos", len(photos)))
	return nil
}
