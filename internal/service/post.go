package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/repository"
	"github.com/hoangchien/portfolio/internal/slug"
	"github.com/hoangchien/portfolio/internal/storage"
	"github.com/hoangchien/portfolio/internal/validation"
)

// PostService manages blog posts.
type PostService struct {
	repo   repository.PostRepository
	files  files
	logger *slog.Logger
	now    func() time.Time
}

func NewPostService(repo repository.PostRepository, store storage.Store, logger *slog.Logger) *PostService {
	return &PostService{
		repo:   repo,
		files:  files{store: store, logger: logger},
		logger: logger,
		now:    time.Now,
	}
}

// CreatePostInput is the form part of a new post. Only the title is
// required; an empty date means today (UTC).
type CreatePostInput struct {
	Title       string `form:"title"       validate:"notblank,max=255"`
	Source      string `form:"source"      validate:"max=255"`
	Location    string `form:"location"    validate:"max=255"`
	Date        string `form:"date"        validate:"omitempty,datetime=2006-01-02"`
	Description string `form:"description"`
}

// List returns all posts, newest date first.
func (s *PostService) List(ctx context.Context) ([]model.BlogPost, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing: %w", err)
	}
	return posts, nil
}

func (s *PostService) GetBySlug(ctx context.Context, ref string) (*model.BlogPost, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperror.ValidationFailed("slug", "slug is required")
	}
	return s.repo.GetBySlug(ctx, ref)
}

// Create stores the optional image and inserts the post. When the insert
// fails the image is removed again.
func (s *PostService) Create(ctx context.Context, in CreatePostInput, image *storage.Upload) (*model.BlogPost, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	post := &model.BlogPost{
		Title:       strings.TrimSpace(in.Title),
		Source:      strings.TrimSpace(in.Source),
		Location:    strings.TrimSpace(in.Location),
		Date:        in.Date,
		Description: in.Description,
	}
	if post.Date == "" {
		post.Date = s.now().UTC().Format(validation.DateLayout)
	}

	if image != nil {
		loc, err := s.files.save(ctx, image)
		if err != nil {
			return nil, fmt.Errorf("service/post: %w", err)
		}
		post.ImagePath = &loc
	}

	_, err := insertWithUniqueSlug(ctx, slug.MakeOr(post.Title, "post"), s.repo.SlugExists, func(candidate string) error {
		post.Slug = candidate
		return s.repo.Create(ctx, post)
	})
	if err != nil {
		if post.ImagePath != nil {
			s.files.removeAll(context.WithoutCancel(ctx), []string{*post.ImagePath})
		}
		return nil, fmt.Errorf("service/post: creating: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("postID", post.ID),
		slog.String("slug", post.Slug),
		slog.Bool("hasImage", post.ImagePath != nil),
	)
	return post, nil
}

// Delete removes the post row and then its image.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "id must be a positive integer")
	}

	post, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if post.ImagePath != nil {
		s.files.removeAll(context.WithoutCancel(ctx), []string{*post.ImagePath})
	}

	s.logger.Info("post deleted", slog.Int64("postID", id))
	return nil
}
