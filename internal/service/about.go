package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/repository"
	"github.com/hoangchien/portfolio/internal/storage"
	"github.com/hoangchien/portfolio/internal/validation"
)

// MaxAvatarLocatorLength matches the avatar column width.
const MaxAvatarLocatorLength = 500

// AboutService reads and edits the owner profile.
type AboutService struct {
	repo   repository.AboutRepository
	files  files
	logger *slog.Logger
}

func NewAboutService(repo repository.AboutRepository, store storage.Store, logger *slog.Logger) *AboutService {
	return &AboutService{
		repo:   repo,
		files:  files{store: store, logger: logger},
		logger: logger,
	}
}

// UpdateAboutInput carries the text fields of PUT /about. Every field
// overwrites the stored value; the avatar is only replaced when a new image
// is uploaded.
type UpdateAboutInput struct {
	ID          int64  `form:"id"          validate:"required,gt=0"`
	Name        string `form:"name"        validate:"notblank,max=255"`
	Job         string `form:"job"         validate:"notblank,max=255"`
	Intro       string `form:"intro"`
	Quote       string `form:"quote"`
	Description string `form:"description"`
}

// Get returns the most recently created profile.
func (s *AboutService) Get(ctx context.Context) (*model.AboutProfile, error) {
	return s.repo.Latest(ctx)
}

// Update overwrites the profile with in.ID. When avatar is non-nil the new
// image is stored first, the row updated, and only then the previous image
// removed; on failure the new image is removed instead.
func (s *AboutService) Update(ctx context.Context, in UpdateAboutInput, avatar *storage.Upload) (*model.AboutProfile, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	updated := &model.AboutProfile{
		ID:          in.ID,
		Name:        strings.TrimSpace(in.Name),
		Job:         strings.TrimSpace(in.Job),
		Intro:       in.Intro,
		Quote:       in.Quote,
		Description: in.Description,
		Avatar:      current.Avatar,
	}

	var newAvatar string
	if avatar != nil {
		newAvatar, err = s.files.save(ctx, avatar)
		if err != nil {
			return nil, fmt.Errorf("service/about: %w", err)
		}
		if len(newAvatar) > MaxAvatarLocatorLength {
			s.files.removeAll(context.WithoutCancel(ctx), []string{newAvatar})
			return nil, apperror.ValidationFailed("avatar",
				fmt.Sprintf("avatar location exceeds %d characters", MaxAvatarLocatorLength))
		}
		updated.Avatar = &newAvatar
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		if newAvatar != "" {
			s.files.removeAll(context.WithoutCancel(ctx), []string{newAvatar})
		}
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/about: updating: %w", err)
	}

	if newAvatar != "" && current.Avatar != nil && *current.Avatar != newAvatar {
		s.files.removeAll(context.WithoutCancel(ctx), []string{*current.Avatar})
	}

	s.logger.Info("about profile updated",
		slog.Int64("aboutID", updated.ID),
		slog.Bool("avatarReplaced", newAvatar != ""),
	)
	return updated, nil
}

// EnsureProfile inserts a placeholder profile when the table is empty so
// GET /about and the admin editor have a row to work with.
func (s *AboutService) EnsureProfile(ctx context.Context) error {
	_, err := s.repo.Latest(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/about: checking profile: %w", err)
	}

	placeholder := &model.AboutProfile{
		Name:        "Your Name",
		Job:         "Your Job",
		Intro:       "A short introduction.",
		Quote:       "",
		Description: "",
	}
	if err := s.repo.Create(ctx, placeholder); err != nil {
		return fmt.Errorf("service/about: seeding profile: %w", err)
	}
	s.logger.Info("placeholder about profile created", slog.Int64("aboutID", placeholder.ID))
	return nil
}
