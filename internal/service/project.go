package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/github"
	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/repository"
	"github.com/hoangchien/portfolio/internal/validation"
)

// Enricher looks up repository metadata. *github.Client implements it.
type Enricher interface {
	Enrich(ctx context.Context, owner, name string) (*github.Repo, error)
}

// enrichConcurrency bounds parallel calls to the source host per request.
const enrichConcurrency = 4

// ProjectService manages the projects list.
type ProjectService struct {
	repo     repository.ProjectRepository
	enricher Enricher
	logger   *slog.Logger
}

// NewProjectService wires the service. enricher may be nil, in which case
// List ignores enrichment requests.
func NewProjectService(repo repository.ProjectRepository, enricher Enricher, logger *slog.Logger) *ProjectService {
	return &ProjectService{repo: repo, enricher: enricher, logger: logger}
}

type CreateProjectInput struct {
	Name        string `json:"name"        validate:"notblank,max=255"`
	Owner       string `json:"owner"       validate:"notblank,max=255"`
	Title       string `json:"title"       validate:"notblank,max=255"`
	Description string `json:"description"`
	GitHubLink  string `json:"githubLink"  validate:"required,http_url,max=500"`
}

// List returns all projects. With enrich set, each project is decorated with
// languages and last update time. A project whose lookup fails is returned
// without enrichment; the failure is only logged.
func (s *ProjectService) List(ctx context.Context, enrich bool) ([]model.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/project: listing: %w", err)
	}
	if !enrich || s.enricher == nil || len(projects) == 0 {
		return projects, nil
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, enrichConcurrency)
	for i := range projects {
		wg.Add(1)
		sem <- struct{}{}
		go func(p *model.Project) {
			defer wg.Done()
			defer func() { <-sem }()

			repo, err := s.enricher.Enrich(ctx, p.Owner, p.Name)
			if err != nil {
				s.logger.Warn("project enrichment failed",
					slog.Int64("projectID", p.ID),
					slog.String("repo", p.Owner+"/"+p.Name),
					slog.String("error", err.Error()),
				)
				return
			}
			p.Languages = repo.Languages
			if !repo.UpdatedAt.IsZero() {
				p.UpdatedAt = repo.UpdatedAt.UTC().Format(time.RFC3339)
			}
		}(&projects[i])
	}
	wg.Wait()

	return projects, nil
}

func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	p := &model.Project{
		Name:        strings.TrimSpace(in.Name),
		Owner:       strings.TrimSpace(in.Owner),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		GitHubLink:  strings.TrimSpace(in.GitHubLink),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("service/project: creating: %w", err)
	}

	s.logger.Info("project created", slog.Int64("projectID", p.ID), slog.String("name", p.Name))
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed("id", "id must be a positive integer")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", slog.Int64("projectID", id))
	return nil
}
