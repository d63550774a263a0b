package sqlstore

import (
	"context"
	"fmt"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/repository"
)

// Projects returns the github_projects table repository.
func (db *DB) Projects() *ProjectStore { return &ProjectStore{db: db} }

// ProjectStore implements repository.ProjectRepository.
type ProjectStore struct{ db *DB }

var _ repository.ProjectRepository = (*ProjectStore)(nil)

// List returns every project, newest first.
func (s *ProjectStore) List(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.query(ctx, s.db.conn,
		`SELECT id, name, owner, title, description, github_link
		 FROM github_projects ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Owner, &p.Title, &p.Description, &p.GitHubLink); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectStore) Create(ctx context.Context, p *model.Project) error {
	err := s.db.queryRow(ctx, s.db.conn,
		`INSERT INTO github_projects (name, owner, title, description, github_link)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		p.Name, p.Owner, p.Title, p.Description, p.GitHubLink,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: creating project: %w", err)
	}
	return nil
}

// Delete removes the project. A missing row yields apperror.ErrNotFound, so
// a repeated delete reports 404 instead of failing.
func (s *ProjectStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.exec(ctx, s.db.conn, `DELETE FROM github_projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("project", fmt.Sprint(id))
	}
	return nil
}
