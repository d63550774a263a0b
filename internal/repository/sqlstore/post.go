package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/repository"
)

// Posts returns the blogger table repository.
func (db *DB) Posts() *PostStore { return &PostStore{db: db} }

// PostStore implements repository.PostRepository.
type PostStore struct{ db *DB }

var _ repository.PostRepository = (*PostStore)(nil)

const postColumns = `id, slug, title, source, location, date, description, image_path`

func scanPost(row interface{ Scan(...any) error }) (*model.BlogPost, error) {
	var (
		p     model.BlogPost
		image sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Source, &p.Location, &p.Date, &p.Description, &image); err != nil {
		return nil, err
	}
	p.ImagePath = stringPtr(image)
	return &p, nil
}

// List returns every post, newest date first. Posts sharing a date are
// ordered by id so the result is deterministic.
func (s *PostStore) List(ctx context.Context) ([]model.BlogPost, error) {
	rows, err := s.db.query(ctx, s.db.conn,
		`SELECT `+postColumns+` FROM blogger ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.BlogPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlstore: scanning post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) GetBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	p, err := scanPost(s.db.queryRow(ctx, s.db.conn,
		`SELECT `+postColumns+` FROM blogger WHERE slug = ?`, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFoundBySlug("blog post", slug)
		}
		return nil, fmt.Errorf("sqlstore: getting post: %w", err)
	}
	return p, nil
}

func (s *PostStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.queryRow(ctx, s.db.conn, `SELECT COUNT(*) FROM blogger WHERE slug = ?`, slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking post slug: %w", err)
	}
	return n > 0, nil
}

func (s *PostStore) Create(ctx context.Context, p *model.BlogPost) error {
	err := s.db.queryRow(ctx, s.db.conn,
		`INSERT INTO blogger (slug, title, source, location, date, description, image_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		p.Slug, p.Title, p.Source, p.Location, p.Date, p.Description, nullString(p.ImagePath),
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("blog post", p.Slug)
		}
		return fmt.Errorf("sqlstore: creating post: %w", err)
	}
	return nil
}

// Delete reads the row to learn its image path, then removes it, both inside
// one transaction.
func (s *PostStore) Delete(ctx context.Context, id int64) (*model.BlogPost, error) {
	var removed *model.BlogPost
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		p, err := scanPost(s.db.queryRow(ctx, tx,
			`SELECT `+postColumns+` FROM blogger WHERE id = ?`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.NotFound("blog post", fmt.Sprint(id))
			}
			return fmt.Errorf("reading post: %w", err)
		}

		if _, err := s.db.exec(ctx, tx, `DELETE FROM blogger WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting post: %w", err)
		}
		removed = p
		return nil
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("sqlstore: deleting post: %w", err)
	}
	return removed, nil
}
