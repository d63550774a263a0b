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

// About returns the profile table repository.
func (db *DB) About() *AboutStore { return &AboutStore{db: db} }

// AboutStore implements repository.AboutRepository.
type AboutStore struct{ db *DB }

var _ repository.AboutRepository = (*AboutStore)(nil)

const aboutColumns = `id, name, job, intro, quote, description, avatar`

func scanAbout(row interface{ Scan(...any) error }) (*model.AboutProfile, error) {
	var (
		a      model.AboutProfile
		avatar sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Job, &a.Intro, &a.Quote, &a.Description, &avatar); err != nil {
		return nil, err
	}
	a.Avatar = stringPtr(avatar)
	return &a, nil
}

// Latest returns the most recently created profile row.
func (s *AboutStore) Latest(ctx context.Context) (*model.AboutProfile, error) {
	a, err := scanAbout(s.db.queryRow(ctx, s.db.conn,
		`SELECT `+aboutColumns+` FROM about ORDER BY id DESC LIMIT 1`))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "about profile not found"}
		}
		return nil, fmt.Errorf("sqlstore: getting latest about: %w", err)
	}
	return a, nil
}

func (s *AboutStore) GetByID(ctx context.Context, id int64) (*model.AboutProfile, error) {
	a, err := scanAbout(s.db.queryRow(ctx, s.db.conn,
		`SELECT `+aboutColumns+` FROM about WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("about profile", fmt.Sprint(id))
		}
		return nil, fmt.Errorf("sqlstore: getting about: %w", err)
	}
	return a, nil
}

func (s *AboutStore) Create(ctx context.Context, a *model.AboutProfile) error {
	err := s.db.queryRow(ctx, s.db.conn,
		`INSERT INTO about (name, job, intro, quote, description, avatar)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`,
		a.Name, a.Job, a.Intro, a.Quote, a.Description, nullString(a.Avatar),
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("sqlstore: creating about: %w", err)
	}
	return nil
}

// Update overwrites every column of the row with a.ID.
func (s *AboutStore) Update(ctx context.Context, a *model.AboutProfile) error {
	res, err := s.db.exec(ctx, s.db.conn,
		`UPDATE about SET name = ?, job = ?, intro = ?, quote = ?, description = ?, avatar = ?
		 WHERE id = ?`,
		a.Name, a.Job, a.Intro, a.Quote, a.Description, nullString(a.Avatar), a.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating about: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("about profile", fmt.Sprint(a.ID))
	}
	return nil
}
