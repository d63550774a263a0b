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

// Users returns the users table repository.
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

// UserStore implements repository.UserRepository.
type UserStore struct{ db *DB }

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.db.queryRow(ctx, s.db.conn,
		`SELECT id, username, password, is_admin FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlstore: getting user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	err := s.db.queryRow(ctx, s.db.conn,
		`INSERT INTO users (username, password, is_admin) VALUES (?, ?, ?) RETURNING id`,
		u.Username, u.PasswordHash, u.IsAdmin,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", u.Username)
		}
		return fmt.Errorf("sqlstore: creating user: %w", err)
	}
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := s.db.exec(ctx, s.db.conn, `UPDATE users SET password = ? WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("sqlstore: updating password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user", fmt.Sprint(id))
	}
	return nil
}
