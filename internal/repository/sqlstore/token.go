package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hoangchien/portfolio/internal/repository"
)

// Tokens returns the revoked_tokens repository.
func (db *DB) Tokens() *TokenStore { return &TokenStore{db: db, now: time.Now} }

// TokenStore implements repository.TokenRepository.
type TokenStore struct {
	db  *DB
	now func() time.Time
}

var _ repository.TokenRepository = (*TokenStore)(nil)

// Revoke records jti as revoked until expiresAt. Entries whose tokens have
// already expired are purged in the same transaction, which keeps the table
// bounded by the number of live sessions.
func (s *TokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.db.exec(ctx, tx,
			`DELETE FROM revoked_tokens WHERE expires_at < ?`, s.now().Unix()); err != nil {
			return fmt.Errorf("purging revoked tokens: %w", err)
		}

		var exists int
		err := s.db.queryRow(ctx, tx, `SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking revoked token: %w", err)
		}
		if exists > 0 {
			return nil
		}

		if _, err := s.db.exec(ctx, tx,
			`INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`, jti, expiresAt.Unix()); err != nil {
			return fmt.Errorf("inserting revoked token: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlstore: revoking token: %w", err)
	}
	return nil
}

func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	err := s.db.queryRow(ctx, s.db.conn, `SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking revoked token: %w", err)
	}
	return n > 0, nil
}
