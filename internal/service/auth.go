// Package service also covers authentication business logic.
//
// AuthService is the business logic layer for admin sessions. It sits between
// the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)          ↘ TokenRepository (revocations)
//
// KEY RESPONSIBILITIES:
//   - Check credentials without revealing which one was wrong
//   - Issue signed, expiring session tokens
//   - Validate tokens on every admin write, including revocation
//   - Seed the admin account on first start
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/auth"
	"github.com/hoangchien/portfolio/internal/metrics"
	"github.com/hoangchien/portfolio/internal/model"
	"github.com/hoangchien/portfolio/internal/repository"
)

// invalidCredentials is the only message a failed login ever returns.
const invalidCredentials = "invalid username or password"

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - revoked    repository.TokenRepository → logged-out token ids
//   - tokens     *auth.TokenService         → generate/validate JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	revoked   repository.TokenRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	// dummyHash is compared against when the username does not exist so an
	// unknown user costs the same bcrypt time as a wrong password.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	revoked repository.TokenRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		revoked:   revoked,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles the user and the issued token so the handler can set
// the cookie and respond in one step.
type LoginResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Login checks username and password and issues a session token.
//
// Unknown usernames and wrong passwords produce the same 401 message.
// A legacy SHA-256 password that matches is re-hashed with bcrypt; failure to
// store the new hash is logged and does not block the login.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: looking up user: %w", err)
		}
		// Burn the same bcrypt time as a real comparison.
		_ = s.passwords.Verify(s.dummy(), password)
		metrics.RecordLogin(false)
		s.logger.Info("login failed", slog.String("reason", "unknown user"))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		metrics.RecordLogin(false)
		s.logger.Info("login failed", slog.Int64("userID", user.ID), slog.String("reason", "bad password"))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	if s.passwords.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	token, claims, err := s.tokens.Generate(user.ID, user.Username, user.Role())
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	metrics.RecordLogin(true)
	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
		slog.String("role", user.Role()),
	)

	return &LoginResult{User: user, Token: token, ExpiresAt: claims.ExpiresAt()}, nil
}

func (s *AuthService) upgradeHash(ctx context.Context, user *model.User, password string) {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		s.logger.Warn("rehash failed", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		s.logger.Warn("storing upgraded hash failed", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return
	}
	user.PasswordHash = hash
	s.logger.Info("password hash upgraded to bcrypt", slog.Int64("userID", user.ID))
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.passwords.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// Authenticate verifies a raw token: signature, issuer, expiry and
// revocation. It implements auth.Authenticator for the middleware.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, apperror.Unauthorized("missing session token")
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired session token")
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking revocation: %w", err)
	}
	if revoked {
		return nil, apperror.Unauthorized("session has been logged out")
	}
	return claims, nil
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperror.Unauthorized("missing session token")
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt()); err != nil {
		return fmt.Errorf("service/auth: revoking token: %w", err)
	}
	s.logger.Info("user logged out", slog.String("username", claims.Username))
	return nil
}

// EnsureAdmin creates the admin account when no user with that name exists.
// With an empty password a random one is generated and logged once, so a
// fresh install is never left with a guessable default.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/auth: looking up admin: %w", err)
	}

	generated := false
	if password == "" {
		password, err = randomPassword()
		if err != nil {
			return fmt.Errorf("service/auth: generating admin password: %w", err)
		}
		generated = true
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("service/auth: hashing admin password: %w", err)
	}

	user := &model.User{Username: username, PasswordHash: hash, IsAdmin: true}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil
		}
		return fmt.Errorf("service/auth: creating admin: %w", err)
	}

	if generated {
		s.logger.Warn("admin account created with a generated password; change it or set ADMIN_PASSWORD",
			slog.String("username", username),
			slog.String("password", password),
		)
	} else {
		s.logger.Info("admin account created", slog.String("username", username))
	}
	return nil
}

func randomPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
