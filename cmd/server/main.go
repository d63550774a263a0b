// Package main is the entry point for the portfolio API server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (defaults, optional YAML file, environment)
// 2. Create dependencies (logger, database, storage, mailer, services)
// 3. Start the application and stop it on SIGINT/SIGTERM
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hoangchien/portfolio/internal/auth"
	"github.com/hoangchien/portfolio/internal/config"
	"github.com/hoangchien/portfolio/internal/github"
	"github.com/hoangchien/portfolio/internal/mail"
	"github.com/hoangchien/portfolio/internal/repository/sqlstore"
	"github.com/hoangchien/portfolio/internal/server"
	"github.com/hoangchien/portfolio/internal/service"
	"github.com/hoangchien/portfolio/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// === 1. CONFIGURATION ===
	// Defaults, then config.yaml if present, then PORTFOLIO_* env vars.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// === 2. LOGGING ===
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	// === 3. SHUTDOWN SIGNAL ===
	// The context is cancelled on Ctrl+C or SIGTERM; server.Start then drains.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === 4. DATABASE ===
	// Open runs pending migrations before returning.
	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, sqlstore.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	logger.Info("database ready", slog.String("driver", db.Dialect()))

	// === 5. STORAGE ===
	store, uploadDir, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("upload storage ready", slog.String("backend", cfg.Storage.Backend))

	// === 6. AUTH ===
	tokens, err := auth.NewTokenServiceWithOptions(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	authSvc := service.NewAuthService(db.Users(), db.Tokens(), tokens, auth.NewPasswordService(), logger)
	if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	// === 7. MAIL ===
	var sender mail.Sender = mail.Disabled{}
	if cfg.Mail.Enabled() {
		sender = mail.NewSMTPSender(cfg.Mail, logger)
	} else {
		logger.Warn("no SMTP relay configured, contact form submissions will fail")
	}

	// === 8. SERVICES ===
	aboutSvc := service.NewAboutService(db.About(), store, logger)
	if err := aboutSvc.EnsureProfile(ctx); err != nil {
		return fmt.Errorf("seeding profile: %w", err)
	}

	deps := server.Deps{
		Auth:     authSvc,
		About:    aboutSvc,
		Projects: service.NewProjectService(db.Projects(), github.NewClient(cfg.GitHub, logger), logger),
		Albums:   service.NewAlbumService(db.Albums(), store, logger),
		Posts:    service.NewPostService(db.Posts(), store, logger),
		Contact:  service.NewContactService(sender, logger),
		Limits: storage.Limits{
			MaxSize:  cfg.Storage.MaxUploadSize,
			MaxFiles: cfg.Storage.MaxFiles,
		},
		UploadDir: uploadDir,
		Ping:      db.PingContext,
	}

	// === 9. SERVE ===
	srv, err := server.New(cfg, deps, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	// Start blocks until ctx is cancelled and in-flight requests finish.
	return srv.Start(ctx)
}

// newStore builds the configured upload backend. uploadDir is non-empty only
// for the local backend, whose files the server itself must serve.
func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, string, error) {
	switch cfg.Backend {
	case config.BackendS3:
		s3, err := storage.NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("creating S3 store: %w", err)
		}
		return storage.Instrumented(s3), "", nil
	default:
		local, err := storage.NewLocal(cfg.LocalDir, cfg.PublicURL)
		if err != nil {
			return nil, "", fmt.Errorf("creating local store: %w", err)
		}
		return storage.Instrumented(local), local.Dir(), nil
	}
}

// newLogger returns a text logger for terminals and a JSON logger for
// log shippers.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
