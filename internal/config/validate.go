package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver %q must be %q or %q", c.Database.Driver, DriverSQLite, DriverPostgres)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}

	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 characters (set JWT_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}

	if c.Storage.MaxUploadSize <= 0 {
		return errors.New("storage.max_upload_size must be positive")
	}
	if c.Storage.MaxFiles <= 0 || c.Storage.MaxFiles > MaxFilesLimit {
		return fmt.Errorf("storage.max_files must be between 1 and %d", MaxFilesLimit)
	}
	switch c.Storage.Backend {
	case BackendLocal:
		if c.Storage.LocalDir == "" {
			return errors.New("storage.local_dir is required for the local backend")
		}
		if err := absoluteURL("storage.public_url", c.Storage.PublicURL); err != nil {
			return err
		}
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required for the s3 backend")
		}
		if c.Storage.S3.PublicBaseURL != "" {
			if err := absoluteURL("storage.s3.public_base_url", c.Storage.S3.PublicBaseURL); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("storage.backend %q must be %q or %q", c.Storage.Backend, BackendLocal, BackendS3)
	}

	if c.RateLimit.LoginRequests <= 0 || c.RateLimit.ContactRequests <= 0 {
		return errors.New("ratelimit request counts must be positive")
	}
	if c.RateLimit.LoginWindow <= 0 || c.RateLimit.ContactWindow <= 0 {
		return errors.New("ratelimit windows must be positive")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}
	return nil
}

func absoluteURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s %q must be an absolute URL", name, raw)
	}
	return nil
}
