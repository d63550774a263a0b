// Package config loads the server configuration.
//
// LAYERING (lowest to highest priority):
//  1. compiled defaults (defaultConfig)
//  2. an optional YAML file (CONFIG_PATH, then DefaultConfigPaths)
//  3. environment variables, mapped explicitly in envTransformFunc
//
// Unknown environment variables are ignored so the process environment
// cannot leak into the configuration by accident.
package config

import (
	"time"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Auth      AuthConfig      `koanf:"auth"`
	Storage   StorageConfig   `koanf:"storage"`
	Mail      MailConfig      `koanf:"mail"`
	GitHub    GitHubConfig    `koanf:"github"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	// WebDir holds the built single-page client. Empty disables static hosting.
	WebDir string `koanf:"web_dir"`
}

// DatabaseConfig selects the SQL dialect. For sqlite the DSN is a file path.
type DatabaseConfig struct {
	Driver       string `koanf:"driver"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
}

type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	Issuer        string        `koanf:"issuer"`
	AdminUsername string        `koanf:"admin_username"`
	AdminPassword string        `koanf:"admin_password"`
	CookieSecure  bool          `koanf:"cookie_secure"`
}

// StorageConfig selects where uploaded images live.
type StorageConfig struct {
	Backend string `koanf:"backend"`
	// LocalDir is served at /uploads/ when Backend is "local".
	LocalDir string `koanf:"local_dir"`
	// PublicURL is the externally reachable origin of this server. Local
	// locators are built from it.
	PublicURL     string   `koanf:"public_url"`
	MaxUploadSize int64    `koanf:"max_upload_size"`
	MaxFiles      int      `koanf:"max_files"`
	S3            S3Config `koanf:"s3"`
}

type S3Config struct {
	Bucket        string `koanf:"bucket"`
	Region        string `koanf:"region"`
	Endpoint      string `koanf:"endpoint"`
	AccessKey     string `koanf:"access_key"`
	SecretKey     string `koanf:"secret_key"`
	PublicBaseURL string `koanf:"public_base_url"`
	Prefix        string `koanf:"prefix"`
	UsePathStyle  bool   `koanf:"use_path_style"`
}

// MailConfig describes the SMTP relay used by the contact form.
// To is the owner's inbox; when empty, Username is used.
type MailConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"`
	To       string        `koanf:"to"`
	StartTLS bool          `koanf:"starttls"`
	Timeout  time.Duration `koanf:"timeout"`
}

type GitHubConfig struct {
	APIURL  string        `koanf:"api_url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
}

type RateLimitConfig struct {
	LoginRequests   int           `koanf:"login_requests"`
	LoginWindow     time.Duration `koanf:"login_window"`
	ContactRequests int           `koanf:"contact_requests"`
	ContactWindow   time.Duration `koanf:"contact_window"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Supported values for DatabaseConfig.Driver and StorageConfig.Backend.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendLocal = "local"
	BackendS3    = "s3"
)

// MaxFilesLimit caps photos per album upload regardless of configuration.
const MaxFilesLimit = 10

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000"},
			WebDir:          "",
		},
		Database: DatabaseConfig{
			Driver:       DriverSQLite,
			DSN:          "data/portfolio.db",
			MaxOpenConns: 4,
		},
		Auth: AuthConfig{
			TokenTTL:      30 * time.Minute,
			Issuer:        "portfolio",
			AdminUsername: "admin",
		},
		Storage: StorageConfig{
			Backend:       BackendLocal,
			LocalDir:      "uploads",
			PublicURL:     "http://localhost:8080",
			MaxUploadSize: 10 << 20,
			MaxFiles:      MaxFilesLimit,
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "uploads",
			},
		},
		Mail: MailConfig{
			Host:     "smtp.gmail.com",
			Port:     587,
			StartTLS: true,
			Timeout:  15 * time.Second,
		},
		GitHub: GitHubConfig{
			APIURL:  "https://api.github.com",
			Timeout: 5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			LoginRequests:   10,
			LoginWindow:     time.Minute,
			ContactRequests: 5,
			ContactWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// MailRecipient returns the inbox contact messages are delivered to.
func (c MailConfig) MailRecipient() string {
	if c.To != "" {
		return c.To
	}
	return c.Username
}

// Enabled reports whether an SMTP relay is configured.
func (c MailConfig) Enabled() bool {
	return c.Host != "" && c.MailRecipient() != ""
}
