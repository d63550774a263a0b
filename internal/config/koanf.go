package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/portfolio/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, the config file and the
// environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("config: processing slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when they come
// from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("setting %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to config paths.
// The bare names (PORT, DATABASE_URL, JWT_SECRET, EMAIL_USER, EMAIL_PASS) are
// what existing deployments of the site already export.
var envMappings = map[string]string{
	"port":         "server.port",
	"database_url": "database.dsn",
	"jwt_secret":   "auth.jwt_secret",
	"email_user":   "mail.username",
	"email_pass":   "mail.password",

	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_idle_timeout":     "server.idle_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":            "server.cors_origins",
	"web_dir":                 "server.web_dir",

	"database_driver":         "database.driver",
	"database_dsn":            "database.dsn",
	"database_max_open_conns": "database.max_open_conns",

	"auth_token_ttl":      "auth.token_ttl",
	"auth_issuer":         "auth.issuer",
	"admin_username":      "auth.admin_username",
	"admin_password":      "auth.admin_password",
	"auth_cookie_secure":  "auth.cookie_secure",
	"storage_backend":     "storage.backend",
	"storage_local_dir":   "storage.local_dir",
	"public_url":          "storage.public_url",
	"storage_max_size":    "storage.max_upload_size",
	"storage_max_files":   "storage.max_files",
	"s3_bucket":           "storage.s3.bucket",
	"s3_region":           "storage.s3.region",
	"s3_endpoint":         "storage.s3.endpoint",
	"s3_access_key":       "storage.s3.access_key",
	"s3_secret_key":       "storage.s3.secret_key",
	"s3_public_base_url":  "storage.s3.public_base_url",
	"s3_prefix":           "storage.s3.prefix",
	"s3_use_path_style":   "storage.s3.use_path_style",
	"smtp_host":           "mail.host",
	"smtp_port":           "mail.port",
	"smtp_username":       "mail.username",
	"smtp_password":       "mail.password",
	"mail_from":           "mail.from",
	"mail_to":             "mail.to",
	"smtp_starttls":       "mail.starttls",
	"smtp_timeout":        "mail.timeout",
	"github_api_url":      "github.api_url",
	"github_token":        "github.token",
	"github_timeout":      "github.timeout",
	"ratelimit_login":     "ratelimit.login_requests",
	"ratelimit_contact":   "ratelimit.contact_requests",
	"log_level":           "logging.level",
	"log_format":          "logging.format",

	"ratelimit_login_window":   "ratelimit.login_window",
	"ratelimit_contact_window": "ratelimit.contact_window",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
