// File: internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfigMissing is returned when a required environment variable is not set
var ErrConfigMissing = errors.New("missing required configuration")

// Config holds everything the server and CLI need to run
type Config struct {
	Reddit   RedditConfig
	Server   ServerConfig
	Session  SessionConfig
	Snapshot SnapshotConfig

	// PacingDelay is the fixed pause between processing two submissions
	PacingDelay time.Duration
	LogLevel    slog.Level
}

// RedditConfig holds the OAuth application credentials
type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	RedirectURI  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port                string
	FrontendOrigins     []string
	FrontendRedirectURI string
}

// SessionConfig selects and configures the session backend
type SessionConfig struct {
	Backend       string // "memory" or "redis"
	TTL           time.Duration
	CookieSecure  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SnapshotConfig selects and configures where snapshots are written
type SnapshotConfig struct {
	Backend   string // "filesystem" or "s3"
	OutputDir string
	S3Bucket  string
	S3Prefix  string
	S3Region  string
}

// Load reads a .env file if present and builds the config from the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config using getenv for lookups
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var missing []string
	required := func(key string) string {
		v := get(key, "")
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		Reddit: RedditConfig{
			ClientID:     required("REDDIT_CLIENT_ID"),
			ClientSecret: required("REDDIT_CLIENT_SECRET"),
			UserAgent:    required("REDDIT_USER_AGENT"),
			RedirectURI:  required("REDDIT_REDIRECT_URI"),
		},
		Server: ServerConfig{
			Port:            get("PORT", "5000"),
			FrontendOrigins: splitList(get("FRONTEND_ORIGIN", "http://localhost:3000")),
		},
		Session: SessionConfig{
			Backend:       get("SESSION_BACKEND", "memory"),
			RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
			RedisPassword: get("REDIS_PASSWORD", ""),
		},
		Snapshot: SnapshotConfig{
			Backend:   get("SNAPSHOT_BACKEND", "filesystem"),
			OutputDir: get("OUTPUT_DIR", "./out"),
			S3Bucket:  get("S3_BUCKET", ""),
			S3Prefix:  get("S3_PREFIX", ""),
			S3Region:  get("S3_REGION", ""),
		},
	}
	cfg.Server.FrontendRedirectURI = get("FRONTEND_REDIRECT_URI", cfg.Reddit.RedirectURI)

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrConfigMissing, strings.Join(missing, ", "))
	}

	var err error
	if cfg.Session.TTL, err = time.ParseDuration(get("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.PacingDelay, err = time.ParseDuration(get("PACING_DELAY", "1s")); err != nil {
		return nil, fmt.Errorf("invalid PACING_DELAY: %w", err)
	}
	if cfg.Session.CookieSecure, err = strconv.ParseBool(get("SESSION_COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_COOKIE_SECURE: %w", err)
	}
	if cfg.Session.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.Session.Backend {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.Session.Backend)
	}

	switch cfg.Snapshot.Backend {
	case "filesystem":
	case "s3":
		if cfg.Snapshot.S3Bucket == "" {
			return nil, fmt.Errorf("%w: S3_BUCKET (required by the s3 snapshot backend)", ErrConfigMissing)
		}
	default:
		return nil, fmt.Errorf("unknown snapshot backend: %s", cfg.Snapshot.Backend)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
