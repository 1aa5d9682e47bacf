// Package config loads File Portal runtime settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by FP_STORAGE_BACKEND.
const (
	BackendDisk = "disk"
	BackendS3   = "s3"
)

// Config holds runtime settings for the portal server.
type Config struct {
	Addr        string
	DatabaseURL string

	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	CookieSecure  bool

	LoginMaxAttempts int
	LoginLockout     time.Duration
	LoginWindow      time.Duration
	FormRateLimit    int

	// TrustProxy makes the server take the client address from
	// X-Forwarded-For / X-Real-IP. Only enable it behind a proxy that sets them.
	TrustProxy bool

	StorageBackend string
	UploadFolder   string
	S3             S3Config

	AboutName string

	LogLevel  string
	LogFormat string
	Env       string

	Version string
	Commit  string
}

// S3Config describes the S3-compatible bucket used when StorageBackend is "s3".
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// Load reads a .env file if one is present, then builds a Config from the
// environment. The returned error, if any, is a *Validator listing every problem.
func Load() (*Config, error) {
	LoadDotenv()

	v := NewValidator()
	cfg := &Config{
		Addr:        getenvDefault("FP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		SessionSecret: os.Getenv("FP_SESSION_SECRET"),
		SessionTTL:    v.Duration("FP_SESSION_TTL", os.Getenv("FP_SESSION_TTL"), 12*time.Hour),
		CookieName:    getenvDefault("FP_COOKIE_NAME", "fp_session"),
		CookieSecure:  v.Bool("FP_COOKIE_SECURE", os.Getenv("FP_COOKIE_SECURE"), false),

		LoginMaxAttempts: v.Int("FP_LOGIN_MAX_ATTEMPTS", os.Getenv("FP_LOGIN_MAX_ATTEMPTS"), 5),
		LoginLockout:     v.Duration("FP_LOGIN_LOCKOUT", os.Getenv("FP_LOGIN_LOCKOUT"), 15*time.Minute),
		LoginWindow:      v.Duration("FP_LOGIN_WINDOW", os.Getenv("FP_LOGIN_WINDOW"), 10*time.Minute),
		FormRateLimit:    v.Int("FP_FORM_RATE_LIMIT", os.Getenv("FP_FORM_RATE_LIMIT"), 30),
		TrustProxy:       v.Bool("FP_TRUST_PROXY", os.Getenv("FP_TRUST_PROXY"), false),

		StorageBackend: getenvDefault("FP_STORAGE_BACKEND", BackendDisk),
		UploadFolder:   getenvDefault("FP_UPLOAD_FOLDER", "uploads"),
		S3: S3Config{
			Endpoint:  os.Getenv("FP_S3_ENDPOINT"),
			AccessKey: os.Getenv("FP_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("FP_S3_SECRET_KEY"),
			Bucket:    os.Getenv("FP_BUCKET"),
			Prefix:    getenvDefault("FP_S3_PREFIX", "uploads/"),
		},

		AboutName: getenvDefault("FP_ABOUT_NAME", "the File Portal team"),

		LogLevel:  os.Getenv("FP_LOG_LEVEL"),
		LogFormat: os.Getenv("FP_LOG_FORMAT"),
		Env:       os.Getenv("FP_ENV"),

		Version: getenvDefault("FP_VERSION", "dev"),
		Commit:  getenvDefault("FP_COMMIT", "unknown"),
	}

	cfg.validate(v)
	if v.HasErrors() {
		return cfg, v
	}
	return cfg, nil
}

func (c *Config) validate(v *Validator) {
	v.ValidateListenAddr("FP_ADDR", c.Addr)

	v.ValidateRequired("DATABASE_URL", c.DatabaseURL)
	if c.DatabaseURL != "" &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		v.AddError("DATABASE_URL", "must be a valid PostgreSQL connection string")
	}

	v.ValidateRequired("FP_SESSION_SECRET", c.SessionSecret)
	v.ValidateMinLength("FP_SESSION_SECRET", c.SessionSecret, 16)

	v.ValidateEnum("FP_STORAGE_BACKEND", c.StorageBackend, []string{BackendDisk, BackendS3})
	switch c.StorageBackend {
	case BackendDisk:
		v.ValidateRequired("FP_UPLOAD_FOLDER", c.UploadFolder)
	case BackendS3:
		v.ValidateRequired("FP_S3_ENDPOINT", c.S3.Endpoint)
		v.ValidateRequired("FP_S3_ACCESS_KEY", c.S3.AccessKey)
		v.ValidateRequired("FP_S3_SECRET_KEY", c.S3.SecretKey)
		v.ValidateRequired("FP_BUCKET", c.S3.Bucket)
		if strings.Contains(c.S3.Endpoint, "://") {
			v.ValidateURL("FP_S3_ENDPOINT", c.S3.Endpoint)
		}
	}

	v.ValidateEnum("FP_LOG_FORMAT", c.LogFormat, []string{"", "json", "text"})
	v.ValidateEnum("FP_LOG_LEVEL", c.LogLevel, []string{"", "debug", "info", "warn", "error"})
	v.ValidateEnum("FP_ENV", c.Env, []string{"", "development", "production", "staging"})
}

// LoadDotenv loads the first .env file found in the working directory or one
// of its parents. FP_ENV_FILE names an explicit file instead. Variables that
// are already set in the environment win over the file.
func LoadDotenv() {
	if p := os.Getenv("FP_ENV_FILE"); p != "" {
		_ = godotenv.Load(p)
		return
	}
	for _, p := range []string{".env", filepath.Join("..", ".env"), filepath.Join("..", "..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
