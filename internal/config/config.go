package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

const (
	DefaultPort       = 8000
	DefaultAPIBaseURL = "http://localhost:8000"
)

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
}

// s3Fields pairs every required S3 setting with its env name.
func (c S3Config) s3Fields() []struct{ env, val string } {
	return []struct{ env, val string }{
		{"S3_ENDPOINT", c.Endpoint},
		{"S3_REGION", c.Region},
		{"S3_BUCKET", c.Bucket},
		{"S3_ACCESS_KEY_ID", c.AccessKeyID},
		{"S3_SECRET_ACCESS_KEY", c.SecretAccessKey},
		{"S3_PUBLIC_BASE_URL", c.PublicBaseURL},
	}
}

// MissingRequired lists the env names of the unset S3 settings, in a fixed order.
func (c S3Config) MissingRequired() []string {
	var missing []string
	for _, f := range c.s3Fields() {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.env)
		}
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

// Diagnostics classifies the photo store config for the startup log:
// nothing set, partially set or ready.
func (c S3Config) Diagnostics() (level string, code string, msg string) {
	missing := c.MissingRequired()
	switch len(missing) {
	case 0:
		return "INFO", "s3_ready", "ready"
	case len(c.s3Fields()):
		return "INFO", "s3_not_configured", "not configured (all empty)"
	default:
		return "WARN", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}
}

// DiagnosticsSummary prints the S3 settings with credentials masked.
func (c S3Config) DiagnosticsSummary() string {
	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s access_key_id=%s secret_access_key=%s",
		NonEmptyOrDash(c.Endpoint), NonEmptyOrDash(c.Region), NonEmptyOrDash(c.Bucket),
		NonEmptyOrDash(c.PublicBaseURL), SetOrNot(c.AccessKeyID), SetOrNot(c.SecretAccessKey))
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// Config содержит конфигурацию приложения
type Config struct {
	Env      string // local | staging | production
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Recipe photos
	Blob              BlobConfig
	UploadMaxMB       int
	UploadAllowedMime string

	// Client (planner CLI / TUI)
	APIBaseURL        string
	APITimeoutSeconds int
	APIRatePerSecond  float64

	// Migrations
	RunMigrationsOnStartup bool
}

// APITimeout returns the per-request timeout used by the HTTP client.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// IsLocal reports whether the app runs in the local environment.
func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	// APP_ENV (fallback to ENV for backward compat, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", DefaultPort)

	// LOG_LEVEL (default: debug)
	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "debug"
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Blob / S3 ----------
	blobCfg := BlobConfig{
		Mode: parseBlobMode("BLOB_MODE", BlobModeLocal),
		S3: S3Config{
			Endpoint:        strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Region:          strings.TrimSpace(os.Getenv("S3_REGION")),
			Bucket:          strings.TrimSpace(os.Getenv("S3_BUCKET")),
			AccessKeyID:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey: strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			PublicBaseURL:   strings.TrimRight(strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")), "/"),
		},
	}

	// UPLOAD_MAX_MB (default: 5)
	uploadMaxMB := envInt("UPLOAD_MAX_MB", 5)
	if uploadMaxMB <= 0 {
		uploadMaxMB = 5
	}

	uploadAllowedMime := os.Getenv("UPLOAD_ALLOWED_MIME")
	if uploadAllowedMime == "" {
		uploadAllowedMime = "image/jpeg,image/png,image/webp"
	}

	// ---------- Client ----------
	apiBaseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/")
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}

	apiTimeoutSeconds := envInt("API_TIMEOUT_SECONDS", 10)
	if apiTimeoutSeconds <= 0 {
		apiTimeoutSeconds = 10
	}

	apiRatePerSecond := envFloat("API_RATE_PER_SECOND", 0)
	if apiRatePerSecond < 0 {
		log.Printf("WARNING: negative API_RATE_PER_SECOND=%v, pacing disabled", apiRatePerSecond)
		apiRatePerSecond = 0
	}

	return &Config{
		Env:               env,
		Port:              port,
		LogLevel:          logLevel,
		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		Blob:              blobCfg,
		UploadMaxMB:       uploadMaxMB,
		UploadAllowedMime: uploadAllowedMime,

		APIBaseURL:        apiBaseURL,
		APITimeoutSeconds: apiTimeoutSeconds,
		APIRatePerSecond:  apiRatePerSecond,

		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseBlobMode(key string, defaultVal string) string {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if mode == "" {
		return defaultVal
	}
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, mode, defaultVal)
		return defaultVal
	}
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

// SetOrNot masks a secret for startup banners.
func SetOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func NonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}
