package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 6)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if strings.TrimSpace(c.PublicBaseURL) == "" {
		missing = append(missing, "S3_PUBLIC_BASE_URL")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

func (c S3Config) Diagnostics() (level string, code string, msg string) {
	allEmpty := strings.TrimSpace(c.Endpoint) == "" &&
		strings.TrimSpace(c.Region) == "" &&
		strings.TrimSpace(c.Bucket) == "" &&
		strings.TrimSpace(c.AccessKeyID) == "" &&
		strings.TrimSpace(c.SecretAccessKey) == "" &&
		strings.TrimSpace(c.PublicBaseURL) == ""

	if allEmpty {
		return "INFO", "s3_not_configured", "not configured (all empty)"
	}

	missing := c.MissingRequired()
	if len(missing) > 0 {
		return "WARN", "s3_partial_config", fmt.Sprintf("partial config, missing=%v", missing)
	}

	return "INFO", "s3_ready", "ready"
}

// DiagnosticsSummary returns a detailed summary for logging (no secrets)
func (c S3Config) DiagnosticsSummary() string {
	accessKeyStatus := "not set"
	if strings.TrimSpace(c.AccessKeyID) != "" {
		accessKeyStatus = "set"
	}
	secretKeyStatus := "not set"
	if strings.TrimSpace(c.SecretAccessKey) != "" {
		secretKeyStatus = "set"
	}

	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		nonEmptyOrDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		accessKeyStatus,
		secretKeyStatus,
	)
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

type BlobConfig struct {
	Mode           string // local|s3|auto
	ExportsMode    string // local|s3|auto (override)
	ExportsModeSet bool
	S3             S3Config
}

func (c BlobConfig) EffectiveExportsMode() string {
	if c.ExportsModeSet {
		return c.ExportsMode
	}
	return c.Mode
}

const (
	AuthModeNone = "none"
	AuthModeDev  = "dev"

	EmailSenderLocal  = "local"
	EmailSenderSMTP   = "smtp"
	EmailSenderResend = "resend"

	SMSSenderLocal = "local"
	SMSSenderHTTP  = "http"

	ExportFormatPDF = "pdf"
	ExportFormatCSV = "csv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Env       string // local | staging | production
	Port      int
	LogLevel  string
	LogFormat string // json | console

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

	// Blob / S3
	Blob BlobConfig

	// Shopping list generation and exports
	ShoppingMaxRangeDays int
	ExportMaxItems       int
	ExportDefaultFormat  string

	// Authentication
	AuthMode      string // none | dev
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// Email sharing
	EmailSenderMode string // local | smtp | resend
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPUseTLS      bool
	ResendAPIKey    string
	ResendFrom      string

	// SMS sharing
	SMSSenderMode   string // local | http
	SMSGatewayURL   string
	SMSGatewayToken string
	SMSFrom         string
	SMSMaxChars     int

	// Migrations
	RunMigrationsOnStartup bool

	// Warnings collected while loading; logged by the caller once a logger exists.
	Warnings []string
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	cfg := &Config{}

	// APP_ENV (fallback to ENV for backward compat, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}
	cfg.Env = env

	// PORT (default: 8080)
	cfg.Port = envInt("PORT", 8080)

	// LOG_LEVEL (default: debug), LOG_FORMAT (default: json, console in local)
	cfg.LogLevel = envString("LOG_LEVEL", "debug")
	defaultFormat := "json"
	if env == "local" {
		defaultFormat = "console"
	}
	cfg.LogFormat = cfg.enumEnv("LOG_FORMAT", defaultFormat, "json", "console")

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	cfg.DatabaseURLPooled = strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	cfg.DatabaseURLRaw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.DatabaseURLDirect = strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	cfg.DatabaseURL = cfg.DatabaseURLPooled
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = cfg.DatabaseURLRaw
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = cfg.DatabaseURLDirect
	}

	cfg.RunMigrationsOnStartup = parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP")

	// ---------- CORS ----------
	cfg.CORSAllowedOrigins = parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	cfg.CORSAllowCredentials = parseBoolEnv("CORS_ALLOW_CREDENTIALS")

	// ---------- Rate Limiting ----------
	cfg.RateLimitRPS = envInt("RATE_LIMIT_RPS", 0)
	cfg.RateLimitBurst = envInt("RATE_LIMIT_BURST", 0)

	// ---------- Blob / S3 ----------
	blobMode := cfg.enumEnv("BLOB_MODE", BlobModeLocal, BlobModeLocal, BlobModeS3, BlobModeAuto)
	exportsModeSet := strings.TrimSpace(os.Getenv("EXPORTS_MODE")) != ""
	exportsMode := cfg.enumEnv("EXPORTS_MODE", BlobModeLocal, BlobModeLocal, BlobModeS3, BlobModeAuto)

	// S3_PRESIGN_TTL_SECONDS (default: 900, enforce > 0)
	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	cfg.Blob = BlobConfig{
		Mode:           blobMode,
		ExportsMode:    exportsMode,
		ExportsModeSet: exportsModeSet,
		S3: S3Config{
			Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
			Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
			AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
			PresignTTLSeconds: s3PresignTTL,
			PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
		},
	}

	// ---------- Shopping / Exports ----------
	cfg.ShoppingMaxRangeDays = positiveInt("SHOPPING_MAX_RANGE_DAYS", 31)
	cfg.ExportMaxItems = positiveInt("EXPORT_MAX_ITEMS", 500)
	cfg.ExportDefaultFormat = cfg.enumEnv("EXPORT_DEFAULT_FORMAT", ExportFormatPDF, ExportFormatPDF, ExportFormatCSV)

	// ---------- Auth ----------
	cfg.AuthMode = cfg.enumEnv("AUTH_MODE", AuthModeNone, AuthModeNone, AuthModeDev)
	cfg.AuthRequired = cfg.AuthMode != AuthModeNone && parseBoolEnv("AUTH_REQUIRED")
	cfg.JWTSecret = envString("JWT_SECRET", "change_me")
	if cfg.JWTSecret == "change_me" && env != "local" {
		cfg.warnf("JWT_SECRET is set to 'change_me' in non-local environment")
	}
	cfg.JWTIssuer = envString("JWT_ISSUER", "meal-planner")
	// JWT_TTL_MINUTES (default: 10080 = 7 days)
	cfg.JWTTTLMinutes = positiveInt("JWT_TTL_MINUTES", 10080)

	// ---------- Email ----------
	cfg.EmailSenderMode = cfg.enumEnv("EMAIL_SENDER_MODE", EmailSenderLocal, EmailSenderLocal, EmailSenderSMTP, EmailSenderResend)
	cfg.SMTPHost = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	cfg.SMTPPort = positiveInt("SMTP_PORT", 587)
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("SMTP_USERNAME"))
	cfg.SMTPPassword = strings.TrimSpace(os.Getenv("SMTP_PASSWORD"))
	cfg.SMTPFrom = envString("SMTP_FROM", "Meal Planner <no-reply@yourdomain.com>")
	cfg.SMTPUseTLS = parseBoolEnv("SMTP_USE_TLS")
	cfg.ResendAPIKey = strings.TrimSpace(os.Getenv("RESEND_API_KEY"))
	cfg.ResendFrom = envString("RESEND_FROM", "Meal Planner <onboarding@resend.dev>")

	// ---------- SMS ----------
	cfg.SMSSenderMode = cfg.enumEnv("SMS_SENDER_MODE", SMSSenderLocal, SMSSenderLocal, SMSSenderHTTP)
	cfg.SMSGatewayURL = strings.TrimSpace(os.Getenv("SMS_GATEWAY_URL"))
	cfg.SMSGatewayToken = strings.TrimSpace(os.Getenv("SMS_GATEWAY_TOKEN"))
	cfg.SMSFrom = envString("SMS_FROM", "MealPlanner")
	cfg.SMSMaxChars = positiveInt("SMS_MAX_CHARS", 1600)

	return cfg
}

// Validate performs the checks that must stop startup.
func (c *Config) Validate() error {
	var errs []error
	isProd := c.Env == "production" || c.Env == "staging"

	needsS3 := c.Blob.Mode == BlobModeS3 || c.Blob.EffectiveExportsMode() == BlobModeS3
	if needsS3 {
		if missing := c.Blob.S3.MissingRequired(); len(missing) > 0 {
			errs = append(errs, fmt.Errorf("blob: BLOB_MODE or EXPORTS_MODE is 's3' but S3 config is incomplete, missing: %s", strings.Join(missing, ", ")))
		}
	}

	switch c.EmailSenderMode {
	case EmailSenderSMTP:
		var missing []string
		if c.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
		if c.SMTPPort <= 0 {
			missing = append(missing, "SMTP_PORT")
		}
		if c.SMTPFrom == "" {
			missing = append(missing, "SMTP_FROM")
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Errorf("mailer: EMAIL_SENDER_MODE=smtp but config is incomplete, missing: %s", strings.Join(missing, ", ")))
		}
	case EmailSenderResend:
		if c.ResendAPIKey == "" {
			errs = append(errs, errors.New("mailer: EMAIL_SENDER_MODE=resend but RESEND_API_KEY is not set"))
		}
	}

	if c.SMSSenderMode == SMSSenderHTTP && c.SMSGatewayURL == "" {
		errs = append(errs, errors.New("sms: SMS_SENDER_MODE=http but SMS_GATEWAY_URL is not set"))
	}

	if isProd && c.AuthRequired && c.JWTSecret == "change_me" {
		errs = append(errs, fmt.Errorf("auth: JWT_SECRET must not be 'change_me' in %s with AUTH_REQUIRED=1", c.Env))
	}

	if isProd && c.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("db: no DATABASE_URL configured in %s", c.Env))
	}

	return errors.Join(errs...)
}

func (c *Config) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// enumEnv reads a lowercased env var restricted to allowed values.
// Unknown values fall back to defaultVal with a warning.
func (c *Config) enumEnv(key, defaultVal string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	c.warnf("unknown %s=%q, fallback to %s", key, v, defaultVal)
	return defaultVal
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:8081"}
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

func envString(key, defaultVal string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	return v
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func positiveInt(key string, defaultVal int) int {
	v := envInt(key, defaultVal)
	if v <= 0 {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
