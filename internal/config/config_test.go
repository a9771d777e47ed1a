package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullS3() S3Config {
	return S3Config{
		Endpoint:        "https://storage.yandexcloud.net",
		Region:          "ru-central1",
		Bucket:          "bucket",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		PublicBaseURL:   "https://storage.yandexcloud.net/bucket",
	}
}

func TestS3ConfigMissingRequired(t *testing.T) {
	assert.False(t, S3Config{}.IsConfigured())
	assert.True(t, fullS3().IsConfigured())

	missing := S3Config{Endpoint: "https://storage.yandexcloud.net", Bucket: "bucket"}.MissingRequired()
	assert.Equal(t, []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_PUBLIC_BASE_URL"}, missing)
}

func TestS3ConfigDiagnostics(t *testing.T) {
	tests := []struct {
		name      string
		cfg       S3Config
		wantLevel string
		wantCode  string
	}{
		{"empty", S3Config{}, "INFO", "s3_not_configured"},
		{"partial", S3Config{Endpoint: "https://storage.yandexcloud.net"}, "WARN", "s3_partial_config"},
		{"ready", fullS3(), "INFO", "s3_ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, code, _ := tt.cfg.Diagnostics()
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "ENV", "PORT", "LOG_FORMAT", "DATABASE_URL", "DATABASE_URL_POOLED", "DATABASE_URL_DIRECT",
		"BLOB_MODE", "EXPORTS_MODE", "AUTH_MODE", "AUTH_REQUIRED", "EMAIL_SENDER_MODE", "SMS_SENDER_MODE",
		"EXPORT_MAX_ITEMS", "EXPORT_DEFAULT_FORMAT", "SHOPPING_MAX_RANGE_DAYS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, BlobModeLocal, cfg.Blob.EffectiveExportsMode())
	assert.Equal(t, AuthModeNone, cfg.AuthMode)
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, EmailSenderLocal, cfg.EmailSenderMode)
	assert.Equal(t, SMSSenderLocal, cfg.SMSSenderMode)
	assert.Equal(t, 500, cfg.ExportMaxItems)
	assert.Equal(t, ExportFormatPDF, cfg.ExportDefaultFormat)
	assert.Equal(t, 31, cfg.ShoppingMaxRangeDays)
	assert.Empty(t, cfg.Warnings)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDatabaseURLPriority(t *testing.T) {
	t.Setenv("DATABASE_URL_POOLED", "postgres://pooled")
	t.Setenv("DATABASE_URL", "postgres://plain")
	t.Setenv("DATABASE_URL_DIRECT", "postgres://direct")
	assert.Equal(t, "postgres://pooled", Load().DatabaseURL)

	t.Setenv("DATABASE_URL_POOLED", "")
	assert.Equal(t, "postgres://plain", Load().DatabaseURL)

	t.Setenv("DATABASE_URL", "")
	assert.Equal(t, "postgres://direct", Load().DatabaseURL)
}

func TestLoadUnknownEnumFallsBackWithWarning(t *testing.T) {
	t.Setenv("SMS_SENDER_MODE", "carrier-pigeon")
	t.Setenv("EXPORT_DEFAULT_FORMAT", "XLSX")

	cfg := Load()
	assert.Equal(t, SMSSenderLocal, cfg.SMSSenderMode)
	assert.Equal(t, ExportFormatPDF, cfg.ExportDefaultFormat)
	require.Len(t, cfg.Warnings, 2)
	assert.Contains(t, cfg.Warnings[0], "EXPORT_DEFAULT_FORMAT")
	assert.Contains(t, cfg.Warnings[1], "SMS_SENDER_MODE")
}

func TestLoadAuthRequiredNeedsAuthMode(t *testing.T) {
	t.Setenv("AUTH_REQUIRED", "1")
	t.Setenv("AUTH_MODE", "")
	assert.False(t, Load().AuthRequired)

	t.Setenv("AUTH_MODE", "dev")
	assert.True(t, Load().AuthRequired)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "s3 exports without credentials",
			mutate:  func(c *Config) { c.Blob.ExportsMode, c.Blob.ExportsModeSet = BlobModeS3, true },
			wantErr: "S3_BUCKET",
		},
		{
			name:   "s3 exports configured",
			mutate: func(c *Config) { c.Blob.Mode, c.Blob.S3 = BlobModeS3, fullS3() },
		},
		{
			name:    "smtp without host",
			mutate:  func(c *Config) { c.EmailSenderMode = EmailSenderSMTP },
			wantErr: "SMTP_HOST",
		},
		{
			name:    "resend without key",
			mutate:  func(c *Config) { c.EmailSenderMode = EmailSenderResend },
			wantErr: "RESEND_API_KEY",
		},
		{
			name:    "sms gateway without url",
			mutate:  func(c *Config) { c.SMSSenderMode = SMSSenderHTTP },
			wantErr: "SMS_GATEWAY_URL",
		},
		{
			name: "production default secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.DatabaseURL = "postgres://x"
				c.AuthRequired = true
				c.JWTSecret = "change_me"
			},
			wantErr: "JWT_SECRET",
		},
		{
			name:    "production without database",
			mutate:  func(c *Config) { c.Env = "production" },
			wantErr: "DATABASE_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Env:             "local",
				SMTPPort:        587,
				SMTPFrom:        "from@example.com",
				EmailSenderMode: EmailSenderLocal,
				SMSSenderMode:   SMSSenderLocal,
				Blob:            BlobConfig{Mode: BlobModeLocal, ExportsMode: BlobModeLocal},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
