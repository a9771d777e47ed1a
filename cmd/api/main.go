package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/config"
	"github.com/fdg312/meal-planner/internal/dbmigrate"
	"github.com/fdg312/meal-planner/internal/httpserver"
	"github.com/fdg312/meal-planner/internal/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer logger.Sync()

	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}

	logStartupBanner(logger, cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if cfg.RunMigrationsOnStartup {
		sel, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			logger.Fatal("startup migrations", zap.Error(err))
		}

		logger.Info("startup migrations", zap.String("command", "up"), zap.String("using", sel.Source))
		if err := dbmigrate.Run("up", sel.URL, ""); err != nil {
			logger.Fatal("startup migrations failed", zap.Error(err))
		}
		logger.Info("startup migrations completed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := httpserver.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}
	defer server.Close()

	if err := server.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped")
}

// logStartupBanner logs a one-time summary of the resolved configuration.
// Secrets are reported only as "set" / "not set".
func logStartupBanner(logger *zap.Logger, cfg *config.Config) {
	logger.Info("meal planner api",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
	)

	logger.Info("database",
		zap.String("runtime_url", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled)),
		zap.String("pooled", setOrNot(cfg.DatabaseURLPooled)),
		zap.String("direct", setOrNot(cfg.DatabaseURLDirect)),
		zap.Bool("migrations_on_startup", cfg.RunMigrationsOnStartup),
	)

	logger.Info("auth",
		zap.String("auth_mode", cfg.AuthMode),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.String("jwt_secret", secretStatus(cfg.JWTSecret, "change_me")),
		zap.Int("jwt_ttl_minutes", cfg.JWTTTLMinutes),
	)

	blobFields := []zap.Field{
		zap.String("blob_mode", cfg.Blob.Mode),
		zap.String("exports_mode", displayExportsMode(cfg)),
		zap.String("exports_effective", cfg.Blob.EffectiveExportsMode()),
	}
	if cfg.Blob.EffectiveExportsMode() != config.BlobModeLocal {
		blobFields = append(blobFields, zap.String("s3", cfg.Blob.S3.DiagnosticsSummary()))
	}
	logger.Info("blob", blobFields...)

	logger.Info("shopping",
		zap.Int("max_range_days", cfg.ShoppingMaxRangeDays),
		zap.Int("export_max_items", cfg.ExportMaxItems),
		zap.String("export_default_format", cfg.ExportDefaultFormat),
	)

	mailFields := []zap.Field{zap.String("email_sender", cfg.EmailSenderMode)}
	switch cfg.EmailSenderMode {
	case config.EmailSenderSMTP:
		mailFields = append(mailFields,
			zap.String("smtp_host", nonEmptyOrDash(cfg.SMTPHost)),
			zap.Int("smtp_port", cfg.SMTPPort),
			zap.String("smtp_from", nonEmptyOrDash(cfg.SMTPFrom)),
			zap.String("smtp_username", setOrNot(cfg.SMTPUsername)),
			zap.String("smtp_password", setOrNot(cfg.SMTPPassword)),
			zap.Bool("smtp_use_tls", cfg.SMTPUseTLS),
		)
	case config.EmailSenderResend:
		mailFields = append(mailFields,
			zap.String("resend_api_key", setOrNot(cfg.ResendAPIKey)),
			zap.String("resend_from", nonEmptyOrDash(cfg.ResendFrom)),
		)
	}
	logger.Info("mailer", mailFields...)

	smsFields := []zap.Field{
		zap.String("sms_sender", cfg.SMSSenderMode),
		zap.Int("sms_max_chars", cfg.SMSMaxChars),
	}
	if cfg.SMSSenderMode == config.SMSSenderHTTP {
		smsFields = append(smsFields,
			zap.String("gateway_url", nonEmptyOrDash(cfg.SMSGatewayURL)),
			zap.String("gateway_token", setOrNot(cfg.SMSGatewayToken)),
		)
	}
	logger.Info("sms", smsFields...)
}

// ---- helpers (no secrets) ----

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (default, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (will use in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}

func displayExportsMode(cfg *config.Config) string {
	if cfg.Blob.ExportsModeSet {
		return cfg.Blob.ExportsMode
	}
	return fmt.Sprintf("(inherits BLOB_MODE=%s)", cfg.Blob.Mode)
}
