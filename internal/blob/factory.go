package blob

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	appcfg "github.com/fdg312/meal-planner/internal/config"
)

// NewExportStore builds the store for shopping list exports using the
// effective exports mode (local|s3|auto). A nil store means exports are
// kept in the database.
func NewExportStore(ctx context.Context, cfg appcfg.BlobConfig, logger *zap.Logger) (Store, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("blob")

	mode := strings.ToLower(strings.TrimSpace(cfg.EffectiveExportsMode()))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		log.Info("blob store selected", zap.String("mode", "local"), zap.String("reason", "forced"))
		return nil, appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto:
		if !cfg.S3.IsConfigured() {
			level, code, msg := cfg.S3.Diagnostics()
			fields := []zap.Field{zap.String("code", code), zap.String("summary", cfg.S3.DiagnosticsSummary())}
			if level == "WARN" {
				log.Warn("s3 "+msg, fields...)
			} else {
				log.Info("s3 "+msg, fields...)
			}
			log.Info("blob store selected", zap.String("mode", "local"), zap.String("reason", "auto, S3 not configured"))
			return nil, appcfg.BlobModeLocal, nil
		}

		store, err := newS3(ctx, cfg.S3)
		if err != nil {
			log.Warn("s3 init failed, falling back to local", zap.Error(err))
			return nil, appcfg.BlobModeLocal, nil
		}

		log.Info("blob store selected",
			zap.String("mode", "s3"),
			zap.String("reason", "auto, configured"),
			zap.String("summary", cfg.S3.DiagnosticsSummary()),
		)
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if !cfg.S3.IsConfigured() {
			missing := cfg.S3.MissingRequired()
			log.Error("s3 config incomplete",
				zap.String("code", "s3_config_incomplete"),
				zap.Strings("missing", missing),
				zap.String("summary", cfg.S3.DiagnosticsSummary()),
			)
			return nil, "", fmt.Errorf("EXPORTS_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		store, err := newS3(ctx, cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("EXPORTS_MODE=s3 init failed: %w", err)
		}

		log.Info("blob store selected",
			zap.String("mode", "s3"),
			zap.String("reason", "forced"),
			zap.String("summary", cfg.S3.DiagnosticsSummary()),
		)
		return store, appcfg.BlobModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func newS3(ctx context.Context, c appcfg.S3Config) (*S3Store, error) {
	return NewS3Store(ctx, c.Endpoint, c.Region, c.Bucket, c.AccessKeyID, c.SecretAccessKey)
}
