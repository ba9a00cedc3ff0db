package blob

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	appcfg "github.com/fdg312/mealcraft/internal/config"
)

// NewBlobStore builds a blob store using mode local|s3|auto.
// Local mode returns a nil Store: photo upload is disabled.
func NewBlobStore(ctx context.Context, cfg appcfg.BlobConfig, logger *zap.Logger) (Store, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("blob")

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		logger.Info("photo storage disabled", zap.String("mode", "local"), zap.String("reason", "forced"))
		return nil, appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto:
		if !cfg.S3.IsConfigured() {
			level, code, msg := cfg.S3.Diagnostics()
			logger.Info("s3 diagnostics",
				zap.String("level", level),
				zap.String("code", code),
				zap.String("detail", msg),
				zap.String("summary", cfg.S3.DiagnosticsSummary()),
			)
			logger.Info("photo storage disabled", zap.String("mode", "local"), zap.String("reason", "auto, S3 not configured"))
			return nil, appcfg.BlobModeLocal, nil
		}

		store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			logger.Warn("s3 init failed, fallback to local", zap.Error(err))
			return nil, appcfg.BlobModeLocal, nil
		}

		logger.Info("photo storage ready", zap.String("mode", "s3"), zap.String("summary", cfg.S3.DiagnosticsSummary()))
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if !cfg.S3.IsConfigured() {
			missing := cfg.S3.MissingRequired()
			logger.Error("s3 config incomplete",
				zap.String("code", "s3_config_incomplete"),
				zap.Strings("missing", missing),
				zap.String("summary", cfg.S3.DiagnosticsSummary()),
			)
			return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		store, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			logger.Error("s3 init failed", zap.Error(err))
			return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
		}

		logger.Info("photo storage ready", zap.String("mode", "s3"), zap.String("summary", cfg.S3.DiagnosticsSummary()))
		return store, appcfg.BlobModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}
