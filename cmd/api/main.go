package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/config"
	"github.com/fdg312/mealcraft/internal/dbmigrate"
	"github.com/fdg312/mealcraft/internal/httpserver"
	"github.com/fdg312/mealcraft/internal/logging"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printStartupBanner(cfg, logger)

	if err := validateConfig(cfg); err != nil {
		return err
	}

	if cfg.RunMigrationsOnStartup {
		sel, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			return fmt.Errorf("startup migrations: %w", err)
		}
		logger.Info("startup migrations", zap.String("command", "up"), zap.String("using", sel.Source))
		if err := dbmigrate.Run(ctx, "up", sel.URL, "", logger); err != nil {
			return fmt.Errorf("startup migrations failed: %w", err)
		}
		logger.Info("startup migrations completed")
	}

	server, err := httpserver.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer server.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// Secrets are shown only as "set" / "not set".
func printStartupBanner(cfg *config.Config, logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("database", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled)),
		zap.String("database_direct", config.SetOrNot(cfg.DatabaseURLDirect)),
		zap.Bool("migrations_on_startup", cfg.RunMigrationsOnStartup),
		zap.Strings("cors_origins", cfg.CORSAllowedOrigins),
		zap.Int("rate_limit_rps", cfg.RateLimitRPS),
		zap.String("blob_mode", cfg.Blob.Mode),
		zap.Int("upload_max_mb", cfg.UploadMaxMB),
	}
	if cfg.Blob.Mode != config.BlobModeLocal {
		fields = append(fields, zap.String("s3", cfg.Blob.S3.DiagnosticsSummary()))
	}
	logger.Info("mealcraft api", fields...)
}

// validateConfig performs checks that only matter in non-local envs or hard S3 mode.
func validateConfig(cfg *config.Config) error {
	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			return fmt.Errorf("blob: BLOB_MODE is 's3' but S3 config is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	}

	isProd := cfg.Env == "production" || cfg.Env == "staging"
	if isProd && cfg.DatabaseURL == "" {
		return fmt.Errorf("db: no DATABASE_URL configured in %s", cfg.Env)
	}
	return nil
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
