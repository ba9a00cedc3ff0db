package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/config"
	"github.com/fdg312/mealcraft/internal/dbmigrate"
	"github.com/fdg312/mealcraft/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: go run ./cmd/migrate [%s] [migrations-dir]\n", strings.Join(dbmigrate.Commands, "|"))
		os.Exit(2)
	}
	command := os.Args[1]

	// optional: read migrations from disk instead of the embedded set
	var dir string
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	cfg := config.Load()
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sel, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	if sel.Warning != "" {
		logger.Warn("migrate", zap.String("warning", sel.Warning))
	}
	logger.Info("migrate", zap.String("command", command), zap.String("using", sel.Source))

	if err := dbmigrate.Run(context.Background(), command, sel.URL, dir, logger); err != nil {
		logger.Fatal("migrate failed", zap.String("command", command), zap.Error(err))
	}

	logger.Info("migrate completed", zap.String("command", command))
}
