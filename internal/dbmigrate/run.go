package dbmigrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fdg312/mealcraft/migrations"
)

// Commands accepted by Run.
var Commands = []string{"up", "status", "down"}

// Run applies a goose command against dbURL. Migrations are read from dir when
// it is set, otherwise from the SQL files embedded in the binary.
func Run(ctx context.Context, command, dbURL, dir string, logger *zap.Logger) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}
	if !isCommand(command) {
		return fmt.Errorf("unsupported command %q (allowed: %s)", command, strings.Join(Commands, ", "))
	}

	source, dir, err := migrationSource(dir)
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	goose.SetBaseFS(source)
	goose.SetLogger(gooseLogger{logger: orNop(logger).Named("goose").Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}

func migrationSource(dir string) (fs.FS, string, error) {
	if dir == "" {
		return migrations.FS, ".", nil
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, "", fmt.Errorf("migrations dir: %w", err)
	}
	return os.DirFS(dir), ".", nil
}

func isCommand(c string) bool {
	for _, allowed := range Commands {
		if c == allowed {
			return true
		}
	}
	return false
}

type gooseLogger struct {
	logger *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatalf(strings.TrimSuffix(format, "\n"), v...)
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
