// Command migrate applies or reverts the PostgreSQL schema.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lib/pq"

	"github.com/tasktrack/tasktrack/migrations"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		direction   = flag.String("direction", "up", "Migration direction: up or down")
		timeout     = flag.Duration("timeout", 30*time.Second, "Overall timeout")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, logger, *databaseURL, migrations.Direction(*direction)); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, databaseURL string, dir migrations.Direction) error {
	scripts, err := migrations.Load(dir)
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	for _, s := range scripts {
		if err := apply(ctx, db, s); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) {
				logger.Error("postgres rejected migration",
					"migration", s.Name,
					"code", string(pqErr.Code),
					"detail", pqErr.Detail,
				)
			}
			return fmt.Errorf("apply %s %s: %w", s.Name, dir, err)
		}
		logger.Info("migration applied", "migration", s.Name, "direction", string(dir))
	}

	logger.Info("migrations complete", "count", len(scripts), "direction", string(dir))
	return nil
}

// apply runs one script inside a transaction.
func apply(ctx context.Context, db *sql.DB, s migrations.Script) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, s.SQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
