package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"storefront/internal/logger"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

var ErrUnknownDirection = errors.New("unknown migration direction")

// Migrate applies every pending migration (Up) or rolls back the latest applied one (Down).
func Migrate(ctx context.Context, db *sql.DB, dir Direction) error {
	return migrate(ctx, db, migrationFiles, "migrations", dir)
}

func migrate(ctx context.Context, db *sql.DB, fsys fs.FS, root string, dir Direction) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	files, err := fs.Glob(fsys, path.Join(root, "*.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	switch dir {
	case Up:
		return migrateUp(ctx, db, fsys, files)
	case Down:
		return migrateDown(ctx, db, fsys, files)
	default:
		return fmt.Errorf("%w: %q (use up or down)", ErrUnknownDirection, dir)
	}
}

func migrateUp(ctx context.Context, db *sql.DB, fsys fs.FS, files []string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "storage"),
		zap.String("method", "MigrateUp"),
	)

	applied := 0
	for _, file := range files {
		version := path.Base(file)

		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", version, err)
		}
		if exists {
			continue
		}

		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}

		log.Info("applying migration", zap.String("version", version))
		if _, err := db.ExecContext(ctx, section(string(content), "Up")); err != nil {
			return fmt.Errorf("migration %s failed: %w", version, err)
		}

		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", version, err)
		}
		applied++
	}

	log.Debug("migrations up to date", zap.Int("applied", applied))
	return nil
}

func migrateDown(ctx context.Context, db *sql.DB, fsys fs.FS, files []string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "storage"),
		zap.String("method", "MigrateDown"),
	)

	var last string
	err := db.QueryRowContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`,
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find last migration: %w", err)
	}

	var file string
	for _, f := range files {
		if path.Base(f) == last {
			file = f
			break
		}
	}
	if file == "" {
		return fmt.Errorf("migration file not found for version %s", last)
	}

	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	log.Info("rolling back migration", zap.String("version", last))
	if _, err := db.ExecContext(ctx, section(string(content), "Down")); err != nil {
		return fmt.Errorf("rollback %s failed: %w", last, err)
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, last); err != nil {
		return fmt.Errorf("remove migration record %s: %w", last, err)
	}
	return nil
}

// section returns the statements between "-- +migrate <name>" and the next marker.
func section(content, name string) string {
	var b strings.Builder
	in := false

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-- +migrate") {
			if in {
				break
			}
			in = strings.Contains(line, "-- +migrate "+name)
			continue
		}
		if in {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
