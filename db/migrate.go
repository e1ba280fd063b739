package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rssalg/rssalg/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// Migrate runs all pending migrations in file name order. Each migration and
// its schema_migrations row are committed together.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	files, err := migrationFiles()
	if err != nil {
		return err
	}

	applied := 0
	for _, filename := range files {
		version := strings.SplitN(filename, "_", 2)[0]

		done, err := isApplied(db, version)
		if err != nil {
			return errors.Wrapf(err, "check %s", filename)
		}
		if done {
			if logger != nil {
				logger.Debugw("Skipping migration (already applied)", "migration", filename)
			}
			continue
		}

		if logger != nil {
			logger.Debugw("Applying migration", "migration", filename, "version", version)
		}
		if err := apply(db, filename, version); err != nil {
			return err
		}
		applied++
	}

	if logger != nil {
		logger.Debugw("Migrations complete",
			"total_migrations", len(files),
			"applied", applied,
		)
	}
	return nil
}

// migrationFiles lists the embedded migrations;
// 000_create_schema_migrations.sql sorts first
func migrationFiles() ([]string, error) {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// isApplied reports whether version is recorded. Before migration 000 has
// run the schema_migrations table does not exist; only 000 may run then.
func isApplied(db *sql.DB, version string) (bool, error) {
	var hasTable int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'").Scan(&hasTable)
	if err != nil {
		return false, err
	}
	if hasTable == 0 {
		if version != "000" {
			return false, errors.Newf("schema_migrations table missing, but migration is not 000: %s", version)
		}
		return false, nil
	}

	var exists bool
	if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func apply(db *sql.DB, filename, version string) error {
	sqlBytes, err := migrations.ReadFile(path.Join(migrationsDir, filename))
	if err != nil {
		return errors.Wrapf(err, "read %s", filename)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin tx for %s", filename)
	}
	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "execute %s", filename)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "record %s", filename)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit %s", filename)
	}
	return nil
}
