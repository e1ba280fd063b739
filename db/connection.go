// Package db opens the SQLite run-history ledger kept in the result folder
// and applies its schema migrations.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rssalg/rssalg/errors"
)

// SQLiteBusyTimeoutMS is how long a connection waits on a locked database
const SQLiteBusyTimeoutMS = 5000

// Open opens a SQLite database at the specified path with WAL, foreign keys
// and a busy timeout. If logger is provided, logs database operations;
// otherwise operates silently.
func Open(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening database", "path", path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	pragmas := []struct {
		stmt string
		desc string
	}{
		{"PRAGMA journal_mode = WAL", "enable WAL mode"},
		{"PRAGMA foreign_keys = ON", "enable foreign keys"},
		{fmt.Sprintf("PRAGMA busy_timeout = %d", SQLiteBusyTimeoutMS), "set busy timeout"},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to %s", p.desc)
		}
	}

	if logger != nil {
		logger.Debugw("Database opened",
			"path", path,
			"wal_mode", true,
			"foreign_keys", true,
		)
	}

	return db, nil
}

// OpenWithMigrations opens the database and brings its schema up to date
func OpenWithMigrations(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	db, err := Open(path, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	if err := Migrate(db, logger); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to migrate %s", path)
	}
	return db, nil
}
