package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// RunMigrations executes all SQL migration files from migrationsFS in
// filename order. Forward-only; no rollback support. Safe to call on every
// startup — migrations are expected to use IF NOT EXISTS / idempotent DDL.
func (db *DB) RunMigrations(ctx context.Context, migrationsFS fs.FS) error {
	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("postgres: read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, entry.Name())
		if err != nil {
			return fmt.Errorf("postgres: read migration %s: %w", entry.Name(), err)
		}

		db.logger.Info("postgres: running migration", "file", entry.Name())
		if _, err := db.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("postgres: execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}
