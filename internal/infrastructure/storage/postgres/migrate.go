package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"khaata/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded migrations in name order. Each file runs in
// its own transaction and is recorded in sys_migrations.
func Migrate(ctx context.Context, m *TxManager) error {
	if _, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sys_migrations (
			name        TEXT PRIMARY KEY,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("create sys_migrations: %w", err)
	}

	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		applied := false
		err = m.RunInTransaction(ctx, func(ctx context.Context) error {
			q := m.GetQuerier(ctx)
			tag, err := q.Exec(ctx, `INSERT INTO sys_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING`, name)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return nil
			}
			if _, err := q.Exec(ctx, string(body)); err != nil {
				return err
			}
			applied = true
			return nil
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if applied {
			logger.Info(ctx, "migration applied", "name", name)
		}
	}
	return nil
}
