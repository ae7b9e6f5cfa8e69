package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/gradebook/internal/db"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migration is one ordered schema step. Exactly one of SQL or Up is set.
type Migration struct {
	Version string
	Name    string
	SQL     string
	Up      func(ctx context.Context, tx *sql.Tx) error
}

// Migrator applies pending migrations and records them in schema_migrations
type Migrator struct {
	db         *db.DB
	logger     zerolog.Logger
	migrations []Migration
}

// NewMigrator creates a migrator over the embedded SQL files and the Go migrations
func NewMigrator(database *db.DB, logger zerolog.Logger) (*Migrator, error) {
	list, err := loadSQLMigrations(sqlFiles)
	if err != nil {
		return nil, err
	}
	list = append(list, goMigrations()...)

	sort.Slice(list, func(i, j int) bool { return list[i].Version < list[j].Version })
	for i := 1; i < len(list); i++ {
		if list[i].Version == list[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %s", list[i].Version)
		}
	}

	return &Migrator{db: database, logger: logger, migrations: list}, nil
}

func loadSQLMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var list []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}
		version, name := splitMigrationName(strings.TrimSuffix(entry.Name(), ".sql"))
		list = append(list, Migration{Version: version, Name: name, SQL: string(content)})
	}
	return list, nil
}

// splitMigrationName turns "001_create_core_tables" into ("001", "create_core_tables")
func splitMigrationName(base string) (string, string) {
	version, name, found := strings.Cut(base, "_")
	if !found {
		return base, base
	}
	return version, name
}

// Versions lists every known migration version in apply order
func (m *Migrator) Versions() []string {
	versions := make([]string, len(m.migrations))
	for i, mig := range m.migrations {
		versions[i] = mig.Version
	}
	return versions
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// Up applies every pending migration in version order, each in its own transaction
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return 0, err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range m.migrations {
		if applied[mig.Version] {
			m.logger.Debug().Str("version", mig.Version).Msg("Migration already applied, skipping")
			continue
		}

		err := m.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			if mig.Up != nil {
				if err := mig.Up(ctx, tx); err != nil {
					return err
				}
			} else if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
				return err
			}

			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				mig.Version, mig.Name, time.Now().UTC())
			return err
		})
		if err != nil {
			return count, fmt.Errorf("migration %s_%s failed: %w", mig.Version, mig.Name, err)
		}

		m.logger.Info().Str("version", mig.Version).Str("name", mig.Name).Msg("Migration applied")
		count++
	}

	return count, nil
}
