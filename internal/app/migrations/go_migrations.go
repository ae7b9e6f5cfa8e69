package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

func goMigrations() []Migration {
	return []Migration{
		{Version: "002", Name: "add_user_email_role", Up: addUserEmailRole},
	}
}

// addUserEmailRole upgrades user tables created before accounts had an email and a role
func addUserEmailRole(ctx context.Context, tx *sql.Tx) error {
	columns, err := tableColumns(ctx, tx, "users")
	if err != nil {
		return err
	}

	if !columns["email"] {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE users ADD COLUMN email TEXT`); err != nil {
			return fmt.Errorf("failed to add users.email: %w", err)
		}
	}
	if !columns["role"] {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE users ADD COLUMN role TEXT NOT NULL DEFAULT 'user'`); err != nil {
			return fmt.Errorf("failed to add users.role: %w", err)
		}
	}
	return nil
}

func tableColumns(ctx context.Context, tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}
