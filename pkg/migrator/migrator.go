// Package migrator turns the statement lists pkg/render's DDL renderer
// produces into goose-formatted migration files, and applies them with
// goose against a PostgreSQL connection.
package migrator

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
)

// WriteMigration renders up/down DDL statement lists into a single
// goose migration file named "<timestamp>_<name>.sql" inside dir, and
// returns the path written.
func WriteMigration(dir, name string, up, down [][]byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("migrator: mkdir %s: %w", dir, err)
	}

	filename := fmt.Sprintf("%s_%s.sql", migrationTimestamp(), sanitizeName(name))
	path := filepath.Join(dir, filename)

	var sb strings.Builder
	sb.WriteString("-- +goose Up\n")
	for _, stmt := range up {
		sb.WriteString(strings.TrimSpace(string(stmt)))
		sb.WriteString(";\n")
	}
	sb.WriteString("-- +goose Down\n")
	for i := len(down) - 1; i >= 0; i-- {
		sb.WriteString(strings.TrimSpace(string(down[i])))
		sb.WriteString(";\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", fmt.Errorf("migrator: write %s: %w", path, err)
	}
	return path, nil
}

// migrationTimestamp is the caller-stamped wall-clock time used in the
// migration filename; goose orders migrations by this prefix.
var migrationTimestamp = func() string {
	return time.Now().UTC().Format("20060102150405")
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		name = "migration"
	}
	return name
}

// Apply runs every pending migration in dir against db using the
// postgres dialect.
func Apply(db *sql.DB, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrator: set dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migrator: up: %w", err)
	}
	return nil
}

// Status returns the current applied migration version for dir.
func Status(db *sql.DB, dir string) (int64, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("migrator: set dialect: %w", err)
	}
	return goose.GetDBVersion(db)
}
