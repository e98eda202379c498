package migrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMigration(t *testing.T) {
	dir := t.TempDir()

	restore := migrationTimestamp
	migrationTimestamp = func() string { return "20260101000000" }
	defer func() { migrationTimestamp = restore }()

	up := [][]byte{[]byte(`CREATE TABLE "users" ("id" bigserial PRIMARY KEY)`)}
	down := [][]byte{[]byte(`DROP TABLE "users"`)}

	path, err := WriteMigration(dir, "create users", up, down)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260101000000_create_users.sql"), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-- +goose Up\n"+
		`CREATE TABLE "users" ("id" bigserial PRIMARY KEY);`+"\n"+
		"-- +goose Down\n"+
		`DROP TABLE "users";`+"\n", string(contents))
}

func TestWriteMigration_ReversesDownOrder(t *testing.T) {
	dir := t.TempDir()

	restore := migrationTimestamp
	migrationTimestamp = func() string { return "20260101000001" }
	defer func() { migrationTimestamp = restore }()

	up := [][]byte{[]byte("ALTER TABLE a"), []byte("ALTER TABLE b")}
	down := [][]byte{[]byte("UNDO a"), []byte("UNDO b")}

	path, err := WriteMigration(dir, "two steps", up, down)
	require.NoError(t, err)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "-- +goose Up\n"+
		"ALTER TABLE a;\n"+
		"ALTER TABLE b;\n"+
		"-- +goose Down\n"+
		"UNDO b;\n"+
		"UNDO a;\n", string(contents))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "create_users", sanitizeName("create users"))
	assert.Equal(t, "migration", sanitizeName("   "))
	assert.Equal(t, "add_column", sanitizeName("  add column  "))
}
