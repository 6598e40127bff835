package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestInitMigrationDeclaresTenantSchema(t *testing.T) {
	matches, err := fs.Glob(Migrations, "migrations/*_init.sql")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := fs.ReadFile(Migrations, matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS team_members",
		"CONSTRAINT team_members_dealer_user_key UNIQUE (dealer_id, user_id)",
		"role text NOT NULL CHECK (role IN ('owner','admin','member','viewer'))",
		"CREATE TABLE IF NOT EXISTS lead_activities",
		"CREATE TABLE IF NOT EXISTS impersonation_events",
		"asking_price numeric(12,2)",
		"DROP TABLE IF EXISTS users",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestValidateFSRejectsBadFiles(t *testing.T) {
	good := "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"
	cases := map[string]fstest.MapFS{
		"bad name": {"m/1_init.sql": {Data: []byte(good)}},
		"duplicate": {
			"m/20260101000000_a.sql": {Data: []byte(good)},
			"m/20260101000000_b.sql": {Data: []byte(good)},
		},
		"missing down": {"m/20260101000000_a.sql": {Data: []byte("-- +goose Up\n")}},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidateFS(fsys, "m"))
		})
	}

	ok := fstest.MapFS{
		"m/20260101000000_a.sql": {Data: []byte(good)},
		"m/README.md":            {Data: []byte("ignored")},
	}
	assert.NoError(t, ValidateFS(ok, "m"))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 9, 14, 5, 0, 0, time.UTC)
	path, err := CreateSQLMigration(dir, "Add Lead Tags!", now)
	require.NoError(t, err)
	assert.Equal(t, "20260309140500_add_lead_tags.sql", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	require.NoError(t, ValidateDir(filepath.Dir(path)))

	_, err = CreateSQLMigration(dir, "add lead tags", now)
	assert.Error(t, err, "same version and name must not overwrite")

	_, err = CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}
