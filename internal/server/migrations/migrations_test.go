package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	b, err := fs.ReadFile(Migrations, "00001_init.sql")
	require.NoError(t, err)
	body := string(b)

	for _, want := range []string{"-- +goose Up", "-- +goose Down", "CREATE TABLE IF NOT EXISTS tasks", "title       TEXT NOT NULL UNIQUE"} {
		require.True(t, strings.Contains(body, want), "missing %q", want)
	}
}
