package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
)

func TestTokensRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	got, err := loadTokens(path)
	require.NoError(t, err)
	assert.Equal(t, models.Tokens{}, got, "missing file means logged out")

	want := models.Tokens{AccessToken: "a", RefreshToken: "r", UserID: "u"}
	require.NoError(t, saveTokens(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err = loadTokens(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, saveTokens(path, models.Tokens{}))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, saveTokens(path, models.Tokens{}), "clearing twice is fine")
}

func TestLoadTokens_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := loadTokens(path)
	assert.Error(t, err)
}
