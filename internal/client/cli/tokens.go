package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/filex"
)

// loadTokens reads persisted credentials. A missing file means logged out.
func loadTokens(path string) (models.Tokens, error) {
	var t models.Tokens
	b, ok, err := filex.ReadFileIfExists(path)
	if err != nil {
		return t, fmt.Errorf("read session %s: %w", path, err)
	}
	if !ok {
		return t, nil
	}
	if err := json.Unmarshal(b, &t); err != nil {
		return models.Tokens{}, fmt.Errorf("decode session %s: %w", path, err)
	}
	return t, nil
}

// saveTokens persists t, or removes the file once the tokens are cleared.
func saveTokens(path string, t models.Tokens) error {
	if t.AccessToken == "" && t.RefreshToken == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session %s: %w", path, err)
		}
		return nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return filex.WriteFileAtomic(path, b, 0o600)
}
