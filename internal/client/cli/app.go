package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/tasksync/internal/client/client"
	"github.com/dmitrijs2005/tasksync/internal/client/config"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

// App carries what every command needs once flags and config are resolved.
type App struct {
	config *config.Config
	log    logging.Logger
	api    *client.APIClient
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

// globalFlags are the persistent flags shared by all commands. Non-empty
// values override the config file.
type globalFlags struct {
	configPath  string
	serverURL   string
	sessionFile string
	logLevel    string
}

func (a *App) init(f *globalFlags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.serverURL != "" {
		cfg.ServerURL = f.serverURL
	}
	if f.sessionFile != "" {
		cfg.SessionFile = f.sessionFile
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.config = cfg
	a.log = logging.NewJSON(a.errOut, cfg.LogLevel)

	tokens, err := loadTokens(cfg.SessionFile)
	if err != nil {
		return err
	}

	a.api = client.NewAPIClient(cfg.ServerURL,
		client.WithTokens(tokens),
		client.WithTokenListener(func(t models.Tokens) {
			if err := saveTokens(cfg.SessionFile, t); err != nil {
				a.log.Warn(context.Background(), "persist session failed", "error", err)
			}
		}),
	)
	return nil
}

func (a *App) requireLogin() error {
	if a.api.Tokens().AccessToken == "" {
		return fmt.Errorf("%w: run `tasksync login` first", client.ErrNotLoggedIn)
	}
	return nil
}
