package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree bound to the given streams.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	flags := &globalFlags{}
	app := &App{reader: bufio.NewReader(in), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "tasksync",
		Short: "Command-line client for the tasksync server",
		Long: `tasksync manages your tasks on a tasksync server.

Mutations go through the HTTP API; "tasksync watch" keeps a realtime
connection open and shows changes made from other sessions as they happen.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to a JSON or YAML config file")
	pf.StringVarP(&flags.serverURL, "server", "s", "", "server base URL (default http://localhost:8080)")
	pf.StringVar(&flags.sessionFile, "session-file", "", "where credentials are stored between runs")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newTasksCmd(app),
		newActivitiesCmd(app),
		newWatchCmd(app),
	)

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root
}

// Execute runs the CLI against the process streams.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error: "+err.Error()))
		return err
	}
	return nil
}
