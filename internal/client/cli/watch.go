package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/client/session"
	"github.com/dmitrijs2005/tasksync/internal/client/syncstore"
)

func newWatchCmd(a *App) *cobra.Command {
	var filter models.TaskFilter

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow your tasks live until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			return a.watch(cmd.Context(), filter, nil)
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

// watch loads the listing, then redraws it after every applied change until
// ctx is cancelled. onEvent, when set, sees every decoded broadcast.
func (a *App) watch(ctx context.Context, filter models.TaskFilter, onEvent func(syncstore.Event)) error {
	var (
		mu    sync.Mutex
		store *syncstore.Store
	)
	redraw := func() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(a.out, styles.Title.Render("tasksync · "+time.Now().Format(time.TimeOnly)))
		renderStats(a.out, store.Stats())
		renderTasks(a.out, store.Tasks())
	}
	store = syncstore.New(a.log, syncstore.WithOnChange(redraw))

	opts := []session.Option{session.WithReconnectInterval(a.config.ReconnectInterval)}
	if onEvent != nil {
		opts = append(opts, session.WithEventHook(onEvent))
	}
	s := session.New(a.api, store, a.log, opts...)

	if err := s.Load(ctx, filter); err != nil {
		return err
	}
	return s.Run(ctx)
}
