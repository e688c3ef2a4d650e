package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
)

func newTasksCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"t"},
		Short:   "Create, inspect and change tasks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return a.requireLogin()
		},
	}

	cmd.AddCommand(
		newTasksListCmd(a),
		newTasksShowCmd(a),
		newTasksCreateCmd(a),
		newTasksUpdateCmd(a),
		newTasksDeleteCmd(a),
		newTasksStatsCmd(a),
		newTasksUpcomingCmd(a),
	)
	return cmd
}

func addFilterFlags(cmd *cobra.Command, f *models.TaskFilter) {
	cmd.Flags().StringVar(&f.Status, "status", "", "only tasks with this status")
	cmd.Flags().StringVar(&f.Priority, "priority", "", "only tasks with this priority")
	cmd.Flags().StringVarP(&f.Search, "search", "q", "", "case-insensitive title search")
}

func newTasksListCmd(a *App) *cobra.Command {
	var filter models.TaskFilter

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := a.api.ListTasks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			renderTasks(a.out, tasks)
			return nil
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

func newTasksShowCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.api.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderTask(a.out, t)
			return nil
		},
	}
}

func newTasksCreateCmd(a *App) *cobra.Command {
	var in models.NewTask

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			t, err := a.api.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			success(a.out, "Created "+t.ID)
			renderTask(a.out, t)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&in.Description, "description", "d", "", "task description")
	f.StringVar(&in.Status, "status", "", "pending, in-progress or completed")
	f.StringVar(&in.Priority, "priority", "", "low, medium, high or urgent")
	f.StringVar(&in.DueDate, "due", "", "due date, YYYY-MM-DD or RFC3339")
	f.StringSliceVar(&in.Tags, "tags", nil, "comma separated tags")
	return cmd
}

func newTasksUpdateCmd(a *App) *cobra.Command {
	var title, description, status, priority string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Long:  "Only the flags given on the command line are sent; everything else is left as is.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.TaskPatch
			f := cmd.Flags()
			if f.Changed("title") {
				patch.Title = &title
			}
			if f.Changed("description") {
				patch.Description = &description
			}
			if f.Changed("status") {
				patch.Status = &status
			}
			if f.Changed("priority") {
				patch.Priority = &priority
			}

			t, err := a.api.UpdateTask(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			success(a.out, "Updated "+t.ID)
			renderTask(a.out, t)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVarP(&description, "description", "d", "", "new description")
	f.StringVar(&status, "status", "", "pending, in-progress or completed")
	f.StringVar(&priority, "priority", "", "low, medium, high or urgent")
	return cmd
}

func newTasksDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(a.out, "Task deleted successfully")
			return nil
		},
	}
}

func newTasksStatsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.api.Stats(cmd.Context())
			if err != nil {
				return err
			}
			renderStats(a.out, *st)
			return nil
		},
	}
}

func newTasksUpcomingCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upcoming",
		Short: "Show open tasks due within the next week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := a.api.Upcoming(cmd.Context())
			if err != nil {
				return err
			}
			renderUpcoming(a.out, tasks)
			return nil
		},
	}
}
