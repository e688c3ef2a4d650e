package cli

import (
	"github.com/spf13/cobra"
)

func newActivitiesCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Show your activity log",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return a.requireLogin()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			acts, err := a.api.Activities(cmd.Context())
			if err != nil {
				return err
			}
			renderActivities(a.out, acts)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every entry of your activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.api.ClearActivities(cmd.Context()); err != nil {
				return err
			}
			success(a.out, "Activity logs cleared")
			return nil
		},
	})
	return cmd
}
