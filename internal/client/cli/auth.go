package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tasksync/internal/common"
)

func newRegisterCmd(a *App) *cobra.Command {
	var userName, email, profession string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if userName, err = valueOrPrompt(userName, a.reader, "Username", a.out); err != nil {
				return err
			}
			if email, err = valueOrPrompt(email, a.reader, "Email", a.out); err != nil {
				return err
			}
			if profession, err = valueOrPrompt(profession, a.reader, "Profession", a.out); err != nil {
				return err
			}

			password, err := GetPassword(a.out, "Password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			u, err := a.api.Register(cmd.Context(), userName, email, string(password), profession)
			if err != nil {
				return err
			}
			success(a.out, fmt.Sprintf("Registered %s <%s>, now run `tasksync login`", u.UserName, u.Email))
			return nil
		},
	}

	cmd.Flags().StringVarP(&userName, "username", "u", "", "account handle")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&profession, "profession", "p", "", "profession shown on the profile")
	return cmd
}

func newLoginCmd(a *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store credentials locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email, err = valueOrPrompt(email, a.reader, "Email", a.out); err != nil {
				return err
			}

			password, err := GetPassword(a.out, "Password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			u, err := a.api.Login(cmd.Context(), email, string(password))
			if err != nil {
				return err
			}
			success(a.out, "Logged in as "+u.UserName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			// Local credentials are gone either way.
			if err := a.api.Logout(cmd.Context()); err != nil {
				a.log.Warn(cmd.Context(), "server logout failed", "error", err)
			}
			success(a.out, "Logged out successfully")
			return nil
		},
	}
}

func newWhoamiCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			u, err := a.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s> %s\n", styles.Title.Render(u.UserName), u.Email, styles.Muted.Render(u.Profession))
			return nil
		},
	}
}
