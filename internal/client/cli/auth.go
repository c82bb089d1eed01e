package cli

import (
	"github.com/dom/tickify/internal/client"
	"github.com/spf13/cobra"
)

func (a *app) signupCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.flagOrPrompt(cmd, email, "Email")
			if err != nil {
				return err
			}
			password, err := a.promptPassword(cmd, "Password")
			if err != nil {
				return err
			}

			result, err := a.api.Signup(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.signIn(result.Token); err != nil {
				return err
			}

			a.print(cmd, a.render.Success("Signed up as "+result.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (a *app) signinCmd() *cobra.Command {
	var email, accountName string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to the primary account or a named sub-account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.flagOrPrompt(cmd, email, "Email")
			if err != nil {
				return err
			}
			password, err := a.promptPassword(cmd, "Password")
			if err != nil {
				return err
			}

			result, err := a.api.Signin(cmd.Context(), email, password, optional(accountName))
			if err != nil {
				return err
			}
			if err := a.signIn(result.Token); err != nil {
				return err
			}

			a.print(cmd, a.render.Success("Signed in as "+a.session.DisplayName()))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&accountName, "account", "", "sub-account name (primary when empty)")
	return cmd
}

func (a *app) signoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the signed-in account on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.SignOut()
			if err := a.sessions.Save(a.session); err != nil {
				return err
			}
			a.print(cmd, a.render.Success("Signed out"))
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"profile"},
		Short:   "Show the current account and its checklist stats",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !a.authenticated() {
				return a.withStore(ctx, func(store client.ChecklistStore) error {
					items, err := store.List(ctx)
					if err != nil {
						return err
					}
					a.print(cmd, a.render.Guest(client.Stats(items)))
					return nil
				})
			}

			account, err := a.api.Me(ctx, a.session.Token)
			if err != nil {
				return err
			}
			stats, err := a.api.Stats(ctx, a.session.Token)
			if err != nil {
				return err
			}
			a.print(cmd, a.render.Profile(account, *stats))
			return nil
		},
	}
}

func (a *app) passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			current, err := a.promptPassword(cmd, "Current password")
			if err != nil {
				return err
			}
			next, err := a.promptPassword(cmd, "New password")
			if err != nil {
				return err
			}

			if err := a.api.ChangePassword(cmd.Context(), a.session.Token, current, next); err != nil {
				return err
			}
			a.print(cmd, a.render.Success("Password updated"))
			return nil
		},
	}
}

// optional maps an empty flag to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
