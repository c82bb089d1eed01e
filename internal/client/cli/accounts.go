package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dom/tickify/internal/domain"
	"github.com/spf13/cobra"
)

func (a *app) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the sub-accounts of your email",
	}

	cmd.AddCommand(
		a.accountsListCmd(),
		a.accountsCreateCmd(),
		a.accountsSwitchCmd(),
		a.accountsRenameCmd(),
		a.accountsDeleteCmd(),
		a.accountsAvailableCmd(),
	)
	return cmd
}

func (a *app) accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the accounts of your email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			accounts, err := a.api.ListAccounts(cmd.Context(), a.session.Token)
			if err != nil {
				return err
			}
			a.print(cmd, a.render.Accounts(accounts, a.session.AccountID))
			return nil
		},
	}
}

func (a *app) accountsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a named sub-account under your email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			password, err := a.promptPassword(cmd, "Password for "+args[0])
			if err != nil {
				return err
			}

			created, err := a.api.CreateAccount(cmd.Context(), a.session.Token, args[0], password)
			if err != nil {
				return err
			}

			name := args[0]
			if created.AccountName != nil {
				name = *created.AccountName
			}
			a.print(cmd, a.render.Success(fmt.Sprintf("Created %s. Run `tickify accounts switch %s` to use it.", name, name)))
			return nil
		},
	}
}

func (a *app) accountsSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch [NAME]",
		Short: "Sign in to another account of your email; no NAME means the primary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			var accountName *string
			if len(args) == 1 {
				accountName = optional(args[0])
			}

			password, err := a.promptPassword(cmd, "Password")
			if err != nil {
				return err
			}

			token, _, err := a.api.Switch(cmd.Context(), a.session.Email, password, accountName)
			if err != nil {
				return err
			}
			if err := a.signIn(token); err != nil {
				return err
			}

			a.print(cmd, a.render.Success("Switched to "+a.session.DisplayName()))
			return nil
		},
	}
}

func (a *app) accountsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename NAME NEW_NAME",
		Short: "Rename a sub-account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			ctx := cmd.Context()

			account, err := a.findAccount(ctx, args[0])
			if err != nil {
				return err
			}
			renamed, err := a.api.RenameAccount(ctx, a.session.Token, account.ID.String(), args[1])
			if err != nil {
				return err
			}

			// The token still carries the old name until the next sign in.
			if renamed.ID.String() == a.session.AccountID {
				a.session.AccountName = renamed.AccountName
				if err := a.sessions.Save(a.session); err != nil {
					return err
				}
			}

			a.print(cmd, a.render.Success(fmt.Sprintf("Renamed %s to %s", args[0], *renamed.AccountName)))
			return nil
		},
	}
}

func (a *app) accountsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a sub-account and its checklist items after confirming your password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			ctx := cmd.Context()

			account, err := a.findAccount(ctx, args[0])
			if err != nil {
				return err
			}

			password, err := a.promptPassword(cmd, "Password for "+a.session.DisplayName())
			if err != nil {
				return err
			}
			if _, err := a.api.Verify(ctx, a.session.Email, password, a.session.AccountName); err != nil {
				return err
			}

			if err := a.api.DeleteAccount(ctx, a.session.Token, account.ID.String()); err != nil {
				return err
			}

			if account.ID.String() == a.session.AccountID {
				a.session.SignOut()
				if err := a.sessions.Save(a.session); err != nil {
					return err
				}
			}

			a.print(cmd, a.render.Success("Deleted "+args[0]))
			return nil
		},
	}
}

func (a *app) accountsAvailableCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "available NAME",
		Short: "Check whether a sub-account name is free for an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = a.session.Email
			}
			if email == "" {
				return domain.NewValidationError("email", "Email is required")
			}

			available, err := a.api.Availability(cmd.Context(), email, args[0])
			if err != nil {
				return err
			}
			if available {
				a.print(cmd, a.render.Success(fmt.Sprintf("%s is available", args[0])))
			} else {
				a.print(cmd, a.render.Error(fmt.Sprintf("%s is taken", args[0])))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email to check (defaults to the signed-in email)")
	return cmd
}

// findAccount resolves ref, a sub-account name or an account id, among the
// accounts of the session's email.
func (a *app) findAccount(ctx context.Context, ref string) (*domain.Account, error) {
	accounts, err := a.api.ListAccounts(ctx, a.session.Token)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if account.ID.String() == ref {
			return account, nil
		}
		if account.AccountName != nil && strings.EqualFold(*account.AccountName, ref) {
			return account, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}
