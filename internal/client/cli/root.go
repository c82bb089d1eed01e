// Package cli wires the tickify commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dom/tickify/internal/client"
	"github.com/dom/tickify/internal/client/view"
	"github.com/dom/tickify/internal/domain"
	"github.com/dom/tickify/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultAPIURL = "http://localhost:8080"

// app is the state shared by one invocation's commands.
type app struct {
	apiURL   string
	stateDir string
	verbose  bool

	logger   *zap.Logger
	sessions *client.SessionStore
	session  *client.Session
	api      *client.APIClient
	render   *view.Renderer
	in       *bufio.Reader
	now      func() time.Time
}

// NewRootCommand builds the tickify command tree.
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "tickify",
		Short: "Keep a checklist, signed in or as a guest",
		Long: `Tickify keeps a checklist of items with a priority and a done flag.

Signed in, items live on the Tickify server under your account. Without an
account, items are kept on this machine only and never sync.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", envOr("TICKIFY_API", defaultAPIURL), "Tickify server URL")
	root.PersistentFlags().StringVar(&a.stateDir, "state-dir", envOr("TICKIFY_HOME", defaultStateDir()), "directory for the session and guest items")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log API requests")

	root.AddCommand(
		a.signupCmd(),
		a.signinCmd(),
		a.signoutCmd(),
		a.whoamiCmd(),
		a.passwdCmd(),
		a.accountsCmd(),
		a.listCmd(),
		a.addCmd(),
		a.doneCmd(true),
		a.doneCmd(false),
		a.editCmd(),
		a.priorityCmd(),
		a.rmCmd(),
		a.shareCmd(),
		a.statsCmd(),
		a.exportCmd(),
		a.watchCmd(),
		a.darkmodeCmd(),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprint(os.Stderr, view.New(false).Error(errorMessage(err)))
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "development")
	if err != nil {
		return err
	}
	a.logger = logger

	a.sessions = client.NewSessionStore(a.stateDir)
	a.session, err = a.sessions.Load()
	if err != nil {
		return err
	}

	a.api = client.NewAPIClient(a.apiURL, logger)
	a.render = view.New(a.session.DarkMode)
	a.in = bufio.NewReader(cmd.InOrStdin())
	return nil
}

func (a *app) authenticated() bool {
	return a.session.Authenticated(a.now())
}

// requireAuth fails for guest sessions with a hint to sign in.
func (a *app) requireAuth() error {
	if !a.authenticated() {
		return fmt.Errorf("%w: sign in first with `tickify signin`", domain.ErrUnauthorized)
	}
	return nil
}

// withStore opens the checklist store for the current session.
func (a *app) withStore(ctx context.Context, fn func(client.ChecklistStore) error) error {
	store, err := client.NewChecklistStore(ctx, a.session, a.api, a.stateDir, a.now())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (a *app) signIn(token string) error {
	if err := a.session.SignIn(token); err != nil {
		return err
	}
	return a.sessions.Save(a.session)
}

func (a *app) print(cmd *cobra.Command, s string) {
	fmt.Fprint(cmd.OutOrStdout(), s)
}

// errorMessage strips the error class prefix for display.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return domain.Message(err)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".tickify"
	}
	return filepath.Join(dir, "tickify")
}
