// Package cli implements the todo command line.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"todo/internal/config"
	"todo/internal/db"
	"todo/pkg/savedstate"
	"todo/pkg/task"
)

// waitTimeout bounds how long a command waits for a screen to load.
const waitTimeout = 10 * time.Second

// App is what every command runs against.
type App struct {
	Repo  *task.Repository
	State savedstate.Handle
}

// Opener builds the App for the given config file path (empty for the
// default). The returned func releases it.
type Opener func(ctx context.Context, configPath string) (*App, func(), error)

// Open loads configuration, connects the configured store and opens the
// saved-state file.
func Open(ctx context.Context, configPath string) (*App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	bus, closeFn, err := db.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	state, err := savedstate.OpenFile(cfg.StatePath)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("open state: %w", err)
	}
	return &App{Repo: task.NewRepository(bus), State: state}, closeFn, nil
}

// NewRootCmd builds the todo command tree. open is called once per command
// invocation.
func NewRootCmd(open Opener) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage a local to-do list",
		Long: `todo keeps a list of tasks with a title, a description and a completed
flag. Tasks live in SQLite by default; PostgreSQL or an in-memory store can be
selected in ~/.todo/config.yaml or with TODO_STORE_DRIVER.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.todo/config.yaml)")

	// withApp opens the App around a command body.
	withApp := appRunner(func(run runFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, closeFn, err := open(ctx, configPath)
			if err != nil {
				return err
			}
			defer closeFn()
			return run(ctx, cmd, a, args)
		}
	})

	rootCmd.AddCommand(listCmd(withApp))
	rootCmd.AddCommand(filterCmd(withApp))
	rootCmd.AddCommand(addCmd(withApp))
	rootCmd.AddCommand(editCmd(withApp))
	rootCmd.AddCommand(showCmd(withApp))
	rootCmd.AddCommand(completeCmd(withApp, true))
	rootCmd.AddCommand(completeCmd(withApp, false))
	rootCmd.AddCommand(deleteCmd(withApp))
	rootCmd.AddCommand(clearCompletedCmd(withApp))
	rootCmd.AddCommand(deleteAllCmd(withApp))
	rootCmd.AddCommand(statsCmd(withApp))
	rootCmd.AddCommand(exportCmd(withApp))

	return rootCmd
}

// runFunc is a command body that needs an open App.
type runFunc func(ctx context.Context, cmd *cobra.Command, a *App, args []string) error

// appRunner adapts a runFunc to cobra's RunE.
type appRunner func(runFunc) func(*cobra.Command, []string) error

// awaitState reads states until ready accepts one.
func awaitState[S any](ctx context.Context, states <-chan S, ready func(S) bool) (S, error) {
	ctx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			var zero S
			return zero, fmt.Errorf("waiting for tasks: %w", ctx.Err())
		case s := <-states:
			if ready(s) {
				return s, nil
			}
		}
	}
}
