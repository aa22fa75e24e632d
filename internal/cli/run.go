package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/config"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/engine"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/model"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/remote"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a session against the configured store",
		Long: `Start the event loop against the configured store and read intents
from stdin, one per line:

  add <text>        submit a topic
  vote <id>         cast a vote
  unvote <id>       retract a vote
  delete <id>       delete a topic and its votes
  sort              re-sort topics by votes
  discuss <id>      select the topic to discuss (admin)
  finish            finish the current discussion (admin)
  again             reopen topic selection (admin)
  timer <minutes>   start the countdown (admin)
  notimer           clear the countdown (admin)
  poll | nopoll     open or clear the continuation poll (admin)
  moveon|stay|abstain   cast a continuation ballot
  view              print the projected view
  dismiss           dismiss the error banner`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), rootOpts)
		},
	}
	return cmd
}

func runSession(ctx context.Context, rootOpts *RootOptions) error {
	cfg, err := config.Load(rootOpts.Config)
	if err != nil {
		return err
	}
	setupLogging(rootOpts.Verbose, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths := store.Paths{Workspace: cfg.Workspace}
	st, err := openStore(ctx, cfg, paths)
	if err != nil {
		return err
	}
	defer st.Close()

	app := engine.NewApp(userFrom(cfg), paths, engine.UUIDGenerator{}, time.Now)
	loop := engine.NewLoop(app, st)

	go readIntents(ctx, loop, os.Stdin)

	if err := loop.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// openStore selects the websocket backend when a URL is configured,
// otherwise the local SQLite file.
func openStore(ctx context.Context, cfg *config.Config, paths store.Paths) (store.Store, error) {
	if cfg.StoreURL != "" {
		slog.Info("connecting to store", "url", cfg.StoreURL, "workspace", cfg.Workspace)
		return store.DialWS(ctx, cfg.StoreURL, paths)
	}

	slog.Info("opening local store", "path", cfg.DatabasePath, "workspace", cfg.Workspace)
	st, err := store.OpenSQLite(cfg.DatabasePath, paths)
	if err != nil {
		return nil, err
	}
	if err := st.Bootstrap(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// userFrom builds the session identity. A configured user id makes an
// authenticated session; admin capability still has to be granted by the
// auth collaborator, which the local store cannot do, so here granted
// mirrors the local toggle.
func userFrom(cfg *config.Config) model.User {
	if cfg.UserID == "" {
		return model.Anonymous{ID: model.UserID(uuid.NewString())}
	}
	return model.Authenticated{
		ID:               model.UserID(cfg.UserID),
		Email:            cfg.Email,
		AdminGranted:     remote.Got(cfg.AdminMode),
		AdminModeEnabled: cfg.AdminMode,
	}
}

// readIntents feeds stdin lines into the loop until EOF or cancel.
func readIntents(ctx context.Context, loop *engine.Loop, in *os.File) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == "view" {
			// Debug read from outside the loop goroutine; fine for a
			// prompt, not for anything that mutates.
			fmt.Println(renderView(loop.App()))
			continue
		}

		ev, err := ParseIntent(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		loop.Enqueue(ev)
	}
}
