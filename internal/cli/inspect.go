package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Y0hy0h/uxac-lean-coffee/internal/config"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/engine"
	"github.com/Y0hy0h/uxac-lean-coffee/internal/store"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the projected view of a local store file",
		Long: `Open the local SQLite store, fold its current contents through the
reconciliation engine, and print the resulting view as JSON. Read-only.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd.Context(), rootOpts)
		},
	}
	return cmd
}

func inspect(ctx context.Context, rootOpts *RootOptions) error {
	cfg, err := config.Load(rootOpts.Config)
	if err != nil {
		return err
	}
	setupLogging(rootOpts.Verbose, cfg.LogLevel)

	paths := store.Paths{Workspace: cfg.Workspace}
	st, err := store.OpenSQLite(cfg.DatabasePath, paths)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Bootstrap(ctx); err != nil {
		return err
	}

	// Bootstrap emits exactly one delivery per subscription; fold those
	// and project.
	app := engine.NewApp(userFrom(cfg), paths, engine.UUIDGenerator{}, time.Now)
	for range store.Tags {
		d, ok := <-st.Deliveries()
		if !ok {
			break
		}
		app.Apply(engine.FromStore{Delivery: d})
	}

	fmt.Println(renderView(app))
	return nil
}
