// Package cli is the homebase command tree.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"homebase/internal/config"
	"homebase/internal/database"
	"homebase/internal/store"
)

// App holds state shared by every subcommand
type App struct {
	ConfigPath string
}

// NewRootCmd builds the homebase command
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "homebase",
		Short:        "Household item tracker: due tasks, return-home checks and item history",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the API, metrics server and scheduler
  homebase serve --config configs/config.yaml

  # What is coming due at 08:20?
  homebase due --at 08:20

  # Parse a routine
  homebase routine "Leaves at 8:30 AM. Returns at 6:00 PM."
`),
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", config.DefaultPath, "Path to configuration file")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newDueCmd(app))
	cmd.AddCommand(newRoutineCmd())
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newSeedCmd(app))

	return cmd
}

// openStore builds the record store the configuration selects
func openStore(cfg *config.Config) (store.RecordStore, error) {
	switch cfg.Database.Driver {
	case "memory":
		if cfg.Database.Seed {
			return store.NewSeededMemory(), nil
		}
		return store.NewMemory(), nil
	case database.DriverSQLite, database.DriverPostgres:
		return database.Open(cfg.Database.Driver, cfg.Database.URL, cfg.Database.Seed)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}
}
