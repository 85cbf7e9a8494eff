package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/surekeys/rentals/internal/config"
	"github.com/surekeys/rentals/internal/logging"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create database tables and indexes",
		Long:  "Apply SQLite migrations and, with the mongo driver, create listing indexes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(flagConfig)
		},
	}
}

func runMigrate(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, cfg.DevMode, cfg.LogLevel)

	// Opening applies migrations and mongo indexes.
	a, err := openApp(context.Background(), cfg)
	if err != nil {
		return err
	}
	a.close()

	fmt.Printf("✓ Migrations applied (%s storage)\n", cfg.Storage.Driver)
	return nil
}
