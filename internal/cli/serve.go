package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/surekeys/rentals/internal/config"
	"github.com/surekeys/rentals/internal/logging"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP API for listings, bids, accounts and image uploads.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(flagConfig, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides config)")

	return cmd
}

func runServe(configFile string, port int) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Port = port
	}
	logger := logging.Setup(os.Stderr, cfg.DevMode, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	srv, err := a.server(ctx)
	if err != nil {
		return err
	}

	logger.Info("starting rentals", "port", cfg.Port, "storage", cfg.Storage.Driver, "dev_mode", cfg.DevMode)
	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port))
}
