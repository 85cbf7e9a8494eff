package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/config"
	"github.com/surekeys/rentals/internal/email"
	"github.com/surekeys/rentals/internal/logging"
	"github.com/surekeys/rentals/internal/messaging"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume listing events and email agents",
		Long:  "Read listing events from Kafka and email agents when a landlord accepts or rejects their bid.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(flagConfig)
		},
	}
}

func runWorker(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger := logging.Setup(os.Stderr, cfg.DevMode, cfg.LogLevel)

	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("worker requires Kafka brokers (set RENTALS_KAFKA_BROKERS)")
	}

	d, err := openSQLite(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); cerr != nil {
			logger.Warn("closing database", "error", cerr)
		}
	}()

	notifier := email.NewNotifier(auth.NewUserStore(d), email.New(cfg.EmailSender()), cfg.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker consuming", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)
	return messaging.Consume(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, notifier.Handle)
}
