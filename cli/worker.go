package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/events"
	"github.com/ariebrainware/physiofriend-api/notification"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/spf13/cobra"
)

var errNoBroker = errors.New("RABBIT_URL is not set")

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume appointment events and send patient confirmations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx, config.LoadConfig())
		},
	}
}

func runWorker(ctx context.Context, cfg *config.Config) error {
	if cfg.RabbitURL == "" {
		return errNoBroker
	}
	logger := util.Logger()

	var mailer events.Mailer
	if email := notification.EmailFromConfig(cfg); email != nil {
		mailer = email
	}
	consumer := events.NewConsumer(events.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.RabbitExchange,
		Queue:    cfg.RabbitQueue,
	}, events.NewConfirmationHandler(mailer, logger, cfg.ClinicName))

	if err := consumer.Connect(); err != nil {
		return err
	}
	defer consumer.Close()

	logger.Info().Str("queue", cfg.RabbitQueue).Msg("worker consuming")
	return consumer.Run(ctx)
}
