package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tokoshop/internal/config"
	"tokoshop/internal/events"

	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Record order events from RabbitMQ in the activity feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Service = "worker"

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d, err := connect(ctx, cfg, connectOptions{documentStore: true, broker: true})
			if err != nil {
				return err
			}
			defer d.close(context.Background())
			if d.mq == nil {
				return errors.New("worker needs RabbitMQ")
			}

			stores, err := d.stores(ctx)
			if err != nil {
				return err
			}
			recorder := events.NewActivityRecorder(stores.Activity)

			slog.Info("worker consuming order events", "queue", events.ActivityQueue, "binding", events.ActivityBinding)
			err = d.mq.Consume(ctx, events.ActivityQueue, events.ActivityBinding, func(msg amqp.Delivery) error {
				return recorder.Handle(ctx, msg)
			})
			if err != nil {
				return err
			}
			slog.Info("worker stopped")
			return nil
		},
	}
}
