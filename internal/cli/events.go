package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Autofarm/internal/mq"
)

// ErrNoBroker — RABBITMQ_URL не задан.
var ErrNoBroker = errors.New("RABBITMQ_URL is not set")

// NewEventsCmd создаёт команду чтения журнала событий из RabbitMQ.
func NewEventsCmd(configFn ConfigFunc, outputFn func() *Output) *cobra.Command {
	var queueName string
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail farm events from RabbitMQ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			queue, err := mq.QueueByName(queueName)
			if err != nil {
				return err
			}

			cfg, err := configFn()
			if err != nil {
				return err
			}
			if cfg.RabbitMQURL == "" {
				return ErrNoBroker
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger := slog.New(slog.DiscardHandler)
			conn, err := mq.Dial(cfg.RabbitMQURL, logger)
			if err != nil {
				return fmt.Errorf("connect RabbitMQ: %w", err)
			}
			defer conn.Close()

			if err := mq.SetupTopology(ctx, conn); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("listening on %s (Ctrl+C to stop)", queue))

			consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
				Queue:   queue,
				Handler: eventPrinter(out, limit, cancel),
			})

			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&queueName, "queue", "cycles", "Queue to read: cycles or accounts")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after N events (0 = unlimited)")

	return cmd
}

// eventPrinter печатает события и вызывает stop после limit сообщений.
func eventPrinter(out *Output, limit int, stop func()) mq.Handler {
	var seen int
	return func(_ context.Context, d *mq.Delivery) error {
		if out.JSONMode() {
			out.JSON(d.Message)
		} else {
			out.Line(formatEvent(d.Message)...)
		}

		seen++
		if limit > 0 && seen >= limit {
			stop()
		}
		return nil
	}
}

// formatEvent раскладывает событие в поля строки: время, тип, payload.
func formatEvent(msg mq.Message) []string {
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		payload = []byte("?")
	}
	return []string{
		msg.Timestamp.Local().Format(time.DateTime),
		string(msg.Type),
		string(payload),
	}
}
