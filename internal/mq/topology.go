package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — topic-обменник журнала фермы.
const ExchangeEvents Exchange = "autofarm.events"

// Очереди журнала.
const (
	QueueCycles   Queue = "events.cycles"
	QueueAccounts Queue = "events.accounts"
)

// Шаблоны привязки.
const (
	bindingCycles   RoutingKey = "cycle.*"
	bindingAccounts RoutingKey = "account.*"
)

// QueueByName возвращает очередь по короткому имени (cycles, accounts).
func QueueByName(name string) (Queue, error) {
	switch name {
	case "cycles", string(QueueCycles):
		return QueueCycles, nil
	case "accounts", string(QueueAccounts):
		return QueueAccounts, nil
	default:
		return "", fmt.Errorf("unknown queue %q (want cycles or accounts)", name)
	}
}

// SetupTopology объявляет обменник, очереди и привязки. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			"topic",                // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		bindings := []struct {
			queue   Queue
			pattern RoutingKey
		}{
			{QueueCycles, bindingCycles},
			{QueueAccounts, bindingAccounts},
		}

		for _, b := range bindings {
			_, err := ch.QueueDeclare(
				string(b.queue), // name
				true,            // durable
				false,           // delete when unused
				false,           // exclusive
				false,           // no-wait
				nil,             // arguments
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}

			if err := ch.QueueBind(string(b.queue), string(b.pattern), string(ExchangeEvents), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, ExchangeEvents, err)
			}
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Autofarm RabbitMQ Topology:

    autofarm.events (topic)
    ├── events.cycles   [cycle.*]    cycle.completed | cycle.failed | cycle.terminated
    └── events.accounts [account.*]  account.terminated
`
}
