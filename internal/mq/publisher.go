package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/Autofarm/internal/domain"
)

// MessageType — тип сообщения в журнале.
type MessageType string

// Типы сообщений.
const (
	MessageTypeCycleCompleted    MessageType = "cycle.completed"
	MessageTypeCycleFailed       MessageType = "cycle.failed"
	MessageTypeCycleTerminated   MessageType = "cycle.terminated"
	MessageTypeAccountTerminated MessageType = "account.terminated"
)

// Message — сообщение журнала.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// AccountTerminatedPayload — аккаунт выведен из работы до перезапуска.
type AccountTerminatedPayload struct {
	Session string    `json:"session"`
	CycleID uuid.UUID `json:"cycle_id"`
	Reason  string    `json:"reason"`
}

// Publisher публикует события фермы в RabbitMQ.
// Реализует журнал циклов воркера.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
		now:    time.Now,
	}
}

// Publish публикует сообщение с routing key, равным типу сообщения.
func (p *Publisher) Publish(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	routingKey := RoutingKey(msg.Type)

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", ExchangeEvents, routingKey, err)
		}

		p.logger.Debug("published message",
			"routing_key", routingKey,
			"message_id", msg.ID,
		)
		return nil
	})
}

// RecordCycle публикует закрытый цикл. Для TERMINATED дополнительно
// публикуется account.terminated.
func (p *Publisher) RecordCycle(ctx context.Context, c *domain.Cycle) error {
	for _, msg := range CycleMessages(c, p.now()) {
		if err := p.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// CycleMessages строит сообщения журнала для закрытого цикла.
func CycleMessages(c *domain.Cycle, now time.Time) []*Message {
	msgs := []*Message{{
		ID:        uuid.New().String(),
		Type:      MessageType("cycle." + strings.ToLower(string(c.Status))),
		Payload:   c,
		Timestamp: now,
	}}

	if c.Status == domain.CycleStatusTerminated {
		msgs = append(msgs, &Message{
			ID:   uuid.New().String(),
			Type: MessageTypeAccountTerminated,
			Payload: AccountTerminatedPayload{
				Session: c.Session,
				CycleID: c.ID,
				Reason:  c.Error,
			},
			Timestamp: now,
		})
	}

	return msgs
}
