package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"winkclass/internal/model"
)

// AuditPublisher enqueues audit events for the persist worker. A channel is
// opened per publish; publishes are rare enough that pooling is not worth it.
type AuditPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewAuditPublisher(conn *amqp.Connection, queueName string) *AuditPublisher {
	return &AuditPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *AuditPublisher) Publish(ctx context.Context, event model.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event failed: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareAuditQueue(ch, p.queueName); err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish audit event failed: %w", err)
	}
	return nil
}

// DeclareAuditQueue is idempotent; both the publisher and the worker declare
// so neither depends on start order.
func DeclareAuditQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare audit queue failed: %w", err)
	}
	return nil
}
