package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"winkclass/internal/model"
	"winkclass/internal/platform/rabbitmq"
	"winkclass/internal/repository"
)

// AuditPersistWorker drains the audit queue into the audit_events table.
// It never touches the request path: a failed persist loses one event,
// nothing else.
type AuditPersistWorker struct {
	conn      *amqp.Connection
	repo      *repository.AuditEventRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAuditPersistWorker(conn *amqp.Connection, repo *repository.AuditEventRepository, queueName string) *AuditPersistWorker {
	return &AuditPersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

// Start consumes the queue on a dedicated channel until Close or ctx
// cancellation. Calling Start twice is a no-op.
func (w *AuditPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if err := rabbitmq.DeclareAuditQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		return err
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume audit queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()
		w.run(workerCtx, deliveries)
	}()
	return nil
}

func (w *AuditPersistWorker) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := w.persist(d.Body); err != nil {
				log.Printf("audit worker: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *AuditPersistWorker) persist(body []byte) error {
	var event model.AuditEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode audit event failed: %w", err)
	}
	return w.repo.Create(&event)
}

func (w *AuditPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
