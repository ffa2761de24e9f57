package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

func New(ctx context.Context, url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	// Opening a channel proves the broker is actually talking AMQP, not
	// just accepting TCP connections.
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	_ = ch.Close()

	select {
	case <-ctx.Done():
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq connect canceled: %w", ctx.Err())
	default:
	}

	return conn, nil
}
