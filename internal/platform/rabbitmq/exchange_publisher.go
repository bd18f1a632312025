package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"studyshelf/internal/model"
)

// ExchangePublisher queues answered tutor exchanges for the persist worker.
type ExchangePublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewExchangePublisher(conn *amqp.Connection, queueName string) *ExchangePublisher {
	return &ExchangePublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ExchangePublisher) Publish(ctx context.Context, exchange model.TutorExchange) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(exchange)
	if err != nil {
		return fmt.Errorf("marshal exchange payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish exchange failed: %w", err)
	}
	return nil
}

// DeclareQueue declares the durable queue shared by publisher and worker.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("declare queue %s failed: %w", name, err)
	}
	return q, nil
}
