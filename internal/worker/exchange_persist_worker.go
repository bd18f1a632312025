package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"studyshelf/internal/model"
	"studyshelf/internal/platform/logger"
	"studyshelf/internal/platform/rabbitmq"
)

type ExchangeStore interface {
	Create(ctx context.Context, exchange *model.TutorExchange) error
}

// ExchangePersistWorker drains the tutor exchange queue into the database.
type ExchangePersistWorker struct {
	conn      *amqp.Connection
	store     ExchangeStore
	queueName string
	log       *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewExchangePersistWorker(conn *amqp.Connection, store ExchangeStore, queueName string, log *logger.Logger) *ExchangePersistWorker {
	return &ExchangePersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		log:       log.With("worker", "exchange_persist"),
	}
}

func (w *ExchangePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.log.Error("persist tutor exchange failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.log.Info("worker started", "queue", w.queueName)
	return nil
}

func (w *ExchangePersistWorker) handle(ctx context.Context, body []byte) error {
	var exchange model.TutorExchange
	if err := json.Unmarshal(body, &exchange); err != nil {
		return fmt.Errorf("decode exchange failed: %w", err)
	}
	if exchange.Question == "" {
		return fmt.Errorf("exchange without question")
	}
	exchange.ID = 0
	return w.store.Create(ctx, &exchange)
}

func (w *ExchangePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
