package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/cerajamme/myPUPQC-chatbot/internal/model"
	"github.com/cerajamme/myPUPQC-chatbot/internal/repository"
)

// ConversationWorker drains the analytics queue and persists conversation
// rows. Losing a row is acceptable; blocking an answer is not, so the
// consumer nacks without requeue on bad payloads.
type ConversationWorker struct {
	conn      *amqp.Connection
	repo      *repository.ConversationRepository
	queueName string
	log       *logrus.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConversationWorker(conn *amqp.Connection, repo *repository.ConversationRepository, queueName string, log *logrus.Logger) *ConversationWorker {
	return &ConversationWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		log:       log,
	}
}

func (w *ConversationWorker) Start(ctx context.Context) error {
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

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
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

				var conv model.Conversation
				if err := json.Unmarshal(d.Body, &conv); err != nil {
					w.log.WithError(err).Warn("worker decode conversation failed")
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&conv); err != nil {
					w.log.WithError(err).Warn("worker persist conversation failed")
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ConversationWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
