package queue

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQQueue carries the earnings snapshots pushed by the platform
// ingestion jobs. A snapshot must survive a consumer restart, so queues
// are durable and deliveries persistent; conversational traffic stays
// on the NATS side.
type RabbitMQQueue struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	url      string
	handlers map[string]func(data []byte) error
	mu       sync.RWMutex
	log      *zap.Logger
}

// NewRabbitMQQueue connects and starts the reconnect watchdog.
func NewRabbitMQQueue(url string, log *zap.Logger) (MessageQueue, error) {
	q := &RabbitMQQueue{
		url:      url,
		handlers: make(map[string]func(data []byte) error),
		log:      log,
	}

	if err := q.connect(); err != nil {
		return nil, err
	}

	go q.watchConnection()

	log.Info("Connected to RabbitMQ for snapshot ingestion", zap.String("url", url))
	return q, nil
}

func (q *RabbitMQQueue) connect() error {
	conn, err := amqp.Dial(q.url)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	q.mu.Lock()
	q.conn = conn
	q.channel = ch
	q.mu.Unlock()
	return nil
}

// Publish enqueues onto a durable queue via the default exchange. The
// queue name doubles as the routing key, point to point.
func (q *RabbitMQQueue) Publish(subject string, data []byte) error {
	q.mu.RLock()
	ch := q.channel
	q.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	if _, err := ch.QueueDeclare(subject, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare queue %s: %w", subject, err)
	}

	err := ch.Publish(
		"", subject, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         data,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish to %s: %w", subject, err)
	}
	return nil
}

// Subscribe consumes the durable queue with manual acks. A handler
// error leaves the snapshot queued for redelivery instead of losing it.
func (q *RabbitMQQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.Lock()
	q.handlers[subject] = handler
	q.mu.Unlock()

	return q.consume(subject, handler)
}

func (q *RabbitMQQueue) consume(subject string, handler func(data []byte) error) error {
	q.mu.RLock()
	ch := q.channel
	q.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	if _, err := ch.QueueDeclare(subject, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare queue %s: %w", subject, err)
	}

	msgs, err := ch.Consume(subject, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume %s: %w", subject, err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg.Body); err != nil {
				q.log.Error("Snapshot handler failed, requeueing",
					zap.String("queue", subject),
					zap.Error(err),
				)
				msg.Nack(false, true)
				continue
			}
			msg.Ack(false)
		}
	}()

	q.log.Info("Consuming snapshot queue", zap.String("queue", subject))
	return nil
}

func (q *RabbitMQQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// watchConnection redials after a dropped connection and re-attaches
// every consumer, so ingestion resumes without a process restart.
func (q *RabbitMQQueue) watchConnection() {
	for {
		q.mu.RLock()
		conn := q.conn
		q.mu.RUnlock()

		reason, ok := <-conn.NotifyClose(make(chan *amqp.Error))
		if !ok {
			return
		}
		q.log.Warn("RabbitMQ connection lost", zap.String("reason", reason.Reason))

		for {
			time.Sleep(5 * time.Second)
			if err := q.connect(); err != nil {
				q.log.Error("RabbitMQ reconnect failed", zap.Error(err))
				continue
			}

			q.mu.RLock()
			handlers := make(map[string]func(data []byte) error, len(q.handlers))
			for subject, handler := range q.handlers {
				handlers[subject] = handler
			}
			q.mu.RUnlock()

			for subject, handler := range handlers {
				if err := q.consume(subject, handler); err != nil {
					q.log.Error("Failed to resume snapshot consumer",
						zap.String("queue", subject),
						zap.Error(err))
				}
			}

			q.log.Info("RabbitMQ connection restored")
			break
		}
	}
}
