package queue

// MessageQueue abstracts the two brokers Saathi speaks: NATS for the
// conversational subjects and RabbitMQ for snapshot ingestion. Handlers
// return nil to consume a message and an error to surface (and, where
// the broker supports it, redeliver) it.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}
