// Package kafka publishes platform domain events to Apache Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/policylens/internal/config"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// writerAPI abstracts kafka.Writer for testing.
type writerAPI interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes domain events as JSON messages, keyed by aggregate ID so
// events for one comparison or document stay ordered within a partition.
type Publisher struct {
	writer writerAPI
	log    logging.Logger
	once   sync.Once
}

// NewPublisher builds a Kafka publisher from platform configuration.
func NewPublisher(cfg config.KafkaConfig, log logging.Logger) *Publisher {
	var acks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		acks = kafka.RequireNone
	case "one":
		acks = kafka.RequireOne
	default:
		acks = kafka.RequireAll
	}

	maxAttempts := cfg.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           acks,
		MaxAttempts:            maxAttempts,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}
	return newPublisherWithWriter(writer, log)
}

func newPublisherWithWriter(writer writerAPI, log logging.Logger) *Publisher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Publisher{writer: writer, log: log.Named("kafka")}
}

// Publish serializes the event and writes it to the given topic.
func (p *Publisher) Publish(ctx context.Context, topic string, event common.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode event")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.AggregateID()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "publish event")
	}

	p.log.Debug("published event",
		logging.String("topic", topic),
		logging.String("event_id", event.EventID()),
		logging.String("aggregate_id", event.AggregateID()))
	return nil
}

// Close flushes and releases the writer.  Safe to call more than once.
func (p *Publisher) Close() error {
	var err error
	p.once.Do(func() {
		err = p.writer.Close()
	})
	return err
}
