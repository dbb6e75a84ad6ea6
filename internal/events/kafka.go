package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"shareit/internal/config"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var ErrSinkClosed = errors.New("kafka sink closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink forwards bus events to a Kafka topic, keyed by the payload key.
type KafkaSink struct {
	writer  messageWriter
	timeout time.Duration
	logger  *zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaWriter builds an async hash-balanced writer for cfg.
func NewKafkaWriter(cfg config.KafkaConfig, logger *zerolog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: cfg.BatchTimeout,
		Async:        true,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error().Msgf("kafka: "+msg, args...)
		}),
	}
}

func NewKafkaSink(writer messageWriter, logger *zerolog.Logger) *KafkaSink {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &KafkaSink{writer: writer, timeout: 5 * time.Second, logger: logger}
}

// Attach subscribes the sink to every event type on bus.
func (s *KafkaSink) Attach(bus *EventBus) {
	bus.SubscribeAll(s.Handle)
}

// Handle writes a single event.
func (s *KafkaSink) Handle(event *Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: event.Payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	s.logger.Debug().Str("event", event.Type).Str("key", event.Key).Msg("event forwarded to kafka")
	return nil
}

func (s *KafkaSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.writer.Close()
}
