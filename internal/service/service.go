package service

import (
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

type clock func() time.Time

func nopLogger(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}
	nop := zerolog.Nop()
	return &nop
}

// notFound maps database.ErrNotFound to a NotFound taxonomy error with msg.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound(format, args...)
	}
	return err
}

func publish(bus domain.EventPublisher, logger *zerolog.Logger, eventType string, payload interface{}) {
	if bus == nil {
		return
	}
	if err := bus.PublishJSON(eventType, payload); err != nil {
		logger.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
