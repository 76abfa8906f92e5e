package messaging

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes events to the log. It is used when no event bus is
// configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs each event at debug level.
func (p *LogPublisher) Publish(ctx context.Context, events ...Event) error {
	for _, e := range events {
		p.logger.Debug("Domain event",
			zap.String("event_id", e.ID),
			zap.String("event_type", e.Type),
			zap.String("aggregate_id", e.AggregateID),
			zap.Any("payload", e.Payload),
		)
	}
	return nil
}
