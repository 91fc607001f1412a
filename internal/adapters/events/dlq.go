package events

import (
	"context"
	"log/slog"

	"github.com/luminacare/pipeline-service/internal/contracts"
)

// LoggingDLQPublisher records dead letters to the log only. Used when no
// Kafka brokers are configured.
type LoggingDLQPublisher struct {
	logger *slog.Logger
}

func NewLoggingDLQPublisher(logger *slog.Logger) *LoggingDLQPublisher {
	return &LoggingDLQPublisher{logger: logger}
}

func (p *LoggingDLQPublisher) PublishDLQ(ctx context.Context, record contracts.DLQRecord) error {
	p.logger.ErrorContext(ctx, "event routed to dlq",
		"module", "events.dlq",
		"layer", "adapter",
		"operation", "publish_dlq",
		"outcome", "failure",
		"event_id", record.OriginalEvent.EventID,
		"event_type", record.OriginalEvent.EventType,
		"error_summary", record.ErrorSummary,
		"retry_count", record.RetryCount,
	)
	return nil
}
