package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/luminacare/pipeline-service/internal/application"
)

// OutboxWorker drains the transactional outbox on a fixed interval.
type OutboxWorker struct {
	logger   *slog.Logger
	service  *application.Service
	interval time.Duration
}

func NewOutboxWorker(logger *slog.Logger, service *application.Service, interval time.Duration) *OutboxWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &OutboxWorker{logger: logger, service: service, interval: interval}
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if err := w.service.FlushOutbox(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "outbox iteration failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "flush",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
