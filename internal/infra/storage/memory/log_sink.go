package memory

import (
	"context"
	"log/slog"

	appoutbox "pucisca/internal/app/outbox"
)

// LogSink writes each record to the logger at debug level.
func LogSink(logger *slog.Logger) Sink {
	return SinkFunc(func(ctx context.Context, records []appoutbox.EventRecord) error {
		for _, rec := range records {
			logger.DebugContext(ctx, "domain event",
				"event_id", rec.ID,
				"event", rec.Name,
				"aggregate", rec.Aggregate,
				"payload", string(rec.Payload),
			)
		}
		return nil
	})
}
