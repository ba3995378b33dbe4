package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

// Inbox tracks handled message ids.
type Inbox interface {
	Seen(ctx context.Context, id string) (bool, error)
	Mark(ctx context.Context, id string) error
}

// Deduplicate skips messages the inbox has already seen. A message is marked
// only after next handled it, so a failed attempt is retried on redelivery.
func Deduplicate(next MessageHandler, inbox Inbox, logger *slog.Logger) MessageHandler {
	if inbox == nil {
		return next
	}
	return handlerFunc(func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		id := MessageID(msg)
		seen, err := inbox.Seen(ctx, id)
		if err != nil {
			return fmt.Errorf("kafka: inbox lookup: %w", err)
		}
		if seen {
			if logger != nil {
				logger.Debug("duplicate message skipped", "message_id", id)
			}
			return nil
		}
		if err := next.Handle(ctx, msg); err != nil {
			return err
		}
		return inbox.Mark(ctx, id)
	})
}

// MessageID prefers the CloudEvents id header and falls back to the
// message coordinates.
func MessageID(msg *sarama.ConsumerMessage) string {
	for _, h := range msg.Headers {
		if h != nil && string(h.Key) == "ce_id" && len(h.Value) > 0 {
			return string(h.Value)
		}
	}
	return fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
}

type handlerFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

func (f handlerFunc) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return f(ctx, msg)
}
