package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"pucisca/internal/domain/property"
)

// Refresher reloads availability, either for every property or for one.
type Refresher interface {
	Refresh(ctx context.Context) error
	RefreshProperty(ctx context.Context, key property.Key) error
}

// Invalidator drops cached upstream answers for one property.
type Invalidator interface {
	Invalidate(ctx context.Context, key property.Key) error
}

type refreshMessage struct {
	Property string `json:"property"`
}

// RefreshHandler reacts to "calendar changed" notifications. The property
// comes from the message key or from a {"property": "WH"} body; when both
// are empty every property is reloaded.
type RefreshHandler struct {
	Target Refresher
	Cache  Invalidator
	Logger *slog.Logger
}

func (h RefreshHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	raw, err := refreshTarget(msg)
	if err != nil {
		return err
	}
	if raw == "" || raw == "*" {
		for _, key := range property.All() {
			h.invalidate(ctx, key)
		}
		h.log("refreshing all properties", "")
		return h.Target.Refresh(ctx)
	}
	key, err := property.ParseKey(raw)
	if err != nil {
		return err
	}
	h.invalidate(ctx, key)
	h.log("refreshing property", key)
	return h.Target.RefreshProperty(ctx, key)
}

func refreshTarget(msg *sarama.ConsumerMessage) (string, error) {
	if key := strings.TrimSpace(string(msg.Key)); key != "" {
		return key, nil
	}
	body := bytes.TrimSpace(msg.Value)
	if len(body) == 0 {
		return "", nil
	}
	var payload refreshMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("kafka: refresh message: %w", err)
	}
	return strings.TrimSpace(payload.Property), nil
}

func (h RefreshHandler) invalidate(ctx context.Context, key property.Key) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(ctx, key); err != nil && h.Logger != nil {
		h.Logger.Warn("availability cache invalidation failed", "property", key, "error", err)
	}
}

func (h RefreshHandler) log(msg string, key property.Key) {
	if h.Logger == nil {
		return
	}
	if key == "" {
		h.Logger.Info(msg)
		return
	}
	h.Logger.Info(msg, "property", key)
}
