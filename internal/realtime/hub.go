package realtime

import (
	"context"
	"log/slog"

	"github.com/bengamraiheb/backloft/internal/platform/logger"
)

// Hub publishes events to the sinks held in a Registry. Marshaling errors
// and per-sink send failures are logged and swallowed: live delivery is a
// side effect of mutations, never a reason for them to fail.
type Hub struct {
	registry Registry
	logger   *slog.Logger
}

// NewHub creates a hub publishing to the given registry.
func NewHub(registry Registry, logger *slog.Logger) *Hub {
	if registry == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		registry: registry,
		logger:   logger.With(slog.String("component", "realtime_hub")),
	}
}

var _ Broadcaster = (*Hub)(nil)

// Publish implements Broadcaster.Publish
func (h *Hub) Publish(ctx context.Context, event Event) {
	h.deliver(ctx, h.registry.All(), event)
}

// PublishTo implements Broadcaster.PublishTo
func (h *Hub) PublishTo(ctx context.Context, userID string, event Event) {
	sinks := h.registry.ForUser(userID)
	if len(sinks) == 0 {
		return
	}
	h.deliver(ctx, sinks, event)
}

func (h *Hub) deliver(ctx context.Context, sinks []Sink, event Event) {
	if len(sinks) == 0 {
		return
	}

	log := logger.FromContextOrDefault(ctx, h.logger)

	message, err := event.Marshal()
	if err != nil {
		log.Error("failed to marshal realtime event",
			slog.String("event", event.Name),
			slog.String("error", err.Error()))
		return
	}

	delivered := 0
	for _, sink := range sinks {
		if err := sink.Send(message); err != nil {
			log.Warn("dropping dead realtime sink",
				slog.String("event", event.Name),
				slog.String("error", err.Error()))
			sink.Close()
			continue
		}
		delivered++
	}

	log.Debug("realtime event delivered",
		slog.String("event", event.Name),
		slog.Int("sinks", len(sinks)),
		slog.Int("delivered", delivered))
}
