package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "redpacket/contexts/finance-core/packet-service/application"
	"redpacket/contexts/finance-core/packet-service/ports"
)

// OutboxRelay publishes pending packet events to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce relays one batch in creation order and stops at the first failure,
// leaving the failed row pending for the next cycle.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("packet outbox list failed",
			"event", "packet_outbox_list_failed",
			"module", application.LogModule,
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	published := 0
	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("packet outbox decode failed",
				"event", "packet_outbox_decode_failed",
				"module", application.LogModule,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}

		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("packet outbox publish failed",
				"event", "packet_outbox_publish_failed",
				"module", application.LogModule,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"topic", topic,
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("packet outbox mark published failed",
				"event", "packet_outbox_mark_published_failed",
				"module", application.LogModule,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		published++
	}

	if published > 0 {
		logger.Info("packet outbox relay cycle completed",
			"event", "packet_outbox_relay_completed",
			"module", application.LogModule,
			"layer", "worker",
			"published_count", published,
		)
	}
	return published, nil
}
