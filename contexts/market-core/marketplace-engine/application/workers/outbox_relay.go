package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"nftmarket/contexts/market-core/marketplace-engine/application"
	"nftmarket/contexts/market-core/marketplace-engine/ports"
)

// OutboxRelay drains pending market events to the bus. Each message is
// published on its own event type as topic and marked published afterwards.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "market_outbox_list_failed",
			"module", "market-core/marketplace-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("outbox payload unmarshal failed",
				"event", "market_outbox_unmarshal_failed",
				"module", "market-core/marketplace-engine",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			continue
		}
		if err := r.Publisher.Publish(ctx, message.EventType, envelope); err != nil {
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.OutboxID, now); err != nil {
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("outbox batch relayed",
			"event", "market_outbox_relayed",
			"module", "market-core/marketplace-engine",
			"layer", "worker",
			"count", len(pending),
		)
	}
	return nil
}
