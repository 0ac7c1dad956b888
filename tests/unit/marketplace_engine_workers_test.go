package unit

import (
	"context"
	"testing"

	workerapp "nftmarket/contexts/market-core/marketplace-engine/application/workers"
	"nftmarket/contexts/market-core/marketplace-engine/ports"
)

type capturePublisher struct {
	published []struct {
		Topic string
		Event ports.EventEnvelope
	}
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.published = append(p.published, struct {
		Topic string
		Event ports.EventEnvelope
	}{Topic: topic, Event: event})
	return nil
}

func TestOutboxRelayPublishesOnEventTypeTopics(t *testing.T) {
	module := newMarketModule(t)
	listToken(t, module, "100")
	ctx := context.Background()

	publisher := &capturePublisher{}
	relay := workerapp.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     module.Store,
		BatchSize: 50,
	}

	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	if publisher.published[0].Topic != "market.listed" {
		t.Fatalf("expected market.listed topic, got %s", publisher.published[0].Topic)
	}
	if publisher.published[0].Event.SourceService != "marketplace-engine" {
		t.Fatalf("unexpected source service: %s", publisher.published[0].Event.SourceService)
	}

	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected relayed messages to be marked published, got %d publishes", len(publisher.published))
	}

	pending, err := module.Store.ListPendingOutbox(ctx, 50)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected drained outbox, got %d pending", len(pending))
	}
}
