package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"agora/contexts/governance/voting-engine/adapters/memory"
	"agora/contexts/governance/voting-engine/application/workers"
	"agora/contexts/governance/voting-engine/ports"
	"agora/internal/shared/events"
)

type capturingPublisher struct {
	published []events.Envelope
	topics    []string
	failAfter int
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event events.Envelope) error {
	if p.failAfter > 0 && len(p.published) >= p.failAfter {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	p.topics = append(p.topics, topic)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, eventID string, eventType string) {
	t.Helper()
	raw, err := json.Marshal(events.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		SourceService: "agora",
		OccurredAtUTC: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := store.AppendOutbox(context.Background(), ports.OutboxMessage{
		OutboxID:  eventID,
		EventType: eventType,
		Payload:   raw,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturingPublisher{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}

	appendEnvelope(t, store, "e1", "governance.proposal.created")
	appendEnvelope(t, store, "e2", "governance.vote.added")

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.published))
	}
	if publisher.topics[0] != "governance.proposal.created" {
		t.Fatalf("expected event type as topic, got %s", publisher.topics[0])
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected all rows marked published, got %+v", pending)
	}

	// Idle cycle is a no-op.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle relay failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected no republish, got %d", len(publisher.published))
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturingPublisher{failAfter: 1}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 10}

	appendEnvelope(t, store, "e1", "governance.proposal.created")
	appendEnvelope(t, store, "e2", "governance.vote.added")

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected relay to surface publish failure")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 || pending[0].OutboxID != "e2" {
		t.Fatalf("expected e2 to stay pending for retry, got %+v", pending)
	}
}
