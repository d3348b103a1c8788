package commands

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"agora/contexts/governance/voting-engine/domain/entities"
	"agora/contexts/governance/voting-engine/ports"
	"agora/internal/shared/events"
)

// appendProposalEvent writes one governance event to the outbox. Outbox is
// optional for pure read/test wiring, so nil is treated as no-op.
func (uc GovernanceUseCase) appendProposalEvent(
	ctx context.Context,
	eventType string,
	proposal entities.Proposal,
	extra map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"proposal_id":   uint64(proposal.ProposalID),
		"description":   proposal.Description,
		"start_block":   uint64(proposal.StartBlock),
		"ayes":          uint64(proposal.Ayes),
		"nays":          uint64(proposal.Nays),
		"closed":        proposal.Closed,
		"current_block": uint64(uc.Clock.CurrentBlock()),
	}
	for key, value := range extra {
		payload[key] = value
	}

	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "agora",
		OccurredAtUTC:  time.Now().UTC(),
		EntityType:     "proposal",
		EntityID:       strconv.FormatUint(uint64(proposal.ProposalID), 10),
		PayloadVersion: 1,
		Payload:        payload,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.OutboxMessage{
		OutboxID:  eventID,
		EventType: eventType,
		Payload:   raw,
		Status:    "pending",
		CreatedAt: envelope.OccurredAtUTC,
	})
}
