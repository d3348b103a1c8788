package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/voter-registry/application"
	"agora/contexts/governance/voter-registry/domain/entities"
	domainerrors "agora/contexts/governance/voter-registry/domain/errors"
	"agora/contexts/governance/voter-registry/ports"
	"agora/internal/shared/events"
)

// RegisterVoterCommand admits an account into the voter allow-list. Actor is
// the caller being checked against the privileged gate, not the account
// being registered.
type RegisterVoterCommand struct {
	Actor   string
	Account string
}

type RegisterVoterResult struct {
	Voter entities.Voter
}

type RegisterUseCase struct {
	Registry   ports.RegistryRepository
	Authorizer ports.Authorizer
	Clock      ports.BlockClock
	IDGen      ports.IDGenerator
	Outbox     ports.OutboxWriter
	Logger     *slog.Logger
}

// RegisterVoter is the only privileged operation in governance. Registration
// is permanent; duplicates fail rather than overwrite.
func (uc RegisterUseCase) RegisterVoter(ctx context.Context, cmd RegisterVoterCommand) (RegisterVoterResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	account := strings.TrimSpace(cmd.Account)
	if account == "" {
		return RegisterVoterResult{}, domainerrors.ErrInvalidAccount
	}

	privileged, err := uc.Authorizer.IsPrivileged(ctx, actor)
	if err != nil {
		return RegisterVoterResult{}, err
	}
	if !privileged {
		logger.Warn("voter registration rejected",
			"event", "registry_register_rejected",
			"module", "governance/voter-registry",
			"layer", "application",
			"actor", actor,
			"account", account,
		)
		return RegisterVoterResult{}, domainerrors.ErrNotAuthorized
	}

	registered, err := uc.Registry.IsRegistered(ctx, account)
	if err != nil {
		return RegisterVoterResult{}, err
	}
	if registered {
		return RegisterVoterResult{}, domainerrors.ErrAlreadyRegistered
	}

	voter := entities.Voter{
		Account:           account,
		RegisteredAtBlock: uc.Clock.CurrentBlock(),
	}
	if err := uc.Registry.SaveVoter(ctx, voter); err != nil {
		return RegisterVoterResult{}, err
	}
	if err := uc.appendRegisteredEvent(ctx, voter, actor); err != nil {
		return RegisterVoterResult{}, err
	}

	logger.Info("voter registered",
		"event", "registry_voter_registered",
		"module", "governance/voter-registry",
		"layer", "application",
		"account", account,
		"registered_at_block", voter.RegisteredAtBlock,
	)
	return RegisterVoterResult{Voter: voter}, nil
}

func (uc RegisterUseCase) appendRegisteredEvent(ctx context.Context, voter entities.Voter, actor string) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      "governance.voter.registered",
		SourceService:  "agora",
		OccurredAtUTC:  time.Now().UTC(),
		EntityType:     "voter",
		EntityID:       voter.Account,
		PayloadVersion: 1,
		Payload: map[string]any{
			"account":             voter.Account,
			"registered_at_block": voter.RegisteredAtBlock,
			"registered_by":       actor,
		},
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.OutboxMessage{
		OutboxID:  eventID,
		EventType: envelope.EventType,
		Payload:   raw,
		Status:    "pending",
		CreatedAt: envelope.OccurredAtUTC,
	})
}
