package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/governance/voter-registry/application/commands"
	"agora/contexts/governance/voter-registry/application/queries"
	httptransport "agora/contexts/governance/voter-registry/transport/http"
)

type Handler struct {
	Registrations commands.RegisterUseCase
	Registry      queries.RegistryQueryUseCase
	Logger        *slog.Logger
}

func (h Handler) RegisterVoterHandler(
	ctx context.Context,
	actor string,
	req httptransport.RegisterVoterRequest,
) (httptransport.RegisterVoterResponse, error) {
	result, err := h.Registrations.RegisterVoter(ctx, commands.RegisterVoterCommand{
		Actor:   actor,
		Account: req.Account,
	})
	if err != nil {
		return httptransport.RegisterVoterResponse{}, err
	}
	return httptransport.RegisterVoterResponse{
		Account:           result.Voter.Account,
		RegisteredAtBlock: result.Voter.RegisteredAtBlock,
	}, nil
}

func (h Handler) GetVoterHandler(ctx context.Context, account string) (httptransport.VoterResponse, error) {
	voter, found, err := h.Registry.GetVoter(ctx, account)
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	if !found {
		return httptransport.VoterResponse{Account: account, Registered: false}, nil
	}
	return httptransport.VoterResponse{
		Account:           voter.Account,
		Registered:        true,
		RegisteredAtBlock: voter.RegisteredAtBlock,
	}, nil
}
