package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/governance/voting-engine/application/commands"
	"agora/contexts/governance/voting-engine/application/queries"
	"agora/contexts/governance/voting-engine/domain/entities"
	"agora/contexts/governance/voting-engine/domain/quadratic"
	httptransport "agora/contexts/governance/voting-engine/transport/http"
)

type Handler struct {
	Governance commands.GovernanceUseCase
	Proposals  queries.ProposalQueryUseCase
	Logger     *slog.Logger
}

func (h Handler) ProposeHandler(
	ctx context.Context,
	proposer string,
	req httptransport.ProposeRequest,
) (httptransport.ProposeResponse, error) {
	result, err := h.Governance.Propose(ctx, commands.ProposeCommand{
		Proposer:    proposer,
		Description: req.Description,
	})
	if err != nil {
		return httptransport.ProposeResponse{}, err
	}
	return httptransport.ProposeResponse{
		ProposalID: uint64(result.ProposalID),
		StartBlock: uint64(result.StartBlock),
	}, nil
}

func (h Handler) VoteHandler(
	ctx context.Context,
	voter string,
	proposalID uint64,
	req httptransport.VoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Governance.Vote(ctx, commands.VoteCommand{
		Voter:      voter,
		ProposalID: entities.ProposalID(proposalID),
		Direction:  entities.Direction(req.Direction),
		Votes:      entities.Balance(req.Votes),
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		ProposalID:     proposalID,
		Cancelled:      result.Cancelled,
		RequiredTokens: uint64(result.RequiredTokens),
		Ayes:           uint64(result.Ayes),
		Nays:           uint64(result.Nays),
	}, nil
}

func (h Handler) CloseHandler(ctx context.Context, caller string, proposalID uint64) (httptransport.CloseResponse, error) {
	result, err := h.Governance.Close(ctx, commands.CloseCommand{
		Caller:     caller,
		ProposalID: entities.ProposalID(proposalID),
	})
	if err != nil {
		return httptransport.CloseResponse{}, err
	}
	return httptransport.CloseResponse{
		ProposalID: proposalID,
		Outcome:    string(result.Outcome),
		Ayes:       uint64(result.Ayes),
		Nays:       uint64(result.Nays),
	}, nil
}

func (h Handler) ClaimHandler(ctx context.Context, claimer string, proposalID uint64) (httptransport.ClaimResponse, error) {
	result, err := h.Governance.Claim(ctx, commands.ClaimCommand{
		Claimer:    claimer,
		ProposalID: entities.ProposalID(proposalID),
	})
	if err != nil {
		return httptransport.ClaimResponse{}, err
	}
	return httptransport.ClaimResponse{
		ProposalID: proposalID,
		Released:   result.Released,
	}, nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResponse, error) {
	view, err := h.Proposals.GetProposal(ctx, entities.ProposalID(proposalID))
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(view), nil
}

func (h Handler) ListProposalsHandler(ctx context.Context) (httptransport.ProposalListResponse, error) {
	views, err := h.Proposals.ListProposals(ctx)
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(views))
	for _, view := range views {
		items = append(items, mapProposal(view))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

func (h Handler) AccountVotesHandler(ctx context.Context, account string) (httptransport.AccountVotesResponse, error) {
	view, err := h.Proposals.AccountVotes(ctx, account)
	if err != nil {
		return httptransport.AccountVotesResponse{}, err
	}
	items := make([]httptransport.AccountVoteItem, 0, len(view.Records))
	for _, record := range view.Records {
		cost, err := quadratic.Cost(record.Votes)
		if err != nil {
			return httptransport.AccountVotesResponse{}, err
		}
		items = append(items, httptransport.AccountVoteItem{
			ProposalID:     uint64(record.ProposalID),
			Direction:      string(record.Direction),
			Votes:          uint64(record.Votes),
			RequiredTokens: uint64(cost),
		})
	}
	return httptransport.AccountVotesResponse{
		Account:      view.Account,
		FrozenTokens: uint64(view.FrozenTokens),
		Items:        items,
	}, nil
}

func mapProposal(view queries.ProposalView) httptransport.ProposalResponse {
	return httptransport.ProposalResponse{
		ProposalID:  uint64(view.Proposal.ProposalID),
		Description: view.Proposal.Description,
		StartBlock:  uint64(view.Proposal.StartBlock),
		Ayes:        uint64(view.Proposal.Ayes),
		Nays:        uint64(view.Proposal.Nays),
		Closed:      view.Proposal.Closed,
		Outcome:     string(view.Outcome),
	}
}
