package queries

import (
	"context"
	"strings"

	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
	"agora/contexts/governance/voting-engine/ports"
)

type ProposalQueryUseCase struct {
	Proposals ports.ProposalRepository
	Ledger    ports.VoteLedgerRepository
	Balances  ports.BalanceLedger
}

// ProposalView adds the outcome to the stored record. For an open proposal
// the outcome is the current leader, for a closed one it is final.
type ProposalView struct {
	Proposal entities.Proposal
	Outcome  entities.Outcome
}

func (uc ProposalQueryUseCase) GetProposal(ctx context.Context, id entities.ProposalID) (ProposalView, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, id)
	if err != nil {
		return ProposalView{}, err
	}
	return ProposalView{Proposal: proposal, Outcome: proposal.Outcome()}, nil
}

func (uc ProposalQueryUseCase) ListProposals(ctx context.Context) ([]ProposalView, error) {
	proposals, err := uc.Proposals.ListProposals(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProposalView, 0, len(proposals))
	for _, proposal := range proposals {
		views = append(views, ProposalView{Proposal: proposal, Outcome: proposal.Outcome()})
	}
	return views, nil
}

// AccountVotesView is an account's active ledger plus the tokens currently
// reserved for it on the balance ledger.
type AccountVotesView struct {
	Account      string
	Records      []entities.VoteRecord
	FrozenTokens entities.Balance
}

func (uc ProposalQueryUseCase) AccountVotes(ctx context.Context, account string) (AccountVotesView, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return AccountVotesView{}, domainerrors.ErrInvalidVoteInput
	}
	records, _, err := uc.Ledger.GetVotingHistory(ctx, account)
	if err != nil {
		return AccountVotesView{}, err
	}
	frozen, err := uc.Balances.FrozenBalance(ctx, ports.FreezeReasonAccountDeposit, account)
	if err != nil {
		return AccountVotesView{}, err
	}
	return AccountVotesView{
		Account:      account,
		Records:      records,
		FrozenTokens: frozen,
	}, nil
}
