package commands

import (
	"context"

	application "agora/contexts/governance/voting-engine/application"
	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
	"agora/contexts/governance/voting-engine/domain/quadratic"
)

// CloseCommand ends the voting period of a proposal. Any authenticated caller
// may close; registration is deliberately not required.
type CloseCommand struct {
	Caller     string
	ProposalID entities.ProposalID
}

type CloseResult struct {
	Outcome entities.Outcome
	Ayes    entities.Balance
	Nays    entities.Balance
}

// Close flips the proposal to its terminal state once the configured duration
// has elapsed and reports the outcome. Start block, current block, and
// duration are compared in the balance domain after conversion. Reporting the
// outcome never mutates the tallies.
func (uc GovernanceUseCase) Close(ctx context.Context, cmd CloseCommand) (CloseResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	proposal, err := uc.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return CloseResult{}, err
	}
	if proposal.Closed {
		return CloseResult{}, domainerrors.ErrVoteAlreadyEnded
	}

	startBalance := uc.blockToBalance(proposal.StartBlock)
	currentBalance := uc.blockToBalance(uc.Clock.CurrentBlock())
	deadline, err := quadratic.Add(startBalance, uc.blockToBalance(uc.ProposalDuration))
	if err != nil {
		return CloseResult{}, err
	}
	if deadline > currentBalance {
		return CloseResult{}, domainerrors.ErrVotingPeriodNotOver
	}

	proposal.Closed = true
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return CloseResult{}, err
	}

	outcome := proposal.Outcome()
	if err := uc.appendProposalEvent(ctx, "governance.proposal.closed", proposal, map[string]any{
		"outcome": string(outcome),
	}); err != nil {
		return CloseResult{}, err
	}

	logger.Info("proposal closed",
		"event", "governance_proposal_closed",
		"module", "governance/voting-engine",
		"layer", "application",
		"proposal_id", uint64(cmd.ProposalID),
		"outcome", string(outcome),
		"ayes", uint64(proposal.Ayes),
		"nays", uint64(proposal.Nays),
	)
	return CloseResult{Outcome: outcome, Ayes: proposal.Ayes, Nays: proposal.Nays}, nil
}
