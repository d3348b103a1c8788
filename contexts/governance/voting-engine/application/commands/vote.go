package commands

import (
	"context"
	"strings"

	application "agora/contexts/governance/voting-engine/application"
	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
	"agora/contexts/governance/voting-engine/domain/quadratic"
)

// VoteCommand casts, replaces, or cancels a vote. Votes of zero on a proposal
// the voter has a record for act as pure cancellation.
type VoteCommand struct {
	Voter      string
	ProposalID entities.ProposalID
	Direction  entities.Direction
	Votes      entities.Balance
}

type VoteResult struct {
	Cancelled      bool
	RequiredTokens entities.Balance
	Ayes           entities.Balance
	Nays           entities.Balance
}

// Vote applies the full replace sequence: remove the prior record's tally
// contribution and add the new one on the in-memory proposal, then persist
// the ledger, shrink the reservation to what the records without the prior
// vote justify, raise it for the new vote, and save the proposal. All
// failure checks, including the checked tally arithmetic, run before the
// first store write so a failed vote leaves every store untouched.
func (uc GovernanceUseCase) Vote(ctx context.Context, cmd VoteCommand) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	if voter == "" || !cmd.Direction.Valid() {
		return VoteResult{}, domainerrors.ErrInvalidVoteInput
	}
	if err := uc.ensureRegistered(ctx, voter); err != nil {
		return VoteResult{}, err
	}

	proposal, err := uc.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return VoteResult{}, err
	}
	if proposal.Closed {
		return VoteResult{}, domainerrors.ErrVoteAlreadyEnded
	}

	requiredTokens, err := quadratic.Cost(cmd.Votes)
	if err != nil {
		return VoteResult{}, err
	}
	balance, err := uc.Balances.TotalBalance(ctx, voter)
	if err != nil {
		return VoteResult{}, err
	}
	if balance < requiredTokens {
		logger.Warn("vote rejected for insufficient funds",
			"event", "governance_vote_insufficient_funds",
			"module", "governance/voting-engine",
			"layer", "application",
			"voter", voter,
			"proposal_id", uint64(cmd.ProposalID),
			"required_tokens", uint64(requiredTokens),
			"total_balance", uint64(balance),
		)
		return VoteResult{}, domainerrors.ErrInsufficientFunds
	}

	history, _, err := uc.Ledger.GetVotingHistory(ctx, voter)
	if err != nil {
		return VoteResult{}, err
	}
	existingIndex, hasExisting := findVoteRecord(history, cmd.ProposalID)

	// Capacity is checked before any mutation. A replacement never grows the
	// ledger, so only a genuinely new non-zero vote can hit the bound.
	if !hasExisting && cmd.Votes > 0 && len(history)+1 > uc.maxVotes() {
		return VoteResult{}, domainerrors.ErrTooManyVotes
	}

	if hasExisting {
		prior := history[existingIndex]
		if err := removeVotesFromProposal(&proposal, prior.Direction, prior.Votes); err != nil {
			return VoteResult{}, err
		}
		history = removeRecordAt(history, existingIndex)
	}

	if cmd.Votes == 0 {
		if hasExisting {
			if err := uc.Ledger.SaveVotingHistory(ctx, voter, history); err != nil {
				return VoteResult{}, err
			}
			if err := uc.Freezes.RecomputeAfterRemoval(ctx, voter, history); err != nil {
				return VoteResult{}, err
			}
		}
		if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
			return VoteResult{}, err
		}
		if err := uc.appendProposalEvent(ctx, "governance.vote.cancelled", proposal, map[string]any{
			"voter": voter,
		}); err != nil {
			return VoteResult{}, err
		}
		logger.Info("vote cancelled",
			"event", "governance_vote_cancelled",
			"module", "governance/voting-engine",
			"layer", "application",
			"voter", voter,
			"proposal_id", uint64(cmd.ProposalID),
		)
		return VoteResult{Cancelled: true, Ayes: proposal.Ayes, Nays: proposal.Nays}, nil
	}

	// The tally add is the last fallible check; it runs on the in-memory
	// proposal before the first store write so an overflow leaves every store
	// untouched.
	if err := addVotesToProposal(&proposal, cmd.Direction, cmd.Votes); err != nil {
		return VoteResult{}, err
	}

	remaining := history
	record := entities.VoteRecord{
		ProposalID: cmd.ProposalID,
		Direction:  cmd.Direction,
		Votes:      cmd.Votes,
	}
	history = append(history, record)
	if err := uc.Ledger.SaveVotingHistory(ctx, voter, history); err != nil {
		return VoteResult{}, err
	}
	if hasExisting {
		if err := uc.Freezes.RecomputeAfterRemoval(ctx, voter, remaining); err != nil {
			return VoteResult{}, err
		}
	}
	if err := uc.Freezes.ApplyNewVote(ctx, voter, requiredTokens); err != nil {
		return VoteResult{}, err
	}
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return VoteResult{}, err
	}
	if err := uc.appendProposalEvent(ctx, "governance.vote.added", proposal, map[string]any{
		"voter":           voter,
		"direction":       string(cmd.Direction),
		"votes":           uint64(cmd.Votes),
		"required_tokens": uint64(requiredTokens),
	}); err != nil {
		return VoteResult{}, err
	}

	logger.Info("vote added",
		"event", "governance_vote_added",
		"module", "governance/voting-engine",
		"layer", "application",
		"voter", voter,
		"proposal_id", uint64(cmd.ProposalID),
		"direction", string(cmd.Direction),
		"votes", uint64(cmd.Votes),
		"required_tokens", uint64(requiredTokens),
	)
	return VoteResult{RequiredTokens: requiredTokens, Ayes: proposal.Ayes, Nays: proposal.Nays}, nil
}
