package commands

import (
	"context"
	"strings"

	application "agora/contexts/governance/voting-engine/application"
	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
)

// ClaimCommand asks to release the tokens reserved for a closed proposal.
type ClaimCommand struct {
	Claimer    string
	ProposalID entities.ProposalID
}

type ClaimResult struct {
	// Released reports whether a reservation was actually shrunk or thawed.
	// False means the claimed proposal is not the binding (maximum-id) vote
	// yet; nothing changed and the claim can be retried after the higher-id
	// vote is claimed.
	Released bool
}

// Claim releases reserved tokens once the claimed proposal's vote is no
// longer the binding one. Eligibility keys on the record with the maximum
// proposal id among the claimer's remaining votes, not on cost and not on
// insertion order.
func (uc GovernanceUseCase) Claim(ctx context.Context, cmd ClaimCommand) (ClaimResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	claimer := strings.TrimSpace(cmd.Claimer)
	if claimer == "" {
		return ClaimResult{}, domainerrors.ErrInvalidVoteInput
	}
	if err := uc.ensureRegistered(ctx, claimer); err != nil {
		return ClaimResult{}, err
	}

	proposal, err := uc.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return ClaimResult{}, err
	}
	if !proposal.Closed {
		return ClaimResult{}, domainerrors.ErrVotingPeriodNotOver
	}

	history, found, err := uc.Ledger.GetVotingHistory(ctx, claimer)
	if err != nil {
		return ClaimResult{}, err
	}
	if !found || len(history) == 0 {
		return ClaimResult{}, domainerrors.ErrNoVotes
	}

	maxIndex, maxRecord, _ := maxProposalIDRecord(history)
	if maxRecord.ProposalID != cmd.ProposalID {
		if err := uc.appendProposalEvent(ctx, "governance.tokens.not_unlocked", proposal, map[string]any{
			"claimer":             claimer,
			"binding_proposal_id": uint64(maxRecord.ProposalID),
		}); err != nil {
			return ClaimResult{}, err
		}
		logger.Info("claim left reservation in place",
			"event", "governance_claim_not_unlocked",
			"module", "governance/voting-engine",
			"layer", "application",
			"claimer", claimer,
			"proposal_id", uint64(cmd.ProposalID),
			"binding_proposal_id", uint64(maxRecord.ProposalID),
		)
		return ClaimResult{Released: false}, nil
	}

	history = removeRecordAt(history, maxIndex)
	if err := uc.Ledger.SaveVotingHistory(ctx, claimer, history); err != nil {
		return ClaimResult{}, err
	}
	if err := uc.Freezes.RecomputeAfterRemoval(ctx, claimer, history); err != nil {
		return ClaimResult{}, err
	}

	if err := uc.appendProposalEvent(ctx, "governance.tokens.unlocked", proposal, map[string]any{
		"claimer": claimer,
	}); err != nil {
		return ClaimResult{}, err
	}
	logger.Info("claim released tokens",
		"event", "governance_claim_unlocked",
		"module", "governance/voting-engine",
		"layer", "application",
		"claimer", claimer,
		"proposal_id", uint64(cmd.ProposalID),
		"remaining_votes", len(history),
	)
	return ClaimResult{Released: true}, nil
}
