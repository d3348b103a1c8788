package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	application "agora/contexts/governance/voting-engine/application"
	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
)

// ProposeCommand submits a new proposal. Description carries the raw proposal
// text; only its content hash is stored.
type ProposeCommand struct {
	Proposer    string
	Description string
}

type ProposeResult struct {
	ProposalID entities.ProposalID
	StartBlock entities.BlockNumber
}

// Propose creates a proposal with zero tallies at the current block height.
// The proposer must be a registered voter.
func (uc GovernanceUseCase) Propose(ctx context.Context, cmd ProposeCommand) (ProposeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposer := strings.TrimSpace(cmd.Proposer)
	if proposer == "" {
		return ProposeResult{}, domainerrors.ErrInvalidVoteInput
	}
	if err := uc.ensureRegistered(ctx, proposer); err != nil {
		logger.Warn("propose rejected",
			"event", "governance_propose_rejected",
			"module", "governance/voting-engine",
			"layer", "application",
			"proposer", proposer,
			"error", err.Error(),
		)
		return ProposeResult{}, err
	}

	digest := sha256.Sum256([]byte(cmd.Description))
	proposal := entities.Proposal{
		Description: hex.EncodeToString(digest[:]),
		StartBlock:  uc.Clock.CurrentBlock(),
	}

	proposalID, err := uc.Proposals.CreateProposal(ctx, proposal)
	if err != nil {
		return ProposeResult{}, err
	}
	proposal.ProposalID = proposalID

	if err := uc.appendProposalEvent(ctx, "governance.proposal.created", proposal, map[string]any{
		"proposer": proposer,
	}); err != nil {
		return ProposeResult{}, err
	}

	logger.Info("proposal created",
		"event", "governance_proposal_created",
		"module", "governance/voting-engine",
		"layer", "application",
		"proposal_id", uint64(proposalID),
		"proposer", proposer,
		"start_block", uint64(proposal.StartBlock),
	)
	return ProposeResult{ProposalID: proposalID, StartBlock: proposal.StartBlock}, nil
}
