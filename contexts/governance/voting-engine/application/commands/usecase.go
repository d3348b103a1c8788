package commands

import (
	"context"
	"log/slog"

	"agora/contexts/governance/voting-engine/application/freeze"
	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
	"agora/contexts/governance/voting-engine/domain/quadratic"
	"agora/contexts/governance/voting-engine/ports"
)

const defaultMaxVotes = 16

// GovernanceUseCase orchestrates propose/vote/close/claim over the proposal
// store, the per-account vote ledger, and the freeze engine. Operations are
// fail-fast: every failure is detected before any store mutation, so a failed
// operation leaves all stores unchanged.
type GovernanceUseCase struct {
	Proposals ports.ProposalRepository
	Ledger    ports.VoteLedgerRepository
	Registry  ports.RegistryReader
	Balances  ports.BalanceLedger
	Freezes   freeze.Engine
	Clock     ports.BlockClock
	IDGen     ports.IDGenerator
	Outbox    ports.OutboxWriter

	// MaxVotes bounds the number of active records per account.
	MaxVotes int
	// ProposalDuration is the number of blocks a proposal must stay open.
	ProposalDuration entities.BlockNumber
	// BlockToBalance converts block heights into the balance domain so start
	// block and duration can be compared against tallies' numeric type.
	// Defaults to the identity conversion.
	BlockToBalance func(entities.BlockNumber) entities.Balance

	Logger *slog.Logger
}

func (uc GovernanceUseCase) maxVotes() int {
	if uc.MaxVotes <= 0 {
		return defaultMaxVotes
	}
	return uc.MaxVotes
}

func (uc GovernanceUseCase) blockToBalance(block entities.BlockNumber) entities.Balance {
	if uc.BlockToBalance != nil {
		return uc.BlockToBalance(block)
	}
	return entities.Balance(block)
}

func (uc GovernanceUseCase) ensureRegistered(ctx context.Context, account string) error {
	registered, err := uc.Registry.IsRegistered(ctx, account)
	if err != nil {
		return err
	}
	if !registered {
		return domainerrors.ErrNotRegistered
	}
	return nil
}

// addVotesToProposal and removeVotesFromProposal keep the tallies in the
// checked arithmetic domain. An underflow here means ledger bookkeeping has
// diverged from the tallies and must be treated as a consistency violation.
func addVotesToProposal(proposal *entities.Proposal, direction entities.Direction, votes entities.Balance) error {
	var err error
	switch direction {
	case entities.DirectionAye:
		proposal.Ayes, err = quadratic.Add(proposal.Ayes, votes)
	case entities.DirectionNay:
		proposal.Nays, err = quadratic.Add(proposal.Nays, votes)
	default:
		return domainerrors.ErrInvalidVoteInput
	}
	return err
}

func removeVotesFromProposal(proposal *entities.Proposal, direction entities.Direction, votes entities.Balance) error {
	var err error
	switch direction {
	case entities.DirectionAye:
		proposal.Ayes, err = quadratic.Sub(proposal.Ayes, votes)
	case entities.DirectionNay:
		proposal.Nays, err = quadratic.Sub(proposal.Nays, votes)
	default:
		return domainerrors.ErrInvalidVoteInput
	}
	return err
}

// findVoteRecord scans the history in insertion order for the record on
// proposalID. The position matters for in-place replacement.
func findVoteRecord(history []entities.VoteRecord, proposalID entities.ProposalID) (int, bool) {
	for index, record := range history {
		if record.ProposalID == proposalID {
			return index, true
		}
	}
	return -1, false
}

// maxProposalIDRecord returns the record with the numerically largest
// proposal id. Insertion order and maximum id are different concepts: claims
// key on the maximum id, replacement keys on position.
func maxProposalIDRecord(history []entities.VoteRecord) (int, entities.VoteRecord, bool) {
	if len(history) == 0 {
		return -1, entities.VoteRecord{}, false
	}
	bestIndex := 0
	for index, record := range history[1:] {
		if record.ProposalID > history[bestIndex].ProposalID {
			bestIndex = index + 1
		}
	}
	return bestIndex, history[bestIndex], true
}

func removeRecordAt(history []entities.VoteRecord, index int) []entities.VoteRecord {
	remaining := make([]entities.VoteRecord, 0, len(history)-1)
	remaining = append(remaining, history[:index]...)
	remaining = append(remaining, history[index+1:]...)
	return remaining
}
