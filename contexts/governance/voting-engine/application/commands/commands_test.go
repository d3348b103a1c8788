package commands_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"agora/contexts/governance/voting-engine/adapters/memory"
	"agora/contexts/governance/voting-engine/application/commands"
	"agora/contexts/governance/voting-engine/application/freeze"
	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
	"agora/contexts/governance/voting-engine/ports"
)

func newGovernance(maxVotes int, duration entities.BlockNumber) (commands.GovernanceUseCase, *memory.Store, *memory.ChainLedger) {
	store := memory.NewStore()
	chain := memory.NewChainLedger()
	useCase := commands.GovernanceUseCase{
		Proposals:        store,
		Ledger:           store,
		Registry:         store,
		Balances:         chain,
		Freezes:          freeze.Engine{Balances: chain},
		Clock:            store,
		IDGen:            store,
		Outbox:           store,
		MaxVotes:         maxVotes,
		ProposalDuration: duration,
	}
	return useCase, store, chain
}

func mustPropose(t *testing.T, uc commands.GovernanceUseCase, proposer string, text string) entities.ProposalID {
	t.Helper()
	result, err := uc.Propose(context.Background(), commands.ProposeCommand{Proposer: proposer, Description: text})
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	return result.ProposalID
}

func mustVote(t *testing.T, uc commands.GovernanceUseCase, voter string, proposalID entities.ProposalID, direction entities.Direction, votes entities.Balance) commands.VoteResult {
	t.Helper()
	result, err := uc.Vote(context.Background(), commands.VoteCommand{
		Voter:      voter,
		ProposalID: proposalID,
		Direction:  direction,
		Votes:      votes,
	})
	if err != nil {
		t.Fatalf("vote of %d on proposal %d failed: %v", votes, proposalID, err)
	}
	return result
}

func frozenTokens(t *testing.T, chain *memory.ChainLedger, account string) entities.Balance {
	t.Helper()
	amount, err := chain.FrozenBalance(context.Background(), ports.FreezeReasonAccountDeposit, account)
	if err != nil {
		t.Fatalf("frozen balance failed: %v", err)
	}
	return amount
}

func TestProposeAssignsSequentialIDsAndHashesDescription(t *testing.T) {
	useCase, store, _ := newGovernance(16, 100)
	store.SetRegistered("alice")
	store.SetBlock(7)

	if _, err := useCase.Propose(context.Background(), commands.ProposeCommand{
		Proposer:    "mallory",
		Description: "raise treasury spend",
	}); !errors.Is(err, domainerrors.ErrNotRegistered) {
		t.Fatalf("expected not registered, got %v", err)
	}

	first, err := useCase.Propose(context.Background(), commands.ProposeCommand{
		Proposer:    "alice",
		Description: "raise treasury spend",
	})
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if first.ProposalID != 0 || first.StartBlock != 7 {
		t.Fatalf("expected id 0 at block 7, got id %d block %d", first.ProposalID, first.StartBlock)
	}

	second := mustPropose(t, useCase, "alice", "lower validator count")
	if second != 1 {
		t.Fatalf("expected id 1, got %d", second)
	}

	stored, err := useCase.Proposals.GetProposal(context.Background(), first.ProposalID)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if stored.Description == "raise treasury spend" || len(stored.Description) != 64 {
		t.Fatalf("expected content hash in description, got %q", stored.Description)
	}
	if stored.Ayes != 0 || stored.Nays != 0 || stored.Closed {
		t.Fatalf("expected fresh open proposal, got %+v", stored)
	}
}

func TestVoteReservesMaxSingleCostAcrossProposals(t *testing.T) {
	useCase, store, chain := newGovernance(16, 100)
	store.SetRegistered("alice")
	chain.SetBalance("alice", 100)

	p0 := mustPropose(t, useCase, "alice", "p0")
	p1 := mustPropose(t, useCase, "alice", "p1")
	p2 := mustPropose(t, useCase, "alice", "p2")

	result := mustVote(t, useCase, "alice", p0, entities.DirectionAye, 5)
	if result.RequiredTokens != 25 || result.Ayes != 5 {
		t.Fatalf("expected 25 tokens behind 5 ayes, got %+v", result)
	}
	if got := frozenTokens(t, chain, "alice"); got != 25 {
		t.Fatalf("expected 25 frozen, got %d", got)
	}

	mustVote(t, useCase, "alice", p1, entities.DirectionNay, 6)
	if got := frozenTokens(t, chain, "alice"); got != 36 {
		t.Fatalf("expected reservation raised to 36, got %d", got)
	}

	// A cheaper vote on a third proposal reuses the existing reservation.
	mustVote(t, useCase, "alice", p2, entities.DirectionAye, 3)
	if got := frozenTokens(t, chain, "alice"); got != 36 {
		t.Fatalf("expected reservation to stay at 36, got %d", got)
	}

	stored, err := useCase.Proposals.GetProposal(context.Background(), p1)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if stored.Ayes != 0 || stored.Nays != 6 {
		t.Fatalf("expected 0/6 tallies, got %d/%d", stored.Ayes, stored.Nays)
	}
}

func TestVoteReplacementSwapsTalliesAndReservation(t *testing.T) {
	useCase, store, chain := newGovernance(16, 100)
	store.SetRegistered("bob")
	chain.SetBalance("bob", 200)

	p0 := mustPropose(t, useCase, "bob", "p0")
	mustVote(t, useCase, "bob", p0, entities.DirectionAye, 7)

	result := mustVote(t, useCase, "bob", p0, entities.DirectionNay, 4)
	if result.Ayes != 0 || result.Nays != 4 {
		t.Fatalf("expected replaced tallies 0/4, got %d/%d", result.Ayes, result.Nays)
	}
	if got := frozenTokens(t, chain, "bob"); got != 16 {
		t.Fatalf("expected reservation shrunk to 16, got %d", got)
	}

	history, _, err := useCase.Ledger.GetVotingHistory(context.Background(), "bob")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 || history[0].Votes != 4 || history[0].Direction != entities.DirectionNay {
		t.Fatalf("expected single replaced record, got %+v", history)
	}
}

func TestZeroVoteCancelsAndThaws(t *testing.T) {
	useCase, store, chain := newGovernance(16, 100)
	store.SetRegistered("carol")
	chain.SetBalance("carol", 100)

	p0 := mustPropose(t, useCase, "carol", "p0")
	mustVote(t, useCase, "carol", p0, entities.DirectionAye, 5)

	result := mustVote(t, useCase, "carol", p0, entities.DirectionAye, 0)
	if !result.Cancelled {
		t.Fatalf("expected cancellation, got %+v", result)
	}
	if result.Ayes != 0 || result.Nays != 0 {
		t.Fatalf("expected tallies back to zero, got %d/%d", result.Ayes, result.Nays)
	}
	if got := frozenTokens(t, chain, "carol"); got != 0 {
		t.Fatalf("expected thawed reservation, got %d", got)
	}

	history, _, err := useCase.Ledger.GetVotingHistory(context.Background(), "carol")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %+v", history)
	}
}

func TestVoteFailuresLeaveStateUntouched(t *testing.T) {
	useCase, store, chain := newGovernance(2, 100)
	store.SetRegistered("dave")
	chain.SetBalance("dave", 100)

	p0 := mustPropose(t, useCase, "dave", "p0")
	p1 := mustPropose(t, useCase, "dave", "p1")
	p2 := mustPropose(t, useCase, "dave", "p2")

	mustVote(t, useCase, "dave", p0, entities.DirectionAye, 2)
	mustVote(t, useCase, "dave", p1, entities.DirectionNay, 3)

	if _, err := useCase.Vote(context.Background(), commands.VoteCommand{
		Voter: "dave", ProposalID: p2, Direction: entities.DirectionAye, Votes: 1,
	}); !errors.Is(err, domainerrors.ErrTooManyVotes) {
		t.Fatalf("expected too many votes, got %v", err)
	}

	if _, err := useCase.Vote(context.Background(), commands.VoteCommand{
		Voter: "dave", ProposalID: p0, Direction: entities.DirectionAye, Votes: 11,
	}); !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if _, err := useCase.Vote(context.Background(), commands.VoteCommand{
		Voter: "dave", ProposalID: p0, Direction: "sideways", Votes: 1,
	}); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	if _, err := useCase.Vote(context.Background(), commands.VoteCommand{
		Voter: "mallory", ProposalID: p0, Direction: entities.DirectionAye, Votes: 1,
	}); !errors.Is(err, domainerrors.ErrNotRegistered) {
		t.Fatalf("expected not registered, got %v", err)
	}

	if _, err := useCase.Vote(context.Background(), commands.VoteCommand{
		Voter: "dave", ProposalID: 99, Direction: entities.DirectionAye, Votes: 1,
	}); !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected proposal not found, got %v", err)
	}

	history, _, err := useCase.Ledger.GetVotingHistory(context.Background(), "dave")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected two records after failed votes, got %+v", history)
	}
	if got := frozenTokens(t, chain, "dave"); got != 9 {
		t.Fatalf("expected reservation unchanged at 9, got %d", got)
	}

	stored, err := useCase.Proposals.GetProposal(context.Background(), p0)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if stored.Ayes != 2 || stored.Nays != 0 {
		t.Fatalf("expected tallies unchanged at 2/0, got %d/%d", stored.Ayes, stored.Nays)
	}
}

func TestVoteTallyOverflowLeavesStateUntouched(t *testing.T) {
	useCase, store, chain := newGovernance(16, 100)
	store.SetRegistered("oscar")
	chain.SetBalance("oscar", 100)

	p0 := mustPropose(t, useCase, "oscar", "p0")
	seeded, err := useCase.Proposals.GetProposal(context.Background(), p0)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	seeded.Ayes = math.MaxUint64 - 1
	if err := useCase.Proposals.SaveProposal(context.Background(), seeded); err != nil {
		t.Fatalf("seed tallies failed: %v", err)
	}

	if _, err := useCase.Vote(context.Background(), commands.VoteCommand{
		Voter: "oscar", ProposalID: p0, Direction: entities.DirectionAye, Votes: 10,
	}); !errors.Is(err, domainerrors.ErrOverflow) {
		t.Fatalf("expected tally overflow, got %v", err)
	}

	history, found, err := useCase.Ledger.GetVotingHistory(context.Background(), "oscar")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if found && len(history) != 0 {
		t.Fatalf("expected no ledger record after failed vote, got %+v", history)
	}
	if got := frozenTokens(t, chain, "oscar"); got != 0 {
		t.Fatalf("expected no reservation after failed vote, got %d", got)
	}
	stored, err := useCase.Proposals.GetProposal(context.Background(), p0)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if stored.Ayes != math.MaxUint64-1 || stored.Nays != 0 {
		t.Fatalf("expected tallies unchanged, got %d/%d", stored.Ayes, stored.Nays)
	}
}

func TestVoteCostOverflowLeavesStateUntouched(t *testing.T) {
	useCase, store, chain := newGovernance(16, 100)
	store.SetRegistered("peggy")
	chain.SetBalance("peggy", 100)

	p0 := mustPropose(t, useCase, "peggy", "p0")

	if _, err := useCase.Vote(context.Background(), commands.VoteCommand{
		Voter: "peggy", ProposalID: p0, Direction: entities.DirectionAye, Votes: math.MaxUint64,
	}); !errors.Is(err, domainerrors.ErrOverflow) {
		t.Fatalf("expected cost overflow, got %v", err)
	}

	history, found, err := useCase.Ledger.GetVotingHistory(context.Background(), "peggy")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if found && len(history) != 0 {
		t.Fatalf("expected no ledger record after failed vote, got %+v", history)
	}
	if got := frozenTokens(t, chain, "peggy"); got != 0 {
		t.Fatalf("expected no reservation after failed vote, got %d", got)
	}
	stored, err := useCase.Proposals.GetProposal(context.Background(), p0)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if stored.Ayes != 0 || stored.Nays != 0 {
		t.Fatalf("expected zero tallies, got %d/%d", stored.Ayes, stored.Nays)
	}
}

func TestCloseHonorsDeadlineBoundary(t *testing.T) {
	useCase, store, _ := newGovernance(16, 10)
	store.SetRegistered("erin")
	store.SetBlock(5)

	p0 := mustPropose(t, useCase, "erin", "p0")

	if _, err := useCase.Close(context.Background(), commands.CloseCommand{Caller: "erin", ProposalID: p0}); !errors.Is(err, domainerrors.ErrVotingPeriodNotOver) {
		t.Fatalf("expected period not over, got %v", err)
	}

	// One block short of the deadline still fails.
	store.SetBlock(14)
	if _, err := useCase.Close(context.Background(), commands.CloseCommand{Caller: "erin", ProposalID: p0}); !errors.Is(err, domainerrors.ErrVotingPeriodNotOver) {
		t.Fatalf("expected period not over at block 14, got %v", err)
	}

	// Exactly start+duration is closable.
	store.SetBlock(15)
	result, err := useCase.Close(context.Background(), commands.CloseCommand{Caller: "erin", ProposalID: p0})
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if result.Outcome != entities.OutcomeTie {
		t.Fatalf("expected tie on zero tallies, got %s", result.Outcome)
	}

	if _, err := useCase.Close(context.Background(), commands.CloseCommand{Caller: "erin", ProposalID: p0}); !errors.Is(err, domainerrors.ErrVoteAlreadyEnded) {
		t.Fatalf("expected already ended, got %v", err)
	}
}

func TestCloseReportsOutcomeWithoutTouchingTallies(t *testing.T) {
	useCase, store, chain := newGovernance(16, 10)
	store.SetRegistered("frank")
	store.SetRegistered("grace")
	chain.SetBalance("frank", 100)
	chain.SetBalance("grace", 100)

	p0 := mustPropose(t, useCase, "frank", "p0")
	mustVote(t, useCase, "frank", p0, entities.DirectionAye, 4)
	mustVote(t, useCase, "grace", p0, entities.DirectionNay, 6)

	store.AdvanceBlocks(10)
	result, err := useCase.Close(context.Background(), commands.CloseCommand{Caller: "anyone", ProposalID: p0})
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if result.Outcome != entities.OutcomeNay || result.Ayes != 4 || result.Nays != 6 {
		t.Fatalf("expected nay at 4/6, got %+v", result)
	}

	stored, err := useCase.Proposals.GetProposal(context.Background(), p0)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if !stored.Closed || stored.Ayes != 4 || stored.Nays != 6 {
		t.Fatalf("expected closed proposal with intact tallies, got %+v", stored)
	}
}

func TestClaimReleasesByMaximumProposalID(t *testing.T) {
	useCase, store, chain := newGovernance(16, 10)
	store.SetRegistered("henry")
	chain.SetBalance("henry", 100)

	p0 := mustPropose(t, useCase, "henry", "p0")
	p1 := mustPropose(t, useCase, "henry", "p1")
	mustVote(t, useCase, "henry", p0, entities.DirectionAye, 6)
	mustVote(t, useCase, "henry", p1, entities.DirectionNay, 3)

	if _, err := useCase.Claim(context.Background(), commands.ClaimCommand{Claimer: "henry", ProposalID: p0}); !errors.Is(err, domainerrors.ErrVotingPeriodNotOver) {
		t.Fatalf("expected claim on open proposal to fail, got %v", err)
	}

	store.AdvanceBlocks(10)
	if _, err := useCase.Close(context.Background(), commands.CloseCommand{Caller: "henry", ProposalID: p0}); err != nil {
		t.Fatalf("close p0 failed: %v", err)
	}
	if _, err := useCase.Close(context.Background(), commands.CloseCommand{Caller: "henry", ProposalID: p1}); err != nil {
		t.Fatalf("close p1 failed: %v", err)
	}

	// p0 is not the binding vote while the p1 record is still held.
	result, err := useCase.Claim(context.Background(), commands.ClaimCommand{Claimer: "henry", ProposalID: p0})
	if err != nil {
		t.Fatalf("claim p0 failed: %v", err)
	}
	if result.Released {
		t.Fatalf("expected claim on non-binding vote to release nothing")
	}
	if got := frozenTokens(t, chain, "henry"); got != 36 {
		t.Fatalf("expected reservation unchanged at 36, got %d", got)
	}

	// Claiming the maximum id drops its record and settles to the remaining max.
	result, err = useCase.Claim(context.Background(), commands.ClaimCommand{Claimer: "henry", ProposalID: p1})
	if err != nil {
		t.Fatalf("claim p1 failed: %v", err)
	}
	if !result.Released {
		t.Fatalf("expected binding claim to release")
	}
	if got := frozenTokens(t, chain, "henry"); got != 36 {
		t.Fatalf("expected reservation to stay at 36 behind the p0 record, got %d", got)
	}

	result, err = useCase.Claim(context.Background(), commands.ClaimCommand{Claimer: "henry", ProposalID: p0})
	if err != nil {
		t.Fatalf("final claim failed: %v", err)
	}
	if !result.Released {
		t.Fatalf("expected final claim to release")
	}
	if got := frozenTokens(t, chain, "henry"); got != 0 {
		t.Fatalf("expected fully thawed account, got %d", got)
	}

	if _, err := useCase.Claim(context.Background(), commands.ClaimCommand{Claimer: "henry", ProposalID: p0}); !errors.Is(err, domainerrors.ErrNoVotes) {
		t.Fatalf("expected no votes left to claim, got %v", err)
	}
}

func TestOperationsAppendOutboxEvents(t *testing.T) {
	useCase, store, chain := newGovernance(16, 10)
	store.SetRegistered("iris")
	chain.SetBalance("iris", 100)

	p0 := mustPropose(t, useCase, "iris", "p0")
	mustVote(t, useCase, "iris", p0, entities.DirectionAye, 2)
	mustVote(t, useCase, "iris", p0, entities.DirectionAye, 0)

	store.AdvanceBlocks(10)
	if _, err := useCase.Close(context.Background(), commands.CloseCommand{Caller: "iris", ProposalID: p0}); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	expected := []string{
		"governance.proposal.created",
		"governance.vote.added",
		"governance.vote.cancelled",
		"governance.proposal.closed",
	}
	types := store.OutboxEventTypes()
	if len(types) != len(expected) {
		t.Fatalf("expected %d events, got %v", len(expected), types)
	}
	for index, eventType := range expected {
		if types[index] != eventType {
			t.Fatalf("expected event %d to be %s, got %s", index, eventType, types[index])
		}
	}
}
