package unit

import (
	"context"
	"testing"

	voterregistry "agora/contexts/governance/voter-registry"
	registryhttp "agora/contexts/governance/voter-registry/transport/http"
	votingengine "agora/contexts/governance/voting-engine"
	governancememory "agora/contexts/governance/voting-engine/adapters/memory"
	"agora/contexts/governance/voting-engine/domain/entities"
	governancehttp "agora/contexts/governance/voting-engine/transport/http"
)

// buildGovernance wires the registry and voting modules against shared
// in-memory infrastructure, the way bootstrap does for the real processes.
func buildGovernance(roots []string) (voterregistry.Module, votingengine.Module, *governancememory.Store, *governancememory.ChainLedger) {
	registryModule := voterregistry.NewInMemoryModule(roots, nil)
	store := governancememory.NewStore()
	chain := governancememory.NewChainLedger()
	votingModule := votingengine.NewModule(votingengine.Dependencies{
		Proposals:        store,
		Ledger:           store,
		Registry:         registryModule.Store,
		Balances:         chain,
		Clock:            store,
		IDGen:            store,
		Outbox:           store,
		MaxVotes:         16,
		ProposalDuration: 10,
	})
	votingModule.Store = store
	votingModule.Chain = chain
	return registryModule, votingModule, store, chain
}

func TestGovernanceEndToEnd(t *testing.T) {
	registryModule, votingModule, store, chain := buildGovernance([]string{"root"})
	ctx := context.Background()

	if _, err := registryModule.Handler.RegisterVoterHandler(ctx, "root", registryhttp.RegisterVoterRequest{Account: "alice"}); err != nil {
		t.Fatalf("register alice failed: %v", err)
	}
	if _, err := registryModule.Handler.RegisterVoterHandler(ctx, "root", registryhttp.RegisterVoterRequest{Account: "bob"}); err != nil {
		t.Fatalf("register bob failed: %v", err)
	}
	chain.SetBalance("alice", 100)
	chain.SetBalance("bob", 100)

	proposed, err := votingModule.Handler.ProposeHandler(ctx, "alice", governancehttp.ProposeRequest{
		Description: "fund the bridge upgrade",
	})
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	if _, err := votingModule.Handler.VoteHandler(ctx, "alice", proposed.ProposalID, governancehttp.VoteRequest{
		Direction: "aye", Votes: 5,
	}); err != nil {
		t.Fatalf("alice vote failed: %v", err)
	}
	if _, err := votingModule.Handler.VoteHandler(ctx, "bob", proposed.ProposalID, governancehttp.VoteRequest{
		Direction: "nay", Votes: 3,
	}); err != nil {
		t.Fatalf("bob vote failed: %v", err)
	}

	votes, err := votingModule.Handler.AccountVotesHandler(ctx, "alice")
	if err != nil {
		t.Fatalf("account votes failed: %v", err)
	}
	if votes.FrozenTokens != 25 {
		t.Fatalf("expected 25 tokens frozen for alice, got %d", votes.FrozenTokens)
	}
	if len(votes.Items) != 1 || votes.Items[0].RequiredTokens != 25 {
		t.Fatalf("expected one vote costing 25, got %+v", votes.Items)
	}

	store.AdvanceBlocks(10)
	closed, err := votingModule.Handler.CloseHandler(ctx, "alice", proposed.ProposalID)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Outcome != string(entities.OutcomeAye) || closed.Ayes != 5 || closed.Nays != 3 {
		t.Fatalf("expected aye at 5/3, got %+v", closed)
	}

	claimed, err := votingModule.Handler.ClaimHandler(ctx, "alice", proposed.ProposalID)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if !claimed.Released {
		t.Fatalf("expected claim to release alice's tokens")
	}

	votes, err = votingModule.Handler.AccountVotesHandler(ctx, "alice")
	if err != nil {
		t.Fatalf("account votes failed: %v", err)
	}
	if votes.FrozenTokens != 0 || len(votes.Items) != 0 {
		t.Fatalf("expected alice fully thawed, got %+v", votes)
	}
}

func TestGovernanceRejectsUnregisteredVoter(t *testing.T) {
	registryModule, votingModule, _, chain := buildGovernance([]string{"root"})
	ctx := context.Background()

	if _, err := registryModule.Handler.RegisterVoterHandler(ctx, "root", registryhttp.RegisterVoterRequest{Account: "alice"}); err != nil {
		t.Fatalf("register alice failed: %v", err)
	}
	chain.SetBalance("mallory", 100)

	proposed, err := votingModule.Handler.ProposeHandler(ctx, "alice", governancehttp.ProposeRequest{
		Description: "reduce inflation",
	})
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	if _, err := votingModule.Handler.VoteHandler(ctx, "mallory", proposed.ProposalID, governancehttp.VoteRequest{
		Direction: "aye", Votes: 1,
	}); err == nil {
		t.Fatalf("expected unregistered vote to fail")
	}

	voter, err := registryModule.Handler.GetVoterHandler(ctx, "mallory")
	if err != nil {
		t.Fatalf("get voter failed: %v", err)
	}
	if voter.Registered {
		t.Fatalf("expected mallory to stay unregistered")
	}
}
