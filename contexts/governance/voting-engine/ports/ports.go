package ports

import (
	"context"
	"time"

	"agora/contexts/governance/voting-engine/domain/entities"
)

// FreezeReasonAccountDeposit is the named reservation tag this module uses on
// the balance ledger. Nothing else touches reservations made under it.
const FreezeReasonAccountDeposit = "governance.account_deposit"

// ProposalRepository is the proposal store. CreateProposal owns the id
// counter: it assigns the next sequential id and advances the counter only
// when the insert succeeds, failing the allocation when the id domain is
// exhausted.
type ProposalRepository interface {
	CreateProposal(ctx context.Context, proposal entities.Proposal) (entities.ProposalID, error)
	GetProposal(ctx context.Context, id entities.ProposalID) (entities.Proposal, error)
	SaveProposal(ctx context.Context, proposal entities.Proposal) error
	ListProposals(ctx context.Context) ([]entities.Proposal, error)
}

// VoteLedgerRepository stores each account's active vote records in the
// order the votes were first cast. The bool reports whether the account has
// a ledger entry at all.
type VoteLedgerRepository interface {
	GetVotingHistory(ctx context.Context, account string) ([]entities.VoteRecord, bool, error)
	SaveVotingHistory(ctx context.Context, account string, records []entities.VoteRecord) error
}

// BalanceLedger is the host ledger holding balances and named reservations.
// SetFreeze overwrites the reservation under reason to exactly amount; Thaw
// clears it. The core never mutates balances directly.
type BalanceLedger interface {
	TotalBalance(ctx context.Context, account string) (entities.Balance, error)
	FrozenBalance(ctx context.Context, reason string, account string) (entities.Balance, error)
	SetFreeze(ctx context.Context, reason string, account string, amount entities.Balance) error
	Thaw(ctx context.Context, reason string, account string) error
}

// RegistryReader is the voting engine's view of the voter registry.
type RegistryReader interface {
	IsRegistered(ctx context.Context, account string) (bool, error)
}

// BlockClock reports the current block height of the host chain.
type BlockClock interface {
	CurrentBlock() entities.BlockNumber
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	Status    string // pending, published
	CreatedAt time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, message OutboxMessage) error
}

type OutboxRepository interface {
	OutboxWriter
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string) error
}
