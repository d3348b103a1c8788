package ports

import (
	"context"
	"time"

	"agora/contexts/governance/voter-registry/domain/entities"
)

type RegistryRepository interface {
	IsRegistered(ctx context.Context, account string) (bool, error)
	GetVoter(ctx context.Context, account string) (entities.Voter, bool, error)
	SaveVoter(ctx context.Context, voter entities.Voter) error
}

// Authorizer is the privileged-caller gate. Only registration goes through
// it; every other governance operation accepts any authenticated caller.
type Authorizer interface {
	IsPrivileged(ctx context.Context, actor string) (bool, error)
}

// BlockClock reports the current block height of the host chain.
type BlockClock interface {
	CurrentBlock() uint64
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	Status    string
	CreatedAt time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, message OutboxMessage) error
}
