package votingengine

import (
	"log/slog"

	httpadapter "agora/contexts/governance/voting-engine/adapters/http"
	"agora/contexts/governance/voting-engine/adapters/memory"
	"agora/contexts/governance/voting-engine/application/commands"
	"agora/contexts/governance/voting-engine/application/freeze"
	"agora/contexts/governance/voting-engine/application/queries"
	"agora/contexts/governance/voting-engine/domain/entities"
	"agora/contexts/governance/voting-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
	Chain   *memory.ChainLedger
}

type Dependencies struct {
	Proposals        ports.ProposalRepository
	Ledger           ports.VoteLedgerRepository
	Registry         ports.RegistryReader
	Balances         ports.BalanceLedger
	Clock            ports.BlockClock
	IDGen            ports.IDGenerator
	Outbox           ports.OutboxWriter
	MaxVotes         int
	ProposalDuration entities.BlockNumber
	Logger           *slog.Logger
}

func NewModule(deps Dependencies) Module {
	freezeEngine := freeze.Engine{
		Balances: deps.Balances,
		Reason:   ports.FreezeReasonAccountDeposit,
		Logger:   deps.Logger,
	}
	governanceUseCase := commands.GovernanceUseCase{
		Proposals:        deps.Proposals,
		Ledger:           deps.Ledger,
		Registry:         deps.Registry,
		Balances:         deps.Balances,
		Freezes:          freezeEngine,
		Clock:            deps.Clock,
		IDGen:            deps.IDGen,
		Outbox:           deps.Outbox,
		MaxVotes:         deps.MaxVotes,
		ProposalDuration: deps.ProposalDuration,
		Logger:           deps.Logger,
	}
	proposalQueries := queries.ProposalQueryUseCase{
		Proposals: deps.Proposals,
		Ledger:    deps.Ledger,
		Balances:  deps.Balances,
	}
	return Module{
		Handler: httpadapter.Handler{
			Governance: governanceUseCase,
			Proposals:  proposalQueries,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store and chain
// ledger, for tests and local runs.
func NewInMemoryModule(maxVotes int, duration entities.BlockNumber, logger *slog.Logger) Module {
	store := memory.NewStore()
	chain := memory.NewChainLedger()
	module := NewModule(Dependencies{
		Proposals:        store,
		Ledger:           store,
		Registry:         store,
		Balances:         chain,
		Clock:            store,
		IDGen:            store,
		Outbox:           store,
		MaxVotes:         maxVotes,
		ProposalDuration: duration,
		Logger:           logger,
	})
	module.Store = store
	module.Chain = chain
	return module
}
