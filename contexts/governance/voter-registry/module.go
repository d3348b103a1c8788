package voterregistry

import (
	"log/slog"

	httpadapter "agora/contexts/governance/voter-registry/adapters/http"
	"agora/contexts/governance/voter-registry/adapters/memory"
	"agora/contexts/governance/voter-registry/application/commands"
	"agora/contexts/governance/voter-registry/application/queries"
	"agora/contexts/governance/voter-registry/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Registry   ports.RegistryRepository
	Authorizer ports.Authorizer
	Clock      ports.BlockClock
	IDGen      ports.IDGenerator
	Outbox     ports.OutboxWriter
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	registerUseCase := commands.RegisterUseCase{
		Registry:   deps.Registry,
		Authorizer: deps.Authorizer,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Outbox:     deps.Outbox,
		Logger:     deps.Logger,
	}
	registryQueries := queries.RegistryQueryUseCase{
		Registry: deps.Registry,
	}
	return Module{
		Handler: httpadapter.Handler{
			Registrations: registerUseCase,
			Registry:      registryQueries,
			Logger:        deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store, for tests
// and local runs. Roots is the privileged allow-list.
func NewInMemoryModule(roots []string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Registry:   store,
		Authorizer: memory.NewRootAuthorizer(roots),
		Clock:      store,
		IDGen:      store,
		Outbox:     store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
