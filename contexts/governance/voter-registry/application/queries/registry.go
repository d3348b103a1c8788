package queries

import (
	"context"
	"strings"

	"agora/contexts/governance/voter-registry/domain/entities"
	domainerrors "agora/contexts/governance/voter-registry/domain/errors"
	"agora/contexts/governance/voter-registry/ports"
)

type RegistryQueryUseCase struct {
	Registry ports.RegistryRepository
}

// GetVoter is a pure lookup with no side effects. The bool reports presence.
func (uc RegistryQueryUseCase) GetVoter(ctx context.Context, account string) (entities.Voter, bool, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return entities.Voter{}, false, domainerrors.ErrInvalidAccount
	}
	return uc.Registry.GetVoter(ctx, account)
}
