// Package quadratic holds the checked token arithmetic the governance core
// relies on. Every tally and cost computation goes through these helpers so
// overflow and underflow surface as typed errors instead of wrapped values.
package quadratic

import (
	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
)

func Add(a, b entities.Balance) (entities.Balance, error) {
	sum := a + b
	if sum < a {
		return 0, domainerrors.ErrOverflow
	}
	return sum, nil
}

func Sub(a, b entities.Balance) (entities.Balance, error) {
	if b > a {
		return 0, domainerrors.ErrUnderflow
	}
	return a - b, nil
}

func Mul(a, b entities.Balance) (entities.Balance, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/a != b {
		return 0, domainerrors.ErrOverflow
	}
	return product, nil
}

// Cost is the quadratic cost law: casting n votes requires n*n tokens.
func Cost(votes entities.Balance) (entities.Balance, error) {
	return Mul(votes, votes)
}
