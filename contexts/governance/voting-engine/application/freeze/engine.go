// Package freeze drives the balance-ledger reservation that backs an
// account's active votes. The reserved amount is always the maximum single
// quadratic cost among the account's records, never the sum.
//
// Raising and shrinking are deliberately separate steps: ApplyNewVote only
// ever raises, RecomputeAfterRemoval only ever settles the reservation to
// what the remaining records justify. A vote replacement therefore shrinks
// then grows the lock within one logical operation.
package freeze

import (
	"context"
	"log/slog"

	application "agora/contexts/governance/voting-engine/application"
	"agora/contexts/governance/voting-engine/domain/entities"
	"agora/contexts/governance/voting-engine/domain/quadratic"
	"agora/contexts/governance/voting-engine/ports"
)

type Engine struct {
	Balances ports.BalanceLedger
	Reason   string
	Logger   *slog.Logger
}

func (e Engine) reason() string {
	if e.Reason == "" {
		return ports.FreezeReasonAccountDeposit
	}
	return e.Reason
}

// ApplyNewVote raises the account's reservation to requiredTokens when it
// exceeds the currently held amount. It never lowers the reservation; the
// lock tracks the maximum requirement until a recompute proves a smaller
// maximum is sufficient. The caller must have verified the account's balance
// covers requiredTokens; the engine does not re-check sufficiency.
func (e Engine) ApplyNewVote(ctx context.Context, account string, requiredTokens entities.Balance) error {
	frozen, err := e.Balances.FrozenBalance(ctx, e.reason(), account)
	if err != nil {
		return err
	}
	if requiredTokens <= frozen {
		return nil
	}
	if err := e.Balances.SetFreeze(ctx, e.reason(), account, requiredTokens); err != nil {
		return err
	}
	application.ResolveLogger(e.Logger).Info("account reservation raised",
		"event", "governance_freeze_raised",
		"module", "governance/voting-engine",
		"layer", "application",
		"account", account,
		"frozen_before", uint64(frozen),
		"frozen_after", uint64(requiredTokens),
	)
	return nil
}

// RecomputeAfterRemoval settles the reservation after a record was removed
// from the account's ledger. With records remaining it reserves the maximum
// quadratic cost among them, preferring the numerically larger proposal id on
// equal cost. With none remaining it thaws the reservation entirely.
func (e Engine) RecomputeAfterRemoval(ctx context.Context, account string, remaining []entities.VoteRecord) error {
	logger := application.ResolveLogger(e.Logger)
	if len(remaining) == 0 {
		if err := e.Balances.Thaw(ctx, e.reason(), account); err != nil {
			return err
		}
		logger.Info("account reservation thawed",
			"event", "governance_freeze_thawed",
			"module", "governance/voting-engine",
			"layer", "application",
			"account", account,
		)
		return nil
	}

	best := remaining[0]
	bestCost, err := quadratic.Cost(best.Votes)
	if err != nil {
		return err
	}
	for _, record := range remaining[1:] {
		cost, err := quadratic.Cost(record.Votes)
		if err != nil {
			return err
		}
		if cost > bestCost || (cost == bestCost && record.ProposalID > best.ProposalID) {
			best = record
			bestCost = cost
		}
	}

	if err := e.Balances.SetFreeze(ctx, e.reason(), account, bestCost); err != nil {
		return err
	}
	logger.Info("account reservation recomputed",
		"event", "governance_freeze_recomputed",
		"module", "governance/voting-engine",
		"layer", "application",
		"account", account,
		"binding_proposal_id", uint64(best.ProposalID),
		"frozen_after", uint64(bestCost),
	)
	return nil
}
