package memory

import (
	"context"
	"strings"
	"sync"

	"agora/contexts/governance/voting-engine/domain/entities"
	"agora/contexts/governance/voting-engine/ports"
)

// ChainLedger is an in-process stand-in for the host chain's balance ledger.
// It tracks one total balance per account and one reservation per
// (reason, account) pair, mirroring the set-to-exact-amount semantics of the
// real freeze primitive: SetFreeze overwrites, Thaw clears.
type ChainLedger struct {
	mu       sync.RWMutex
	balances map[string]entities.Balance
	freezes  map[string]map[string]entities.Balance
	fallback entities.Balance
}

func NewChainLedger() *ChainLedger {
	return &ChainLedger{
		balances: make(map[string]entities.Balance),
		freezes:  make(map[string]map[string]entities.Balance),
	}
}

// NewSeededChainLedger returns a ledger that reports fallback as the total
// balance of any account that was never seeded explicitly.
func NewSeededChainLedger(fallback entities.Balance) *ChainLedger {
	ledger := NewChainLedger()
	ledger.fallback = fallback
	return ledger
}

// SetBalance seeds an account's total balance.
func (l *ChainLedger) SetBalance(account string, amount entities.Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[strings.TrimSpace(account)] = amount
}

func (l *ChainLedger) TotalBalance(_ context.Context, account string) (entities.Balance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if amount, ok := l.balances[strings.TrimSpace(account)]; ok {
		return amount, nil
	}
	return l.fallback, nil
}

func (l *ChainLedger) FrozenBalance(_ context.Context, reason string, account string) (entities.Balance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.freezes[reason][strings.TrimSpace(account)], nil
}

func (l *ChainLedger) SetFreeze(_ context.Context, reason string, account string, amount entities.Balance) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	byAccount, ok := l.freezes[reason]
	if !ok {
		byAccount = make(map[string]entities.Balance)
		l.freezes[reason] = byAccount
	}
	byAccount[strings.TrimSpace(account)] = amount
	return nil
}

func (l *ChainLedger) Thaw(_ context.Context, reason string, account string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.freezes[reason], strings.TrimSpace(account))
	return nil
}

var _ ports.BalanceLedger = (*ChainLedger)(nil)
