package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
	"agora/contexts/governance/voting-engine/ports"

	"github.com/google/uuid"
)

// Store is the in-memory proposal store, vote ledger, registry projection,
// outbox, id generator, and block clock used by tests and in-memory wiring.
type Store struct {
	mu sync.RWMutex

	nextProposalID entities.ProposalID
	proposals      map[entities.ProposalID]entities.Proposal
	ledgers        map[string][]entities.VoteRecord
	registered     map[string]bool
	outbox         []ports.OutboxMessage
	published      map[string]bool
	currentBlock   entities.BlockNumber
}

func NewStore() *Store {
	return &Store{
		proposals:  make(map[entities.ProposalID]entities.Proposal),
		ledgers:    make(map[string][]entities.VoteRecord),
		registered: make(map[string]bool),
		published:  make(map[string]bool),
	}
}

// SetRegistered seeds the registry projection.
func (s *Store) SetRegistered(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered[strings.TrimSpace(account)] = true
}

// SetBlock pins the clock to an absolute height. The clock never moves
// backwards; lower values are ignored.
func (s *Store) SetBlock(block entities.BlockNumber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if block > s.currentBlock {
		s.currentBlock = block
	}
}

func (s *Store) AdvanceBlocks(delta entities.BlockNumber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentBlock += delta
}

func (s *Store) CurrentBlock() entities.BlockNumber {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentBlock
}

func (s *Store) IsRegistered(_ context.Context, account string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registered[strings.TrimSpace(account)], nil
}

func (s *Store) CreateProposal(_ context.Context, proposal entities.Proposal) (entities.ProposalID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// The id after this one must stay representable, so the final id of the
	// domain is never handed out.
	if uint64(s.nextProposalID) == math.MaxUint64 {
		return 0, domainerrors.ErrOverflow
	}
	proposalID := s.nextProposalID
	proposal.ProposalID = proposalID
	s.proposals[proposalID] = proposal
	s.nextProposalID++
	return proposalID, nil
}

func (s *Store) GetProposal(_ context.Context, id entities.ProposalID) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[id]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) SaveProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[proposal.ProposalID]; !ok {
		return domainerrors.ErrProposalNotFound
	}
	s.proposals[proposal.ProposalID] = proposal
	return nil
}

func (s *Store) ListProposals(_ context.Context) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposals := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		proposals = append(proposals, proposal)
	}
	sort.Slice(proposals, func(i, j int) bool {
		return proposals[i].ProposalID < proposals[j].ProposalID
	})
	return proposals, nil
}

func (s *Store) GetVotingHistory(_ context.Context, account string) ([]entities.VoteRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.ledgers[strings.TrimSpace(account)]
	if !ok {
		return nil, false, nil
	}
	copied := make([]entities.VoteRecord, len(records))
	copy(copied, records)
	return copied, true, nil
}

func (s *Store) SaveVotingHistory(_ context.Context, account string, records []entities.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]entities.VoteRecord, len(records))
	copy(copied, records)
	s.ledgers[strings.TrimSpace(account)] = copied
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, message ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, message)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := make([]ports.OutboxMessage, 0, limit)
	for _, message := range s.outbox {
		if s.published[message.OutboxID] {
			continue
		}
		pending = append(pending, message)
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[outboxID] = true
	return nil
}

// OutboxEventTypes lists appended event types in order, for assertions.
func (s *Store) OutboxEventTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]string, 0, len(s.outbox))
	for _, message := range s.outbox {
		types = append(types, message.EventType)
	}
	return types
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.ProposalRepository = (*Store)(nil)
var _ ports.VoteLedgerRepository = (*Store)(nil)
var _ ports.RegistryReader = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
var _ ports.BlockClock = (*Store)(nil)
