package memory

import (
	"context"
	"strings"
	"sync"

	"agora/contexts/governance/voter-registry/domain/entities"
	"agora/contexts/governance/voter-registry/ports"

	"github.com/google/uuid"
)

// Store is the in-memory registry repository, outbox, id generator, and
// block clock used by tests and in-memory wiring.
type Store struct {
	mu           sync.RWMutex
	voters       map[string]entities.Voter
	outbox       []ports.OutboxMessage
	currentBlock uint64
}

func NewStore() *Store {
	return &Store{
		voters: make(map[string]entities.Voter),
	}
}

func (s *Store) SetBlock(block uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if block > s.currentBlock {
		s.currentBlock = block
	}
}

func (s *Store) CurrentBlock() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentBlock
}

func (s *Store) IsRegistered(_ context.Context, account string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.voters[strings.TrimSpace(account)]
	return ok, nil
}

func (s *Store) GetVoter(_ context.Context, account string) (entities.Voter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voter, ok := s.voters[strings.TrimSpace(account)]
	return voter, ok, nil
}

func (s *Store) SaveVoter(_ context.Context, voter entities.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voters[strings.TrimSpace(voter.Account)] = voter
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, message ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, message)
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

// RootAuthorizer gates privileged calls on a fixed allow-list of root
// accounts.
type RootAuthorizer struct {
	roots map[string]bool
}

func NewRootAuthorizer(roots []string) *RootAuthorizer {
	set := make(map[string]bool, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root != "" {
			set[root] = true
		}
	}
	return &RootAuthorizer{roots: set}
}

func (a *RootAuthorizer) IsPrivileged(_ context.Context, actor string) (bool, error) {
	return a.roots[strings.TrimSpace(actor)], nil
}

var _ ports.RegistryRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
var _ ports.BlockClock = (*Store)(nil)
var _ ports.Authorizer = (*RootAuthorizer)(nil)
