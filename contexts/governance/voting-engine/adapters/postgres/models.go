package postgresadapter

import (
	"time"

	"agora/contexts/governance/voting-engine/domain/entities"
)

type proposalModel struct {
	ID          uint64    `gorm:"column:id;primaryKey"`
	Description string    `gorm:"column:description"`
	StartBlock  uint64    `gorm:"column:start_block"`
	Ayes        uint64    `gorm:"column:ayes"`
	Nays        uint64    `gorm:"column:nays"`
	Closed      bool      `gorm:"column:closed"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "governance_proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	now := time.Now().UTC()
	return proposalModel{
		ID:          uint64(proposal.ProposalID),
		Description: proposal.Description,
		StartBlock:  uint64(proposal.StartBlock),
		Ayes:        uint64(proposal.Ayes),
		Nays:        uint64(proposal.Nays),
		Closed:      proposal.Closed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ProposalID:  entities.ProposalID(m.ID),
		Description: m.Description,
		StartBlock:  entities.BlockNumber(m.StartBlock),
		Ayes:        entities.Balance(m.Ayes),
		Nays:        entities.Balance(m.Nays),
		Closed:      m.Closed,
	}
}

// counterModel is the owned proposal id counter. One row, id 1.
type counterModel struct {
	ID             int    `gorm:"column:id;primaryKey"`
	NextProposalID uint64 `gorm:"column:next_proposal_id"`
}

func (counterModel) TableName() string {
	return "governance_proposal_counter"
}

type voteRecordModel struct {
	Account    string    `gorm:"column:account;primaryKey"`
	ProposalID uint64    `gorm:"column:proposal_id;primaryKey"`
	Direction  string    `gorm:"column:direction"`
	Votes      uint64    `gorm:"column:votes"`
	Position   int       `gorm:"column:position"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (voteRecordModel) TableName() string {
	return "governance_vote_records"
}

func (m voteRecordModel) toEntity() entities.VoteRecord {
	return entities.VoteRecord{
		ProposalID: entities.ProposalID(m.ProposalID),
		Direction:  entities.Direction(m.Direction),
		Votes:      entities.Balance(m.Votes),
	}
}

type outboxModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	EventType string    `gorm:"column:event_type"`
	Payload   []byte    `gorm:"column:payload"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (outboxModel) TableName() string {
	return "governance_outbox"
}
