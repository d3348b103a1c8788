package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"agora/contexts/governance/voting-engine/domain/entities"
	domainerrors "agora/contexts/governance/voting-engine/domain/errors"
	"agora/contexts/governance/voting-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreateProposal allocates the next id from the single-row counter and
// inserts the proposal in one transaction, so a failed insert never consumes
// an id.
func (r *Repository) CreateProposal(ctx context.Context, proposal entities.Proposal) (entities.ProposalID, error) {
	var assigned entities.ProposalID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter counterModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", 1).
			First(&counter).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = counterModel{ID: 1, NextProposalID: 0}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if counter.NextProposalID == math.MaxUint64 {
			return domainerrors.ErrOverflow
		}
		assigned = entities.ProposalID(counter.NextProposalID)

		row := proposalModelFromEntity(proposal)
		row.ID = uint64(assigned)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		counter.NextProposalID++
		return tx.Save(&counter).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrOverflow) {
			return 0, err
		}
		return 0, r.logError("governance_repo_create_proposal_failed", err)
	}
	return assigned, nil
}

func (r *Repository) GetProposal(ctx context.Context, id entities.ProposalID) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", uint64(id)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("governance_repo_get_proposal_failed", err,
			"proposal_id", uint64(id),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveProposal(ctx context.Context, proposal entities.Proposal) error {
	result := r.db.WithContext(ctx).Model(&proposalModel{}).
		Where("id = ?", uint64(proposal.ProposalID)).
		Updates(map[string]any{
			"ayes":       uint64(proposal.Ayes),
			"nays":       uint64(proposal.Nays),
			"closed":     proposal.Closed,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return r.logError("governance_repo_save_proposal_failed", result.Error,
			"proposal_id", uint64(proposal.ProposalID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return nil
}

func (r *Repository) ListProposals(ctx context.Context) ([]entities.Proposal, error) {
	var rows []proposalModel
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_proposals_failed", err)
	}
	proposals := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		proposals = append(proposals, row.toEntity())
	}
	return proposals, nil
}

func (r *Repository) GetVotingHistory(ctx context.Context, account string) ([]entities.VoteRecord, bool, error) {
	var rows []voteRecordModel
	if err := r.db.WithContext(ctx).
		Where("account = ?", account).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, false, r.logError("governance_repo_get_history_failed", err,
			"account", account,
		)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	records := make([]entities.VoteRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}
	return records, true, nil
}

// SaveVotingHistory replaces the account's ledger atomically. Positions are
// rewritten from the slice order, which is insertion order by construction.
func (r *Repository) SaveVotingHistory(ctx context.Context, account string, records []entities.VoteRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account = ?", account).Delete(&voteRecordModel{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		now := time.Now().UTC()
		rows := make([]voteRecordModel, 0, len(records))
		for position, record := range records {
			rows = append(rows, voteRecordModel{
				Account:    account,
				ProposalID: uint64(record.ProposalID),
				Direction:  string(record.Direction),
				Votes:      uint64(record.Votes),
				Position:   position,
				CreatedAt:  now,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return r.logError("governance_repo_save_history_failed", err,
			"account", account,
			"records", len(records),
		)
	}
	return nil
}

// IsRegistered reads the registration table owned by the voter-registry
// module. The modules share one database; reads stay on this side of the
// module boundary, writes stay on the registry's.
func (r *Repository) IsRegistered(ctx context.Context, account string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("voter_registrations").
		Where("account = ?", account).
		Count(&count).Error; err != nil {
		return false, r.logError("governance_repo_registry_lookup_failed", err,
			"account", account,
		)
	}
	return count > 0, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	row := outboxModel{
		ID:        message.OutboxID,
		EventType: message.EventType,
		Payload:   message.Payload,
		Status:    outboxStatusPending,
		CreatedAt: message.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("governance_repo_append_outbox_failed", err,
			"outbox_id", message.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("governance_repo_list_outbox_failed", err)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:  row.ID,
			EventType: row.EventType,
			Payload:   row.Payload,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string) error {
	if err := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Update("status", outboxStatusPublished).Error; err != nil {
		return r.logError("governance_repo_mark_outbox_failed", err,
			"outbox_id", outboxID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

// UUIDGenerator satisfies the IDGenerator port with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ProposalRepository = (*Repository)(nil)
var _ ports.VoteLedgerRepository = (*Repository)(nil)
var _ ports.RegistryReader = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.IDGenerator = UUIDGenerator{}
