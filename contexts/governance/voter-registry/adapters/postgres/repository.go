package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"agora/contexts/governance/voter-registry/domain/entities"
	domainerrors "agora/contexts/governance/voter-registry/domain/errors"
	"agora/contexts/governance/voter-registry/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

func (r *Repository) IsRegistered(ctx context.Context, account string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&voterModel{}).
		Where("account = ?", account).
		Count(&count).Error; err != nil {
		return false, r.logError("registry_repo_lookup_failed", err, "account", account)
	}
	return count > 0, nil
}

func (r *Repository) GetVoter(ctx context.Context, account string) (entities.Voter, bool, error) {
	var row voterModel
	err := r.db.WithContext(ctx).
		Where("account = ?", account).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voter{}, false, nil
		}
		return entities.Voter{}, false, r.logError("registry_repo_get_voter_failed", err, "account", account)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveVoter(ctx context.Context, voter entities.Voter) error {
	row := voterModel{
		Account:           voter.Account,
		RegisteredAtBlock: voter.RegisteredAtBlock,
		CreatedAt:         time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyRegistered
		}
		return r.logError("registry_repo_save_voter_failed", err, "account", voter.Account)
	}
	return nil
}

// AppendOutbox writes to the shared governance outbox table so one relay
// covers both governance modules.
func (r *Repository) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	row := outboxModel{
		ID:        message.OutboxID,
		EventType: message.EventType,
		Payload:   message.Payload,
		Status:    "pending",
		CreatedAt: message.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("registry_repo_append_outbox_failed", err, "outbox_id", message.OutboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/voter-registry",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("registry repository operation failed", fields...)
	return err
}

type voterModel struct {
	Account           string    `gorm:"column:account;primaryKey"`
	RegisteredAtBlock uint64    `gorm:"column:registered_at_block"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (voterModel) TableName() string {
	return "voter_registrations"
}

func (m voterModel) toEntity() entities.Voter {
	return entities.Voter{
		Account:           m.Account,
		RegisteredAtBlock: m.RegisteredAtBlock,
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

// UUIDGenerator satisfies the IDGenerator port with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.RegistryRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.IDGenerator = UUIDGenerator{}
