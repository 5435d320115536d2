package dues

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// RecordRepository handles member dues record persistence.
type RecordRepository interface {
	WithTx(tx *gorm.DB) RecordRepository
	Create(ctx context.Context, record *models.DuesRecord) error
	Update(ctx context.Context, record *models.DuesRecord) error
	FindByMemberAndCycle(ctx context.Context, memberID, cycleID uuid.UUID) (*models.DuesRecord, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*models.DuesRecord, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.DuesRecord, error)
	ListByCycle(ctx context.Context, cycleID uuid.UUID, limit int) ([]models.DuesRecord, error)
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository returns a dues record repository bound to the provided database.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) WithTx(tx *gorm.DB) RecordRepository {
	if tx == nil {
		return r
	}
	return &recordRepository{db: tx}
}

func (r *recordRepository) Create(ctx context.Context, record *models.DuesRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *recordRepository) Update(ctx context.Context, record *models.DuesRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *recordRepository) FindByMemberAndCycle(ctx context.Context, memberID, cycleID uuid.UUID) (*models.DuesRecord, error) {
	var record models.DuesRecord
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND cycle_id = ?", memberID, cycleID).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) FindByCheckoutSession(ctx context.Context, sessionID string) (*models.DuesRecord, error) {
	var record models.DuesRecord
	err := r.db.WithContext(ctx).
		Where("checkout_session_id = ?", sessionID).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.DuesRecord, error) {
	var records []models.DuesRecord
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ExpireStalePending is the safety net for checkout sessions whose
// expiration callback never arrived. Terminal records are untouched.
func (r *recordRepository) ExpireStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DuesRecord{}).
		Where("status = ? AND updated_at < ?", enums.DuesStatusPending, cutoff).
		Update("status", enums.DuesStatusExpired)
	return result.RowsAffected, result.Error
}

func (r *recordRepository) ListByCycle(ctx context.Context, cycleID uuid.UUID, limit int) ([]models.DuesRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 250
	}
	var records []models.DuesRecord
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
