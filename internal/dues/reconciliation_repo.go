package dues

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// ReconciliationRepository parks gateway callbacks that matched no local record.
type ReconciliationRepository interface {
	WithTx(tx *gorm.DB) ReconciliationRepository
	Create(ctx context.Context, item *models.ReconciliationItem) error
	List(ctx context.Context, status enums.ReconciliationStatus, limit int) ([]models.ReconciliationItem, error)
	Resolve(ctx context.Context, id, actorID uuid.UUID, status enums.ReconciliationStatus, note string, now time.Time) (bool, error)
}

type reconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository returns a reconciliation repository bound to the provided database.
func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) WithTx(tx *gorm.DB) ReconciliationRepository {
	if tx == nil {
		return r
	}
	return &reconciliationRepository{db: tx}
}

func (r *reconciliationRepository) Create(ctx context.Context, item *models.ReconciliationItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *reconciliationRepository) List(ctx context.Context, status enums.ReconciliationStatus, limit int) ([]models.ReconciliationItem, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var items []models.ReconciliationItem
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *reconciliationRepository) Resolve(ctx context.Context, id, actorID uuid.UUID, status enums.ReconciliationStatus, note string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ReconciliationItem{}).
		Where("id = ? AND status = ?", id, enums.ReconciliationStatusOpen).
		Updates(map[string]any{
			"status":          status,
			"resolved_by":     actorID,
			"resolved_at":     now,
			"resolution_note": note,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
