package dues

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
)

// CycleRepository handles dues cycle persistence.
type CycleRepository interface {
	WithTx(tx *gorm.DB) CycleRepository
	Create(ctx context.Context, cycle *models.DuesCycle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DuesCycle, error)
	FindActive(ctx context.Context) (*models.DuesCycle, error)
	List(ctx context.Context) ([]models.DuesCycle, error)
	DeactivateAll(ctx context.Context) error
	SetActive(ctx context.Context, id uuid.UUID) (bool, error)
}

type cycleRepository struct {
	db *gorm.DB
}

// NewCycleRepository returns a cycle repository bound to the provided database.
func NewCycleRepository(db *gorm.DB) CycleRepository {
	return &cycleRepository{db: db}
}

func (r *cycleRepository) WithTx(tx *gorm.DB) CycleRepository {
	if tx == nil {
		return r
	}
	return &cycleRepository{db: tx}
}

func (r *cycleRepository) Create(ctx context.Context, cycle *models.DuesCycle) error {
	return r.db.WithContext(ctx).Create(cycle).Error
}

func (r *cycleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.DuesCycle, error) {
	var cycle models.DuesCycle
	if err := r.db.WithContext(ctx).First(&cycle, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cycle, nil
}

func (r *cycleRepository) FindActive(ctx context.Context) (*models.DuesCycle, error) {
	var cycle models.DuesCycle
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("starts_on DESC").First(&cycle).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &cycle, nil
}

func (r *cycleRepository) List(ctx context.Context) ([]models.DuesCycle, error) {
	var cycles []models.DuesCycle
	if err := r.db.WithContext(ctx).Order("starts_on DESC").Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

func (r *cycleRepository) DeactivateAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&models.DuesCycle{}).
		Where("active = ?", true).
		UpdateColumn("active", false).Error
}

func (r *cycleRepository) SetActive(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.DuesCycle{}).
		Where("id = ?", id).
		UpdateColumn("active", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
