package servicehours

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// Repository persists volunteering entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, entry *models.ServiceHour) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceHour, error)
	Update(ctx context.Context, entry *models.ServiceHour) error
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.ServiceHour, error)
	ListByStatus(ctx context.Context, status enums.ServiceHourStatus, limit int) ([]models.ServiceHour, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed service hour repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.ServiceHour) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceHour, error) {
	var entry models.ServiceHour
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Update(ctx context.Context, entry *models.ServiceHour) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]models.ServiceHour, error) {
	var entries []models.ServiceHour
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("served_on DESC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) ListByStatus(ctx context.Context, status enums.ServiceHourStatus, limit int) ([]models.ServiceHour, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.ServiceHour
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
