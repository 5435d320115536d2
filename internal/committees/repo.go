package committees

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// Repository persists committees and their seat assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, committee *models.Committee) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Committee, error)
	List(ctx context.Context) ([]models.Committee, error)

	FindSeat(ctx context.Context, committeeID, memberID uuid.UUID) (*models.CommitteeMember, error)
	CountSeats(ctx context.Context, committeeID uuid.UUID, seat enums.CommitteeSeat) (int64, error)
	CreateSeat(ctx context.Context, seat *models.CommitteeMember) error
	DeleteSeat(ctx context.Context, committeeID, memberID uuid.UUID) (bool, error)
	ListSeats(ctx context.Context, committeeID uuid.UUID) ([]models.CommitteeMember, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed committee repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, committee *models.Committee) error {
	return r.db.WithContext(ctx).Create(committee).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Committee, error) {
	var committee models.Committee
	err := r.db.WithContext(ctx).First(&committee, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &committee, nil
}

func (r *repository) List(ctx context.Context) ([]models.Committee, error) {
	var committees []models.Committee
	err := r.db.WithContext(ctx).Order("name ASC").Find(&committees).Error
	return committees, err
}

func (r *repository) FindSeat(ctx context.Context, committeeID, memberID uuid.UUID) (*models.CommitteeMember, error) {
	var seat models.CommitteeMember
	err := r.db.WithContext(ctx).
		First(&seat, "committee_id = ? AND member_id = ?", committeeID, memberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repository) CountSeats(ctx context.Context, committeeID uuid.UUID, seat enums.CommitteeSeat) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommitteeMember{}).
		Where("committee_id = ? AND seat = ?", committeeID, seat).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateSeat(ctx context.Context, seat *models.CommitteeMember) error {
	return r.db.WithContext(ctx).Create(seat).Error
}

func (r *repository) DeleteSeat(ctx context.Context, committeeID, memberID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("committee_id = ? AND member_id = ?", committeeID, memberID).
		Delete(&models.CommitteeMember{})
	return result.RowsAffected > 0, result.Error
}

func (r *repository) ListSeats(ctx context.Context, committeeID uuid.UUID) ([]models.CommitteeMember, error) {
	var seats []models.CommitteeMember
	err := r.db.WithContext(ctx).
		Where("committee_id = ?", committeeID).
		Order("joined_at ASC").
		Find(&seats).Error
	return seats, err
}
