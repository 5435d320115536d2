package finance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// Repository handles treasury persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.LedgerEntry) error
	ListEntries(ctx context.Context, query ListEntriesQuery) ([]models.LedgerEntry, error)
	SummarizeCycle(ctx context.Context, cycleID uuid.UUID) ([]CycleTotal, error)
}

// ListEntriesQuery filters ledger listings.
type ListEntriesQuery struct {
	CycleID  *uuid.UUID
	MemberID *uuid.UUID
	Type     *enums.LedgerEntryType
	Limit    int
}

// CycleTotal is one aggregated revenue row for a cycle.
type CycleTotal struct {
	Type       enums.LedgerEntryType `json:"type"`
	Currency   enums.Currency        `json:"currency"`
	TotalCents int64                 `json:"total_cents"`
	Entries    int64                 `json:"entries"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a finance repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, query ListEntriesQuery) ([]models.LedgerEntry, error) {
	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if query.CycleID != nil {
		q = q.Where("cycle_id = ?", *query.CycleID)
	}
	if query.MemberID != nil {
		q = q.Where("member_id = ?", *query.MemberID)
	}
	if query.Type != nil {
		q = q.Where("type = ?", *query.Type)
	}
	var rows []models.LedgerEntry
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SummarizeCycle(ctx context.Context, cycleID uuid.UUID) ([]CycleTotal, error) {
	var totals []CycleTotal
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("type, currency, SUM(amount_cents) AS total_cents, COUNT(*) AS entries").
		Where("cycle_id = ?", cycleID).
		Group("type, currency").
		Order("type ASC, currency ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}
