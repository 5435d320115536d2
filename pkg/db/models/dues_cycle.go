package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// DuesCycle is one billing period with a fixed membership fee.
// At most one cycle is active; Activate swaps the flag transactionally.
type DuesCycle struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Label       string         `gorm:"column:label;not null;uniqueIndex"`
	AmountCents int64          `gorm:"column:amount_cents;not null"`
	Currency    enums.Currency `gorm:"column:currency;type:currency;not null;default:'USD'"`
	Active      bool           `gorm:"column:active;not null;default:false"`
	StartsOn    time.Time      `gorm:"column:starts_on;not null"`
	EndsOn      time.Time      `gorm:"column:ends_on;not null"`
	CreatedBy   uuid.UUID      `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
