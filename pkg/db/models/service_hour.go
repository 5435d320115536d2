package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// ServiceHour is one logged volunteering entry. Minutes avoids fractional
// hour drift the same way cents avoids fractional currency.
type ServiceHour struct {
	ID         uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID   uuid.UUID               `gorm:"column:member_id;type:uuid;not null;index"`
	Activity   string                  `gorm:"column:activity;not null"`
	Minutes    int                     `gorm:"column:minutes;not null"`
	ServedOn   time.Time               `gorm:"column:served_on;not null"`
	Status     enums.ServiceHourStatus `gorm:"column:status;type:service_hour_status;not null;default:'submitted'"`
	ReviewedBy *uuid.UUID              `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt *time.Time              `gorm:"column:reviewed_at"`
	ReviewNote *string                 `gorm:"column:review_note"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
