package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// Member represents the canonical identity entity. Members are never
// hard-deleted; status transitions cover the whole lifecycle.
type Member struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string             `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	DisplayName  string             `gorm:"column:display_name;not null"`
	Phone        *string            `gorm:"column:phone"`
	Role         enums.MemberRole   `gorm:"column:role;type:member_role;not null;default:'member'"`
	Status       enums.MemberStatus `gorm:"column:status;type:member_status;not null;default:'pending'"`
	ApprovedBy   *uuid.UUID         `gorm:"column:approved_by;type:uuid"`
	ApprovedAt   *time.Time         `gorm:"column:approved_at"`
	LastLoginAt  *time.Time         `gorm:"column:last_login_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
