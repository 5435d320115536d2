package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// DuesRecord is the payment-status record for one member within one cycle.
// The (member, cycle) pair is unique; CheckoutSessionID is the idempotency
// key that maps gateway callbacks back onto the row.
type DuesRecord struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID          uuid.UUID        `gorm:"column:member_id;type:uuid;not null;uniqueIndex:idx_dues_member_cycle"`
	CycleID           uuid.UUID        `gorm:"column:cycle_id;type:uuid;not null;uniqueIndex:idx_dues_member_cycle"`
	Status            enums.DuesStatus `gorm:"column:status;type:dues_status;not null;default:'pending'"`
	AmountCents       int64            `gorm:"column:amount_cents;not null"`
	Currency          enums.Currency   `gorm:"column:currency;type:currency;not null;default:'USD'"`
	CheckoutSessionID *string          `gorm:"column:checkout_session_id;uniqueIndex"`
	PaymentRef        *string          `gorm:"column:payment_ref"`
	SettledAt         *time.Time       `gorm:"column:settled_at"`
	OverrideActorID   *uuid.UUID       `gorm:"column:override_actor_id;type:uuid"`
	OverrideNote      *string          `gorm:"column:override_note"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
