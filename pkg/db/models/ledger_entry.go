package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// LedgerEntry is an append-only treasury row. Dues settlements carry the
// dues record id so revenue is recorded exactly once per settlement.
type LedgerEntry struct {
	ID           uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type         enums.LedgerEntryType `gorm:"column:type;type:ledger_entry_type;not null"`
	DuesRecordID *uuid.UUID            `gorm:"column:dues_record_id;type:uuid;uniqueIndex"`
	MemberID     *uuid.UUID            `gorm:"column:member_id;type:uuid;index"`
	CycleID      *uuid.UUID            `gorm:"column:cycle_id;type:uuid;index"`
	AmountCents  int64                 `gorm:"column:amount_cents;not null"`
	Currency     enums.Currency        `gorm:"column:currency;type:currency;not null;default:'USD'"`
	Memo         string                `gorm:"column:memo;not null"`
	RecordedBy   *uuid.UUID            `gorm:"column:recorded_by;type:uuid"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}
