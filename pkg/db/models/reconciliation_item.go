package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// ReconciliationItem parks a gateway callback that matched no local dues
// record. Records are never fabricated from callback metadata; a treasurer
// resolves these by hand.
type ReconciliationItem struct {
	ID                uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutSessionID string                     `gorm:"column:checkout_session_id;not null;index"`
	EventType         string                     `gorm:"column:event_type;not null"`
	Metadata          json.RawMessage            `gorm:"column:metadata;type:jsonb"`
	Status            enums.ReconciliationStatus `gorm:"column:status;type:reconciliation_status;not null;default:'open'"`
	ResolvedBy        *uuid.UUID                 `gorm:"column:resolved_by;type:uuid"`
	ResolvedAt        *time.Time                 `gorm:"column:resolved_at"`
	ResolutionNote    *string                    `gorm:"column:resolution_note"`
	CreatedAt         time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
