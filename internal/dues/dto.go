package dues

import (
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// CreateCycleInput describes a new billing period.
type CreateCycleInput struct {
	Label       string         `json:"label" validate:"required,min=1,max=120"`
	AmountCents int64          `json:"amount_cents" validate:"required,gt=0"`
	Currency    enums.Currency `json:"currency" validate:"required"`
	StartsOn    time.Time      `json:"starts_on" validate:"required"`
	EndsOn      time.Time      `json:"ends_on" validate:"required"`
	Activate    bool           `json:"activate"`
}

// InitiateInput starts a checkout for one member in one cycle.
type InitiateInput struct {
	MemberID   uuid.UUID `json:"member_id"`
	CycleID    uuid.UUID `json:"cycle_id" validate:"required"`
	SuccessURL string    `json:"success_url" validate:"required,url"`
	CancelURL  string    `json:"cancel_url" validate:"required,url"`
}

// InitiateResult returns the hosted payment redirect.
type InitiateResult struct {
	RecordID    uuid.UUID `json:"record_id"`
	RedirectURL string    `json:"redirect_url"`
}

// OverrideInput is a treasurer-level manual settlement or waiver.
type OverrideInput struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	CycleID  uuid.UUID `json:"cycle_id" validate:"required"`
	Note     string    `json:"note" validate:"required,min=1"`
}

// CompletedEvent is the decoded payload of a completed-checkout callback.
type CompletedEvent struct {
	SessionID  string
	PaymentRef string
	Metadata   map[string]string
}

// ResolveReconciliationInput closes out a parked callback.
type ResolveReconciliationInput struct {
	ItemID uuid.UUID                  `json:"item_id" validate:"required"`
	Status enums.ReconciliationStatus `json:"status" validate:"required"`
	Note   string                     `json:"note" validate:"required,min=1"`
}
