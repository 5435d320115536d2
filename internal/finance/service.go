package finance

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
)

// Service defines treasury read and adjustment operations.
type Service interface {
	ListLedger(ctx context.Context, actor policy.Identity, query ListEntriesQuery) ([]models.LedgerEntry, error)
	RecordAdjustment(ctx context.Context, actor policy.Identity, input AdjustmentInput) (*models.LedgerEntry, error)
	CycleSummary(ctx context.Context, actor policy.Identity, cycleID uuid.UUID) (*CycleSummary, error)
}

// AdjustmentInput is a manual ledger correction. Amount may be negative.
type AdjustmentInput struct {
	MemberID    *uuid.UUID     `json:"member_id,omitempty"`
	CycleID     *uuid.UUID     `json:"cycle_id,omitempty"`
	AmountCents int64          `json:"amount_cents" validate:"required"`
	Currency    enums.Currency `json:"currency" validate:"required"`
	Memo        string         `json:"memo" validate:"required,min=1"`
}

// CycleSummary aggregates a cycle's revenue with display-ready amounts.
type CycleSummary struct {
	CycleID uuid.UUID          `json:"cycle_id"`
	Totals  []CycleTotalDetail `json:"totals"`
}

// CycleTotalDetail mirrors CycleTotal plus a formatted major-unit amount.
type CycleTotalDetail struct {
	CycleTotal
	TotalDisplay string `json:"total_display"`
}

type service struct {
	repo   Repository
	policy *policy.Policy
}

// ServiceParams wires finance service dependencies.
type ServiceParams struct {
	Repo   Repository
	Policy *policy.Policy
}

// NewService validates dependencies and returns the finance service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "finance repository required")
	}
	if params.Policy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "authorization policy required")
	}
	return &service{repo: params.Repo, policy: params.Policy}, nil
}

func (s *service) ListLedger(ctx context.Context, actor policy.Identity, query ListEntriesQuery) ([]models.LedgerEntry, error) {
	if !s.policy.Can(actor, policy.ActionViewLedger, policy.Resource{Kind: "ledger"}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "ledger access requires treasurer role")
	}
	entries, err := s.repo.ListEntries(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return entries, nil
}

func (s *service) RecordAdjustment(ctx context.Context, actor policy.Identity, input AdjustmentInput) (*models.LedgerEntry, error) {
	if !s.policy.Can(actor, policy.ActionRecordAdjustment, policy.Resource{Kind: "ledger"}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "adjustments require treasurer role")
	}
	if input.AmountCents == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be zero")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency code")
	}
	memo := strings.TrimSpace(input.Memo)
	if memo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "memo is required")
	}

	entry := &models.LedgerEntry{
		Type:        enums.LedgerEntryTypeAdjustment,
		MemberID:    input.MemberID,
		CycleID:     input.CycleID,
		AmountCents: input.AmountCents,
		Currency:    input.Currency,
		Memo:        memo,
		RecordedBy:  &actor.MemberID,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record adjustment")
	}
	return entry, nil
}

func (s *service) CycleSummary(ctx context.Context, actor policy.Identity, cycleID uuid.UUID) (*CycleSummary, error) {
	if !s.policy.Can(actor, policy.ActionViewLedger, policy.Resource{Kind: "ledger"}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "ledger access requires treasurer role")
	}
	if cycleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cycle id required")
	}

	totals, err := s.repo.SummarizeCycle(ctx, cycleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize cycle")
	}

	details := make([]CycleTotalDetail, 0, len(totals))
	for _, total := range totals {
		details = append(details, CycleTotalDetail{
			CycleTotal:   total,
			TotalDisplay: formatCents(total.TotalCents),
		})
	}
	return &CycleSummary{CycleID: cycleID, Totals: details}, nil
}

// formatCents renders integer cents as a fixed two-decimal major-unit string.
func formatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
