package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
)

type fakeRepository struct {
	createEntryFn    func(ctx context.Context, entry *models.LedgerEntry) error
	listEntriesFn    func(ctx context.Context, query ListEntriesQuery) ([]models.LedgerEntry, error)
	summarizeCycleFn func(ctx context.Context, cycleID uuid.UUID) ([]CycleTotal, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) CreateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if f.createEntryFn != nil {
		return f.createEntryFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) ListEntries(ctx context.Context, query ListEntriesQuery) ([]models.LedgerEntry, error) {
	if f.listEntriesFn != nil {
		return f.listEntriesFn(ctx, query)
	}
	return nil, nil
}

func (f *fakeRepository) SummarizeCycle(ctx context.Context, cycleID uuid.UUID) ([]CycleTotal, error) {
	if f.summarizeCycleFn != nil {
		return f.summarizeCycleFn(ctx, cycleID)
	}
	return nil, nil
}

func treasurer() policy.Identity {
	return policy.Identity{
		MemberID: uuid.New(),
		Email:    "treasurer@example.org",
		Role:     enums.MemberRoleTreasurer,
		Status:   enums.MemberStatusActive,
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Policy: policy.New(nil)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestListLedgerForbiddenBelowTreasurer(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})

	actor := policy.Identity{MemberID: uuid.New(), Role: enums.MemberRoleBoard, Status: enums.MemberStatusActive}
	_, err := svc.ListLedger(context.Background(), actor, ListEntriesQuery{})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRecordAdjustmentRequiresMemo(t *testing.T) {
	svc := newTestService(t, &fakeRepository{})

	_, err := svc.RecordAdjustment(context.Background(), treasurer(), AdjustmentInput{
		AmountCents: -500,
		Currency:    enums.CurrencyUSD,
		Memo:        "   ",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRecordAdjustmentStampsActor(t *testing.T) {
	var saved *models.LedgerEntry
	repo := &fakeRepository{
		createEntryFn: func(ctx context.Context, entry *models.LedgerEntry) error {
			saved = entry
			return nil
		},
	}
	svc := newTestService(t, repo)

	actor := treasurer()
	entry, err := svc.RecordAdjustment(context.Background(), actor, AdjustmentInput{
		AmountCents: -2500,
		Currency:    enums.CurrencyUSD,
		Memo:        "refund duplicate charge",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Type != enums.LedgerEntryTypeAdjustment {
		t.Fatalf("expected adjustment type, got %s", entry.Type)
	}
	if saved == nil || saved.RecordedBy == nil || *saved.RecordedBy != actor.MemberID {
		t.Fatal("adjustment should record the acting treasurer")
	}
}

func TestCycleSummaryFormatsAmounts(t *testing.T) {
	cycleID := uuid.New()
	repo := &fakeRepository{
		summarizeCycleFn: func(ctx context.Context, id uuid.UUID) ([]CycleTotal, error) {
			if id != cycleID {
				t.Fatalf("unexpected cycle id %s", id)
			}
			return []CycleTotal{
				{Type: enums.LedgerEntryTypeDuesPayment, Currency: enums.CurrencyUSD, TotalCents: 8500, Entries: 1},
				{Type: enums.LedgerEntryTypeAdjustment, Currency: enums.CurrencyUSD, TotalCents: -50, Entries: 1},
			}, nil
		},
	}
	svc := newTestService(t, repo)

	summary, err := svc.CycleSummary(context.Background(), treasurer(), cycleID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Totals) != 2 {
		t.Fatalf("expected 2 totals, got %d", len(summary.Totals))
	}
	if summary.Totals[0].TotalDisplay != "85.00" {
		t.Fatalf("expected 85.00, got %s", summary.Totals[0].TotalDisplay)
	}
	if summary.Totals[1].TotalDisplay != "-0.50" {
		t.Fatalf("expected -0.50, got %s", summary.Totals[1].TotalDisplay)
	}
}

func TestCycleSummaryPropagatesRepoFailure(t *testing.T) {
	repo := &fakeRepository{
		summarizeCycleFn: func(ctx context.Context, id uuid.UUID) ([]CycleTotal, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestService(t, repo)

	_, err := svc.CycleSummary(context.Background(), treasurer(), uuid.New())
	assertCode(t, err, pkgerrors.CodeDependency)
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var domainErr *pkgerrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, domainErr.Code())
	}
}
