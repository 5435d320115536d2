package dues

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/internal/finance"
	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/pkg/db"
	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/email"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

// Service is the dues reconciliation handler: it owns every transition of
// the per-(member, cycle) payment state machine.
type Service interface {
	CreateCycle(ctx context.Context, actor policy.Identity, input CreateCycleInput) (*models.DuesCycle, error)
	ActivateCycle(ctx context.Context, actor policy.Identity, cycleID uuid.UUID) (*models.DuesCycle, error)
	ListCycles(ctx context.Context, actor policy.Identity) ([]models.DuesCycle, error)
	MyRecords(ctx context.Context, actor policy.Identity) ([]models.DuesRecord, error)
	ListCycleRecords(ctx context.Context, actor policy.Identity, cycleID uuid.UUID, limit int) ([]models.DuesRecord, error)

	Initiate(ctx context.Context, actor policy.Identity, input InitiateInput) (*InitiateResult, error)
	OnCheckoutCompleted(ctx context.Context, event CompletedEvent) error
	OnCheckoutExpired(ctx context.Context, sessionID string) error
	MarkOffline(ctx context.Context, actor policy.Identity, input OverrideInput) (*models.DuesRecord, error)
	Waive(ctx context.Context, actor policy.Identity, input OverrideInput) (*models.DuesRecord, error)

	ListReconciliation(ctx context.Context, actor policy.Identity, limit int) ([]models.ReconciliationItem, error)
	ResolveReconciliation(ctx context.Context, actor policy.Identity, input ResolveReconciliationInput) error
}

type memberFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Push(ctx context.Context, memberID uuid.UUID, kind enums.NotificationKind, title, message string) error
}

type service struct {
	cycles         CycleRepository
	records        RecordRepository
	reconciliation ReconciliationRepository
	ledger         finance.Repository
	members        memberFinder
	gateway        CheckoutGateway
	tx             txRunner
	policy         *policy.Policy
	notifier       notifier
	email          email.Sender
	logg           *logger.Logger
}

// ServiceParams bundles the reconciliation handler's dependencies.
type ServiceParams struct {
	Cycles         CycleRepository
	Records        RecordRepository
	Reconciliation ReconciliationRepository
	Ledger         finance.Repository
	Members        memberFinder
	Gateway        CheckoutGateway
	TxRunner       txRunner
	Policy         *policy.Policy
	Notifier       notifier
	Email          email.Sender
	Logger         *logger.Logger
}

// NewService validates dependencies and returns the dues service.
func NewService(params ServiceParams) (Service, error) {
	if params.Cycles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cycle repository required")
	}
	if params.Records == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "record repository required")
	}
	if params.Reconciliation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation repository required")
	}
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger repository required")
	}
	if params.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "member finder required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout gateway required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Policy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "authorization policy required")
	}
	return &service{
		cycles:         params.Cycles,
		records:        params.Records,
		reconciliation: params.Reconciliation,
		ledger:         params.Ledger,
		members:        params.Members,
		gateway:        params.Gateway,
		tx:             params.TxRunner,
		policy:         params.Policy,
		notifier:       params.Notifier,
		email:          params.Email,
		logg:           params.Logger,
	}, nil
}

func (s *service) CreateCycle(ctx context.Context, actor policy.Identity, input CreateCycleInput) (*models.DuesCycle, error) {
	if !s.policy.Can(actor, policy.ActionManageCycles, policy.Resource{Kind: "dues_cycle"}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cycle management requires treasurer role")
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cycle label is required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency code")
	}
	if !input.EndsOn.After(input.StartsOn) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cycle must end after it starts")
	}

	cycle := &models.DuesCycle{
		Label:       label,
		AmountCents: input.AmountCents,
		Currency:    input.Currency,
		StartsOn:    input.StartsOn,
		EndsOn:      input.EndsOn,
		CreatedBy:   actor.MemberID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.cycles.WithTx(tx)
		if err := repo.Create(ctx, cycle); err != nil {
			if db.IsUniqueViolation(err, "idx_dues_cycles_label") {
				return pkgerrors.New(pkgerrors.CodeConflict, "cycle label already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cycle")
		}
		if !input.Activate {
			return nil
		}
		if err := repo.DeactivateAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate cycles")
		}
		if _, err := repo.SetActive(ctx, cycle.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate cycle")
		}
		cycle.Active = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

// ActivateCycle atomically swaps the single active flag: the previous active
// cycle is deactivated in the same transaction that activates the target.
func (s *service) ActivateCycle(ctx context.Context, actor policy.Identity, cycleID uuid.UUID) (*models.DuesCycle, error) {
	if !s.policy.Can(actor, policy.ActionManageCycles, policy.Resource{Kind: "dues_cycle", ID: cycleID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cycle management requires treasurer role")
	}
	if cycleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cycle id required")
	}

	var activated *models.DuesCycle
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.cycles.WithTx(tx)
		if err := repo.DeactivateAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate cycles")
		}
		ok, err := repo.SetActive(ctx, cycleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate cycle")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cycle not found")
		}
		activated, err = repo.FindByID(ctx, cycleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cycle")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

func (s *service) ListCycles(ctx context.Context, actor policy.Identity) ([]models.DuesCycle, error) {
	if !s.policy.Can(actor, policy.ActionViewPortal, policy.Resource{OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	cycles, err := s.cycles.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cycles")
	}
	return cycles, nil
}

func (s *service) MyRecords(ctx context.Context, actor policy.Identity) ([]models.DuesRecord, error) {
	if !s.policy.Can(actor, policy.ActionViewPortal, policy.Resource{OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	records, err := s.records.ListByMember(ctx, actor.MemberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dues records")
	}
	return records, nil
}

func (s *service) ListCycleRecords(ctx context.Context, actor policy.Identity, cycleID uuid.UUID, limit int) ([]models.DuesRecord, error) {
	if !s.policy.Can(actor, policy.ActionOverrideDues, policy.Resource{Kind: "dues_record"}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cycle record listing requires treasurer role")
	}
	records, err := s.records.ListByCycle(ctx, cycleID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cycle records")
	}
	return records, nil
}

func (s *service) Initiate(ctx context.Context, actor policy.Identity, input InitiateInput) (*InitiateResult, error) {
	memberID := input.MemberID
	if memberID == uuid.Nil {
		memberID = actor.MemberID
	}
	if memberID != actor.MemberID && !s.policy.Can(actor, policy.ActionOverrideDues, policy.Resource{Kind: "dues_record", OwnerID: memberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot initiate dues for another member")
	}
	if !s.policy.Can(actor, policy.ActionInitiateDues, policy.Resource{Kind: "dues_record", OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "active membership required")
	}
	if input.CycleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cycle id required")
	}

	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if member == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	cycle, err := s.cycles.FindByID(ctx, input.CycleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cycle")
	}
	if cycle == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cycle not found")
	}

	existing, err := s.records.FindByMemberAndCycle(ctx, memberID, cycle.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dues record")
	}
	if existing != nil && existing.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadySettled, "dues already settled for this cycle")
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutSessionInput{
		MemberID:    memberID,
		CycleID:     cycle.ID,
		MemberEmail: member.Email,
		CycleLabel:  cycle.Label,
		AmountCents: cycle.AmountCents,
		Currency:    cycle.Currency,
		SuccessURL:  input.SuccessURL,
		CancelURL:   input.CancelURL,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	var recordID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.records.WithTx(tx)
		record, err := repo.FindByMemberAndCycle(ctx, memberID, cycle.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload dues record")
		}
		if record != nil && record.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeAlreadySettled, "dues already settled for this cycle")
		}

		if record == nil {
			record = &models.DuesRecord{
				MemberID: memberID,
				CycleID:  cycle.ID,
			}
		}
		record.Status = enums.DuesStatusPending
		record.AmountCents = cycle.AmountCents
		record.Currency = cycle.Currency
		record.CheckoutSessionID = &sess.ID
		record.PaymentRef = nil
		record.SettledAt = nil

		if record.ID == uuid.Nil {
			if err := repo.Create(ctx, record); err != nil {
				if db.IsUniqueViolation(err, "idx_dues_member_cycle") {
					return pkgerrors.New(pkgerrors.CodeConflict, "concurrent initiation detected")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dues record")
			}
		} else if err := repo.Update(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dues record")
		}
		recordID = record.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &InitiateResult{RecordID: recordID, RedirectURL: sess.URL}, nil
}

// OnCheckoutCompleted maps a verified completion callback onto the local
// record. Replays are safe: a PAID record stays PAID and the ledger's
// one-entry-per-record constraint stops double counting. A callback that
// matches no local record is parked for manual reconciliation, never turned
// into a fabricated PAID record.
func (s *service) OnCheckoutCompleted(ctx context.Context, event CompletedEvent) error {
	sessionID := strings.TrimSpace(event.SessionID)
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}

	var settled *models.DuesRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.records.WithTx(tx)
		record, err := repo.FindByCheckoutSession(ctx, sessionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup dues record")
		}
		if record == nil {
			return s.parkUnmatched(ctx, tx, sessionID, "checkout.session.completed", event.Metadata)
		}
		if record.Status.IsTerminal() {
			// Replay or out-of-order delivery after settlement.
			return nil
		}

		now := time.Now().UTC()
		record.Status = enums.DuesStatusPaid
		if event.PaymentRef != "" {
			record.PaymentRef = &event.PaymentRef
		}
		record.SettledAt = &now
		if err := repo.Update(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle dues record")
		}

		if err := s.recordRevenue(ctx, tx, record, enums.LedgerEntryTypeDuesPayment, "dues payment via gateway", nil); err != nil {
			return err
		}
		settled = record
		return nil
	})
	if err != nil {
		return err
	}

	if settled != nil {
		s.announceSettlement(ctx, settled)
	}
	return nil
}

// OnCheckoutExpired transitions PENDING to EXPIRED. Terminal records are
// left untouched: an expiration arriving after completion is a no-op.
func (s *service) OnCheckoutExpired(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.records.WithTx(tx)
		record, err := repo.FindByCheckoutSession(ctx, sessionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup dues record")
		}
		if record == nil {
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("expiry callback for unknown checkout session ignored (session %s)", sessionID))
			}
			return nil
		}
		if record.Status != enums.DuesStatusPending {
			return nil
		}
		record.Status = enums.DuesStatusExpired
		if err := repo.Update(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire dues record")
		}
		return nil
	})
}

func (s *service) MarkOffline(ctx context.Context, actor policy.Identity, input OverrideInput) (*models.DuesRecord, error) {
	return s.override(ctx, actor, input, enums.DuesStatusPaidOffline)
}

func (s *service) Waive(ctx context.Context, actor policy.Identity, input OverrideInput) (*models.DuesRecord, error) {
	return s.override(ctx, actor, input, enums.DuesStatusWaived)
}

func (s *service) override(ctx context.Context, actor policy.Identity, input OverrideInput, target enums.DuesStatus) (*models.DuesRecord, error) {
	if !s.policy.Can(actor, policy.ActionOverrideDues, policy.Resource{Kind: "dues_record", OwnerID: input.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "overrides require treasurer role")
	}
	note := strings.TrimSpace(input.Note)
	if note == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "justification note is required")
	}
	if input.MemberID == uuid.Nil || input.CycleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id and cycle id required")
	}

	member, err := s.members.FindByID(ctx, input.MemberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if member == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	cycle, err := s.cycles.FindByID(ctx, input.CycleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cycle")
	}
	if cycle == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cycle not found")
	}

	var result *models.DuesRecord
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.records.WithTx(tx)
		record, err := repo.FindByMemberAndCycle(ctx, input.MemberID, input.CycleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dues record")
		}

		now := time.Now().UTC()
		if record == nil {
			record = &models.DuesRecord{
				MemberID:    input.MemberID,
				CycleID:     input.CycleID,
				AmountCents: cycle.AmountCents,
				Currency:    cycle.Currency,
			}
		}
		record.Status = target
		record.SettledAt = &now
		record.OverrideActorID = &actor.MemberID
		record.OverrideNote = &note

		if record.ID == uuid.Nil {
			if err := repo.Create(ctx, record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dues record")
			}
		} else if err := repo.Update(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "override dues record")
		}

		// Waivers forgive dues; only offline settlements are revenue.
		if target == enums.DuesStatusPaidOffline {
			if err := s.recordRevenue(ctx, tx, record, enums.LedgerEntryTypeDuesOffline, "dues settled offline: "+note, &actor.MemberID); err != nil {
				return err
			}
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.announceSettlement(ctx, result)
	return result, nil
}

func (s *service) ListReconciliation(ctx context.Context, actor policy.Identity, limit int) ([]models.ReconciliationItem, error) {
	if !s.policy.Can(actor, policy.ActionResolveReconcile, policy.Resource{Kind: "reconciliation_item"}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "reconciliation queue requires treasurer role")
	}
	items, err := s.reconciliation.List(ctx, enums.ReconciliationStatusOpen, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reconciliation queue")
	}
	return items, nil
}

func (s *service) ResolveReconciliation(ctx context.Context, actor policy.Identity, input ResolveReconciliationInput) error {
	if !s.policy.Can(actor, policy.ActionResolveReconcile, policy.Resource{Kind: "reconciliation_item", ID: input.ItemID}) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "reconciliation queue requires treasurer role")
	}
	note := strings.TrimSpace(input.Note)
	if note == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "resolution note is required")
	}
	if input.Status != enums.ReconciliationStatusResolved && input.Status != enums.ReconciliationStatusDismissed {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must be resolved or dismissed")
	}

	ok, err := s.reconciliation.Resolve(ctx, input.ItemID, actor.MemberID, input.Status, note, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve reconciliation item")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "open reconciliation item not found")
	}
	return nil
}

func (s *service) parkUnmatched(ctx context.Context, tx *gorm.DB, sessionID, eventType string, metadata map[string]string) error {
	raw, err := json.Marshal(metadata)
	if err != nil {
		raw = nil
	}
	item := &models.ReconciliationItem{
		CheckoutSessionID: sessionID,
		EventType:         eventType,
		Metadata:          raw,
		Status:            enums.ReconciliationStatusOpen,
	}
	if err := s.reconciliation.WithTx(tx).Create(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "park unmatched callback")
	}
	if s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("unmatched gateway callback parked for reconciliation (session %s)", sessionID))
	}
	return nil
}

// recordRevenue writes the single ledger entry for a settled record. The
// unique constraint on dues_record_id makes replays write nothing.
func (s *service) recordRevenue(ctx context.Context, tx *gorm.DB, record *models.DuesRecord, entryType enums.LedgerEntryType, memo string, recordedBy *uuid.UUID) error {
	entry := &models.LedgerEntry{
		Type:         entryType,
		DuesRecordID: &record.ID,
		MemberID:     &record.MemberID,
		CycleID:      &record.CycleID,
		AmountCents:  record.AmountCents,
		Currency:     record.Currency,
		Memo:         memo,
		RecordedBy:   recordedBy,
	}
	if err := s.ledger.WithTx(tx).CreateEntry(ctx, entry); err != nil {
		if db.IsUniqueViolation(err, "idx_ledger_entries_dues_record_id") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ledger entry")
	}
	return nil
}

// announceSettlement notifies the member in-app and by email. Both are
// best-effort; failures are logged and never surfaced to the gateway.
func (s *service) announceSettlement(ctx context.Context, record *models.DuesRecord) {
	if record == nil {
		return
	}

	if s.notifier != nil {
		if err := s.notifier.Push(ctx, record.MemberID, enums.NotificationKindDuesSettled,
			"Dues settled", "Your membership dues for this cycle are settled."); err != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("dues settlement notification failed: %v", err))
		}
	}

	if s.email != nil {
		member, err := s.members.FindByID(ctx, record.MemberID)
		if err != nil || member == nil {
			return
		}
		if err := s.email.Send(ctx, member.Email, "Your dues are settled",
			"Thanks! Your membership dues for the current cycle have been settled."); err != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("dues settlement email failed: %v", err))
		}
	}
}
