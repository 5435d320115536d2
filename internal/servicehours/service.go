package servicehours

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
)

// SubmitInput carries one volunteering entry. Minutes are whole minutes.
type SubmitInput struct {
	Activity string    `json:"activity" validate:"required,min=3,max=500"`
	Minutes  int       `json:"minutes" validate:"required,gt=0"`
	ServedOn time.Time `json:"served_on" validate:"required"`
}

// ReviewInput records a board decision on a submitted entry.
type ReviewInput struct {
	EntryID uuid.UUID `json:"entry_id" validate:"required"`
	Approve bool      `json:"approve"`
	Note    string    `json:"note" validate:"max=1000"`
}

type notifier interface {
	Push(ctx context.Context, memberID uuid.UUID, kind enums.NotificationKind, title, message string) error
}

// Service handles member-logged volunteering hours and board review.
type Service interface {
	Submit(ctx context.Context, actor policy.Identity, input SubmitInput) (*models.ServiceHour, error)
	ListMine(ctx context.Context, actor policy.Identity) ([]models.ServiceHour, error)
	ListPending(ctx context.Context, actor policy.Identity, limit int) ([]models.ServiceHour, error)
	Review(ctx context.Context, actor policy.Identity, input ReviewInput) (*models.ServiceHour, error)
}

type service struct {
	repo     Repository
	policy   *policy.Policy
	notifier notifier
}

// ServiceParams bundles the service hour dependencies.
type ServiceParams struct {
	Repo     Repository
	Policy   *policy.Policy
	Notifier notifier
}

// NewService validates dependencies and returns the service hour service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "service hour repository required")
	}
	if params.Policy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "authorization policy required")
	}
	return &service{repo: params.Repo, policy: params.Policy, notifier: params.Notifier}, nil
}

func (s *service) Submit(ctx context.Context, actor policy.Identity, input SubmitInput) (*models.ServiceHour, error) {
	if !s.policy.Can(actor, policy.ActionLogServiceHours, policy.Resource{Kind: "service_hour", OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "active membership required to log hours")
	}
	activity := strings.TrimSpace(input.Activity)
	if activity == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "activity description is required")
	}
	if input.Minutes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minutes must be positive")
	}
	if input.ServedOn.IsZero() || input.ServedOn.After(time.Now().Add(24*time.Hour)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "served_on must be a past or current date")
	}

	entry := &models.ServiceHour{
		MemberID: actor.MemberID,
		Activity: activity,
		Minutes:  input.Minutes,
		ServedOn: input.ServedOn,
		Status:   enums.ServiceHourStatusSubmitted,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service hour")
	}
	return entry, nil
}

func (s *service) ListMine(ctx context.Context, actor policy.Identity) ([]models.ServiceHour, error) {
	if !s.policy.Can(actor, policy.ActionViewPortal, policy.Resource{OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	entries, err := s.repo.ListByMember(ctx, actor.MemberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list service hours")
	}
	return entries, nil
}

func (s *service) ListPending(ctx context.Context, actor policy.Identity, limit int) ([]models.ServiceHour, error) {
	if !s.policy.Can(actor, policy.ActionReviewHours, policy.Resource{Kind: "service_hour"}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "hour review requires board role")
	}
	entries, err := s.repo.ListByStatus(ctx, enums.ServiceHourStatusSubmitted, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending hours")
	}
	return entries, nil
}

// Review settles a submitted entry. Already-reviewed entries are not
// re-decidable; the first decision stands.
func (s *service) Review(ctx context.Context, actor policy.Identity, input ReviewInput) (*models.ServiceHour, error) {
	if !s.policy.Can(actor, policy.ActionReviewHours, policy.Resource{Kind: "service_hour", ID: input.EntryID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "hour review requires board role")
	}
	note := strings.TrimSpace(input.Note)
	if !input.Approve && note == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a rejection requires a note")
	}

	entry, err := s.repo.FindByID(ctx, input.EntryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service hour")
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service hour entry not found")
	}
	if entry.Status != enums.ServiceHourStatusSubmitted {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadySettled, "entry already reviewed")
	}

	now := time.Now().UTC()
	entry.Status = enums.ServiceHourStatusApproved
	if !input.Approve {
		entry.Status = enums.ServiceHourStatusRejected
	}
	entry.ReviewedBy = &actor.MemberID
	entry.ReviewedAt = &now
	if note != "" {
		entry.ReviewNote = &note
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service hour")
	}

	if s.notifier != nil {
		title := "Service hours approved"
		message := "Your logged hours for \"" + entry.Activity + "\" were approved."
		if entry.Status == enums.ServiceHourStatusRejected {
			title = "Service hours rejected"
			message = "Your logged hours for \"" + entry.Activity + "\" were rejected: " + note
		}
		_ = s.notifier.Push(ctx, entry.MemberID, enums.NotificationKindHoursReviewed, title, message)
	}
	return entry, nil
}
