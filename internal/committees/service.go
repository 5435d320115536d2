package committees

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/pkg/db"
	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
)

// Service manages committees and seat assignments. Joining is idempotent:
// a member who already holds a seat gets that seat reported back, never a
// second row.
type Service interface {
	Create(ctx context.Context, actor policy.Identity, input CreateCommitteeInput) (*models.Committee, error)
	List(ctx context.Context, actor policy.Identity) ([]models.Committee, error)
	Join(ctx context.Context, actor policy.Identity, committeeID uuid.UUID) (*JoinResult, error)
	Leave(ctx context.Context, actor policy.Identity, committeeID uuid.UUID) error
	RemoveMember(ctx context.Context, actor policy.Identity, committeeID, memberID uuid.UUID) error
	Roster(ctx context.Context, actor policy.Identity, committeeID uuid.UUID) ([]models.CommitteeMember, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Push(ctx context.Context, memberID uuid.UUID, kind enums.NotificationKind, title, message string) error
}

type service struct {
	repo     Repository
	tx       txRunner
	policy   *policy.Policy
	notifier notifier
}

// ServiceParams bundles the committee service dependencies.
type ServiceParams struct {
	Repo     Repository
	TxRunner txRunner
	Policy   *policy.Policy
	Notifier notifier
}

// NewService validates dependencies and returns the committee service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "committee repository required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Policy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "authorization policy required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.TxRunner,
		policy:   params.Policy,
		notifier: params.Notifier,
	}, nil
}

func (s *service) Create(ctx context.Context, actor policy.Identity, input CreateCommitteeInput) (*models.Committee, error) {
	if !s.policy.Can(actor, policy.ActionManageCommittees, policy.Resource{Kind: "committee"}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "committee management requires board role")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "committee name is required")
	}
	if input.Capacity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity cannot be negative")
	}

	committee := &models.Committee{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Capacity:    input.Capacity,
	}
	if err := s.repo.Create(ctx, committee); err != nil {
		if db.IsUniqueViolation(err, "idx_committees_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "committee name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create committee")
	}
	return committee, nil
}

func (s *service) List(ctx context.Context, actor policy.Identity) ([]models.Committee, error) {
	if !s.policy.Can(actor, policy.ActionViewPortal, policy.Resource{OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	committees, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list committees")
	}
	return committees, nil
}

// Join seats the member on the roster while space remains and on the
// waitlist once the roster is full. A committee with capacity 0 has an
// unlimited roster and never waitlists anyone.
func (s *service) Join(ctx context.Context, actor policy.Identity, committeeID uuid.UUID) (*JoinResult, error) {
	if !s.policy.Can(actor, policy.ActionJoinCommittee, policy.Resource{Kind: "committee", ID: committeeID, OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "active membership required to join committees")
	}
	if committeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "committee id required")
	}

	committee, err := s.repo.FindByID(ctx, committeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load committee")
	}
	if committee == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "committee not found")
	}

	var result *JoinResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindSeat(ctx, committeeID, actor.MemberID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seat")
		}
		if existing != nil {
			result = &JoinResult{
				CommitteeID:   committeeID,
				MemberID:      actor.MemberID,
				Seat:          existing.Seat,
				AlreadyMember: true,
			}
			return nil
		}

		seat := enums.CommitteeSeatRoster
		if committee.Capacity > 0 {
			occupied, err := repo.CountSeats(ctx, committeeID, enums.CommitteeSeatRoster)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count roster")
			}
			if occupied >= int64(committee.Capacity) {
				seat = enums.CommitteeSeatWaitlist
			}
		}

		assignment := &models.CommitteeMember{
			CommitteeID: committeeID,
			MemberID:    actor.MemberID,
			Seat:        seat,
		}
		if err := repo.CreateSeat(ctx, assignment); err != nil {
			// Concurrent double-join lands on the unique (committee, member)
			// pair; report the seat that won.
			if db.IsUniqueViolation(err, "idx_committee_member") {
				won, findErr := repo.FindSeat(ctx, committeeID, actor.MemberID)
				if findErr != nil || won == nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload seat")
				}
				result = &JoinResult{
					CommitteeID:   committeeID,
					MemberID:      actor.MemberID,
					Seat:          won.Seat,
					AlreadyMember: true,
				}
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seat")
		}

		result = &JoinResult{
			CommitteeID: committeeID,
			MemberID:    actor.MemberID,
			Seat:        seat,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && !result.AlreadyMember {
		title := "Committee seat confirmed"
		message := "You are on the roster for " + committee.Name + "."
		if result.Seat == enums.CommitteeSeatWaitlist {
			title = "Added to waitlist"
			message = "The roster for " + committee.Name + " is full; you are on the waitlist."
		}
		_ = s.notifier.Push(ctx, actor.MemberID, enums.NotificationKindCommitteeSeat, title, message)
	}
	return result, nil
}

func (s *service) Leave(ctx context.Context, actor policy.Identity, committeeID uuid.UUID) error {
	if !s.policy.Can(actor, policy.ActionJoinCommittee, policy.Resource{Kind: "committee", ID: committeeID, OwnerID: actor.MemberID}) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "active membership required")
	}
	ok, err := s.repo.DeleteSeat(ctx, committeeID, actor.MemberID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete seat")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no seat held in this committee")
	}
	return nil
}

// RemoveMember drops another member's seat, roster or waitlist.
func (s *service) RemoveMember(ctx context.Context, actor policy.Identity, committeeID, memberID uuid.UUID) error {
	if !s.policy.Can(actor, policy.ActionManageCommittees, policy.Resource{Kind: "committee", ID: committeeID}) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "seat removal requires board role")
	}
	if committeeID == uuid.Nil || memberID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "committee id and member id required")
	}

	ok, err := s.repo.DeleteSeat(ctx, committeeID, memberID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete seat")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "member holds no seat in this committee")
	}

	if s.notifier != nil {
		_ = s.notifier.Push(ctx, memberID, enums.NotificationKindCommitteeSeat,
			"Removed from committee", "A board member removed you from a committee roster.")
	}
	return nil
}

func (s *service) Roster(ctx context.Context, actor policy.Identity, committeeID uuid.UUID) ([]models.CommitteeMember, error) {
	if !s.policy.Can(actor, policy.ActionViewPortal, policy.Resource{OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	committee, err := s.repo.FindByID(ctx, committeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load committee")
	}
	if committee == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "committee not found")
	}
	seats, err := s.repo.ListSeats(ctx, committeeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seats")
	}
	return seats, nil
}
