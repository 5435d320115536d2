package members

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	"github.com/riverbend-alliance/portal-backend/pkg/email"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
)

// Notifier pushes an in-app notification. Delivery is best-effort; the
// caller is not told about failures.
type Notifier interface {
	Push(ctx context.Context, memberID uuid.UUID, kind enums.NotificationKind, title, message string) error
}

// Service defines member lifecycle and profile operations.
type Service interface {
	Get(ctx context.Context, actor policy.Identity, memberID uuid.UUID) (*MemberDTO, error)
	UpdateProfile(ctx context.Context, actor policy.Identity, memberID uuid.UUID, input UpdateProfileInput) (*MemberDTO, error)
	List(ctx context.Context, actor policy.Identity, query ListQuery) ([]MemberDTO, error)
	Approve(ctx context.Context, actor policy.Identity, memberID uuid.UUID) (*MemberDTO, error)
	Deactivate(ctx context.Context, actor policy.Identity, memberID uuid.UUID) (*MemberDTO, error)
	SetRole(ctx context.Context, actor policy.Identity, memberID uuid.UUID, role enums.MemberRole) (*MemberDTO, error)
}

type service struct {
	repo     Repository
	policy   *policy.Policy
	notifier Notifier
	email    email.Sender
}

// ServiceParams wires member service dependencies.
type ServiceParams struct {
	Repo     Repository
	Policy   *policy.Policy
	Notifier Notifier
	Email    email.Sender
}

// NewService validates dependencies and returns the members service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "members repository required")
	}
	if params.Policy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "authorization policy required")
	}
	return &service{
		repo:     params.Repo,
		policy:   params.Policy,
		notifier: params.Notifier,
		email:    params.Email,
	}, nil
}

func (s *service) Get(ctx context.Context, actor policy.Identity, memberID uuid.UUID) (*MemberDTO, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if actor.MemberID != memberID && !s.policy.Can(actor, policy.ActionManageMembers, policy.Resource{Kind: "member", ID: memberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view other members")
	}

	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if member == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	return FromModel(member), nil
}

func (s *service) UpdateProfile(ctx context.Context, actor policy.Identity, memberID uuid.UUID, input UpdateProfileInput) (*MemberDTO, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if actor.MemberID != memberID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profiles are self-service only")
	}

	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if member == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name cannot be empty")
		}
		member.DisplayName = name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			member.Phone = nil
		} else {
			member.Phone = &phone
		}
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member")
	}
	return FromModel(member), nil
}

func (s *service) List(ctx context.Context, actor policy.Identity, query ListQuery) ([]MemberDTO, error) {
	if !s.policy.Can(actor, policy.ActionManageMembers, policy.Resource{Kind: "member"}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "member listing requires treasurer role")
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}

	out := make([]MemberDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Approve(ctx context.Context, actor policy.Identity, memberID uuid.UUID) (*MemberDTO, error) {
	member, err := s.loadForAdmin(ctx, actor, policy.ActionManageMembers, memberID)
	if err != nil {
		return nil, err
	}
	if member.Status == enums.MemberStatusActive {
		return FromModel(member), nil
	}

	now := time.Now().UTC()
	member.Status = enums.MemberStatusActive
	member.ApprovedBy = &actor.MemberID
	member.ApprovedAt = &now

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve member")
	}

	if s.notifier != nil {
		_ = s.notifier.Push(ctx, member.ID, enums.NotificationKindMemberApproved,
			"Membership approved", "Your membership is now active. Welcome aboard.")
	}
	if s.email != nil {
		_ = s.email.Send(ctx, member.Email, "Membership approved",
			"Your membership application has been approved. Your account is now active.")
	}
	return FromModel(member), nil
}

func (s *service) Deactivate(ctx context.Context, actor policy.Identity, memberID uuid.UUID) (*MemberDTO, error) {
	member, err := s.loadForAdmin(ctx, actor, policy.ActionManageMembers, memberID)
	if err != nil {
		return nil, err
	}
	if member.ID == actor.MemberID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate yourself")
	}
	if member.Status == enums.MemberStatusInactive {
		return FromModel(member), nil
	}

	member.Status = enums.MemberStatusInactive
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate member")
	}
	return FromModel(member), nil
}

func (s *service) SetRole(ctx context.Context, actor policy.Identity, memberID uuid.UUID, role enums.MemberRole) (*MemberDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid member role")
	}
	member, err := s.loadForAdmin(ctx, actor, policy.ActionAssignRoles, memberID)
	if err != nil {
		return nil, err
	}
	if member.Role == role {
		return FromModel(member), nil
	}

	member.Role = role
	if err := s.repo.Update(ctx, member); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set member role")
	}
	return FromModel(member), nil
}

func (s *service) loadForAdmin(ctx context.Context, actor policy.Identity, action policy.Action, memberID uuid.UUID) (*models.Member, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if !s.policy.Can(actor, action, policy.Resource{Kind: "member", ID: memberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
	}

	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	if member == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	return member, nil
}
