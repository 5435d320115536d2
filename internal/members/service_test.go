package members

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
)

type fakeRepository struct {
	createFn          func(ctx context.Context, member *models.Member) error
	findByIDFn        func(ctx context.Context, id uuid.UUID) (*models.Member, error)
	findByEmailFn     func(ctx context.Context, email string) (*models.Member, error)
	updateFn          func(ctx context.Context, member *models.Member) error
	listFn            func(ctx context.Context, query ListQuery) ([]models.Member, error)
	updateLastLoginFn func(ctx context.Context, id uuid.UUID, at time.Time) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, member *models.Member) error {
	if f.createFn != nil {
		return f.createFn(ctx, member)
	}
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeRepository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (f *fakeRepository) Update(ctx context.Context, member *models.Member) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, member)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, query ListQuery) ([]models.Member, error) {
	if f.listFn != nil {
		return f.listFn(ctx, query)
	}
	return nil, nil
}

func (f *fakeRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if f.updateLastLoginFn != nil {
		return f.updateLastLoginFn(ctx, id, at)
	}
	return nil
}

type fakeNotifier struct {
	pushed []enums.NotificationKind
}

func (f *fakeNotifier) Push(ctx context.Context, memberID uuid.UUID, kind enums.NotificationKind, title, message string) error {
	f.pushed = append(f.pushed, kind)
	return nil
}

type fakeSender struct {
	sentTo []string
}

func (f *fakeSender) Send(ctx context.Context, to, subject, plainText string) error {
	f.sentTo = append(f.sentTo, to)
	return nil
}

func newTestService(t *testing.T, repo Repository, notifier Notifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Policy: policy.New(nil), Notifier: notifier})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func treasurerIdentity() policy.Identity {
	return policy.Identity{
		MemberID: uuid.New(),
		Email:    "treasurer@example.org",
		Role:     enums.MemberRoleTreasurer,
		Status:   enums.MemberStatusActive,
	}
}

func TestGetSelfAllowed(t *testing.T) {
	memberID := uuid.New()
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Member, error) {
			return &models.Member{ID: id, Email: "me@example.org", Status: enums.MemberStatusActive}, nil
		},
	}
	svc := newTestService(t, repo, nil)

	actor := policy.Identity{MemberID: memberID, Role: enums.MemberRoleMember, Status: enums.MemberStatusActive}
	dto, err := svc.Get(context.Background(), actor, memberID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.ID != memberID {
		t.Fatalf("expected member %s, got %s", memberID, dto.ID)
	}
}

func TestGetOtherMemberForbiddenForOrdinaryRole(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo, nil)

	actor := policy.Identity{MemberID: uuid.New(), Role: enums.MemberRoleMember, Status: enums.MemberStatusActive}
	_, err := svc.Get(context.Background(), actor, uuid.New())
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestApproveActivatesAndNotifies(t *testing.T) {
	memberID := uuid.New()
	var saved *models.Member
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Member, error) {
			return &models.Member{ID: id, Email: "pending@example.org", Status: enums.MemberStatusPending}, nil
		},
		updateFn: func(ctx context.Context, member *models.Member) error {
			saved = member
			return nil
		},
	}
	notifier := &fakeNotifier{}
	sender := &fakeSender{}
	svc, err := NewService(ServiceParams{Repo: repo, Policy: policy.New(nil), Notifier: notifier, Email: sender})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	actor := treasurerIdentity()
	dto, err := svc.Approve(context.Background(), actor, memberID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Status != enums.MemberStatusActive {
		t.Fatalf("expected active status, got %s", dto.Status)
	}
	if saved == nil || saved.ApprovedBy == nil || *saved.ApprovedBy != actor.MemberID {
		t.Fatal("approval should stamp the acting administrator")
	}
	if len(notifier.pushed) != 1 || notifier.pushed[0] != enums.NotificationKindMemberApproved {
		t.Fatalf("expected approval notification, got %v", notifier.pushed)
	}
	if len(sender.sentTo) != 1 || sender.sentTo[0] != "pending@example.org" {
		t.Fatalf("expected approval email to member, got %v", sender.sentTo)
	}
}

func TestApproveIdempotentForActiveMember(t *testing.T) {
	updated := false
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Member, error) {
			return &models.Member{ID: id, Status: enums.MemberStatusActive}, nil
		},
		updateFn: func(ctx context.Context, member *models.Member) error {
			updated = true
			return nil
		},
	}
	svc := newTestService(t, repo, nil)

	if _, err := svc.Approve(context.Background(), treasurerIdentity(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated {
		t.Fatal("approving an active member should not write")
	}
}

func TestApproveForbiddenBelowTreasurer(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, nil)

	actor := policy.Identity{MemberID: uuid.New(), Role: enums.MemberRoleBoard, Status: enums.MemberStatusActive}
	_, err := svc.Approve(context.Background(), actor, uuid.New())
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeactivateRejectsSelf(t *testing.T) {
	actor := treasurerIdentity()
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Member, error) {
			return &models.Member{ID: id, Status: enums.MemberStatusActive}, nil
		},
	}
	svc := newTestService(t, repo, nil)

	_, err := svc.Deactivate(context.Background(), actor, actor.MemberID)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestSetRoleRequiresPresident(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, nil)

	_, err := svc.SetRole(context.Background(), treasurerIdentity(), uuid.New(), enums.MemberRoleBoard)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestSetRoleByPresident(t *testing.T) {
	var saved *models.Member
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Member, error) {
			return &models.Member{ID: id, Role: enums.MemberRoleMember, Status: enums.MemberStatusActive}, nil
		},
		updateFn: func(ctx context.Context, member *models.Member) error {
			saved = member
			return nil
		},
	}
	svc := newTestService(t, repo, nil)

	actor := policy.Identity{MemberID: uuid.New(), Role: enums.MemberRolePresident, Status: enums.MemberStatusActive}
	dto, err := svc.SetRole(context.Background(), actor, uuid.New(), enums.MemberRoleTreasurer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Role != enums.MemberRoleTreasurer || saved == nil {
		t.Fatalf("expected treasurer role persisted, got %s", dto.Role)
	}
}

func TestUpdateProfileValidatesDisplayName(t *testing.T) {
	memberID := uuid.New()
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Member, error) {
			return &models.Member{ID: id, DisplayName: "Old Name", Status: enums.MemberStatusActive}, nil
		},
	}
	svc := newTestService(t, repo, nil)

	actor := policy.Identity{MemberID: memberID, Role: enums.MemberRoleMember, Status: enums.MemberStatusActive}
	empty := "   "
	_, err := svc.UpdateProfile(context.Background(), actor, memberID, UpdateProfileInput{DisplayName: &empty})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestListPropagatesRepoFailure(t *testing.T) {
	repo := &fakeRepository{
		listFn: func(ctx context.Context, query ListQuery) ([]models.Member, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestService(t, repo, nil)

	_, err := svc.List(context.Background(), treasurerIdentity(), ListQuery{})
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
