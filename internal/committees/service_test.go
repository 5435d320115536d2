package committees

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

type fakeRepo struct {
	committees map[uuid.UUID]*models.Committee
	seats      []*models.CommitteeMember
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{committees: make(map[uuid.UUID]*models.Committee)}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, committee *models.Committee) error {
	for _, existing := range f.committees {
		if existing.Name == committee.Name {
			return errors.New("duplicate key value violates unique constraint idx_committees_name")
		}
	}
	if committee.ID == uuid.Nil {
		committee.ID = uuid.New()
	}
	f.committees[committee.ID] = committee
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Committee, error) {
	return f.committees[id], nil
}

func (f *fakeRepo) List(ctx context.Context) ([]models.Committee, error) {
	out := make([]models.Committee, 0, len(f.committees))
	for _, c := range f.committees {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeRepo) FindSeat(ctx context.Context, committeeID, memberID uuid.UUID) (*models.CommitteeMember, error) {
	for _, s := range f.seats {
		if s.CommitteeID == committeeID && s.MemberID == memberID {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CountSeats(ctx context.Context, committeeID uuid.UUID, seat enums.CommitteeSeat) (int64, error) {
	var count int64
	for _, s := range f.seats {
		if s.CommitteeID == committeeID && s.Seat == seat {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CreateSeat(ctx context.Context, seat *models.CommitteeMember) error {
	for _, s := range f.seats {
		if s.CommitteeID == seat.CommitteeID && s.MemberID == seat.MemberID {
			return errors.New("duplicate key value violates unique constraint idx_committee_member")
		}
	}
	if seat.ID == uuid.Nil {
		seat.ID = uuid.New()
	}
	f.seats = append(f.seats, seat)
	return nil
}

func (f *fakeRepo) DeleteSeat(ctx context.Context, committeeID, memberID uuid.UUID) (bool, error) {
	for i, s := range f.seats {
		if s.CommitteeID == committeeID && s.MemberID == memberID {
			f.seats = append(f.seats[:i], f.seats[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListSeats(ctx context.Context, committeeID uuid.UUID) ([]models.CommitteeMember, error) {
	var out []models.CommitteeMember
	for _, s := range f.seats {
		if s.CommitteeID == committeeID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeNotifier struct {
	pushed []enums.NotificationKind
}

func (f *fakeNotifier) Push(ctx context.Context, memberID uuid.UUID, kind enums.NotificationKind, title, message string) error {
	f.pushed = append(f.pushed, kind)
	return nil
}

func newTestService(t *testing.T, repo *fakeRepo) (Service, *fakeNotifier) {
	t.Helper()
	n := &fakeNotifier{}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		TxRunner: stubTxRunner{},
		Policy:   policy.New(nil),
		Notifier: n,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, n
}

func activeMember() policy.Identity {
	return policy.Identity{
		MemberID: uuid.New(),
		Role:     enums.MemberRoleMember,
		Status:   enums.MemberStatusActive,
	}
}

func boardIdentity() policy.Identity {
	return policy.Identity{
		MemberID: uuid.New(),
		Role:     enums.MemberRoleBoard,
		Status:   enums.MemberStatusActive,
	}
}

func seedCommittee(t *testing.T, repo *fakeRepo, capacity int) *models.Committee {
	t.Helper()
	committee := &models.Committee{
		ID:       uuid.New(),
		Name:     "committee-" + uuid.NewString()[:8],
		Capacity: capacity,
	}
	repo.committees[committee.ID] = committee
	return committee
}

func TestJoinSeatsOnRosterWhileSpaceRemains(t *testing.T) {
	repo := newFakeRepo()
	svc, notifier := newTestService(t, repo)
	committee := seedCommittee(t, repo, 2)

	result, err := svc.Join(context.Background(), activeMember(), committee.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if result.Seat != enums.CommitteeSeatRoster {
		t.Fatalf("expected roster seat, got %s", result.Seat)
	}
	if result.AlreadyMember {
		t.Fatal("first join must not report an existing seat")
	}
	if len(notifier.pushed) != 1 || notifier.pushed[0] != enums.NotificationKindCommitteeSeat {
		t.Fatalf("expected a seat notification, got %v", notifier.pushed)
	}
}

func TestJoinWaitlistsWhenRosterFull(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)
	committee := seedCommittee(t, repo, 1)

	if _, err := svc.Join(context.Background(), activeMember(), committee.ID); err != nil {
		t.Fatalf("first join: %v", err)
	}
	result, err := svc.Join(context.Background(), activeMember(), committee.ID)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if result.Seat != enums.CommitteeSeatWaitlist {
		t.Fatalf("expected waitlist seat, got %s", result.Seat)
	}
}

func TestJoinZeroCapacityNeverWaitlists(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)
	committee := seedCommittee(t, repo, 0)

	for i := 0; i < 25; i++ {
		result, err := svc.Join(context.Background(), activeMember(), committee.ID)
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		if result.Seat != enums.CommitteeSeatRoster {
			t.Fatalf("join %d: capacity 0 is unlimited, got %s", i, result.Seat)
		}
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc, notifier := newTestService(t, repo)
	committee := seedCommittee(t, repo, 1)
	member := activeMember()

	first, err := svc.Join(context.Background(), member, committee.ID)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	second, err := svc.Join(context.Background(), member, committee.ID)
	if err != nil {
		t.Fatalf("repeat join: %v", err)
	}
	if !second.AlreadyMember {
		t.Fatal("repeat join must report the existing seat")
	}
	if second.Seat != first.Seat {
		t.Fatalf("seat changed on repeat join: %s -> %s", first.Seat, second.Seat)
	}
	if len(repo.seats) != 1 {
		t.Fatalf("expected one seat row, got %d", len(repo.seats))
	}
	if len(notifier.pushed) != 1 {
		t.Fatalf("repeat join must not re-notify, got %d pushes", len(notifier.pushed))
	}
}

func TestJoinWaitlistedSeatStaysWaitlistedOnRepeat(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)
	committee := seedCommittee(t, repo, 1)
	if _, err := svc.Join(context.Background(), activeMember(), committee.ID); err != nil {
		t.Fatalf("fill roster: %v", err)
	}

	waitlisted := activeMember()
	if _, err := svc.Join(context.Background(), waitlisted, committee.ID); err != nil {
		t.Fatalf("waitlist join: %v", err)
	}
	repeat, err := svc.Join(context.Background(), waitlisted, committee.ID)
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if repeat.Seat != enums.CommitteeSeatWaitlist || !repeat.AlreadyMember {
		t.Fatalf("expected existing waitlist seat, got %+v", repeat)
	}
}

func TestJoinPendingMemberForbidden(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)
	committee := seedCommittee(t, repo, 5)

	pending := policy.Identity{
		MemberID: uuid.New(),
		Role:     enums.MemberRoleMember,
		Status:   enums.MemberStatusPending,
	}
	_, err := svc.Join(context.Background(), pending, committee.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)
	if len(repo.seats) != 0 {
		t.Fatal("pending members must not be seated")
	}
}

func TestJoinUnknownCommitteeNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.Join(context.Background(), activeMember(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestLeaveRemovesSeat(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)
	committee := seedCommittee(t, repo, 0)
	member := activeMember()

	if _, err := svc.Join(context.Background(), member, committee.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.Leave(context.Background(), member, committee.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(repo.seats) != 0 {
		t.Fatal("seat should be removed")
	}

	err := svc.Leave(context.Background(), member, committee.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestRemoveMemberRequiresBoardRole(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)
	committee := seedCommittee(t, repo, 0)
	member := activeMember()

	if _, err := svc.Join(context.Background(), member, committee.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	err := svc.RemoveMember(context.Background(), activeMember(), committee.ID, member.MemberID)
	assertCode(t, err, pkgerrors.CodeForbidden)
	if len(repo.seats) != 1 {
		t.Fatal("seat should survive a forbidden removal")
	}
}

func TestRemoveMemberDropsSeatAndNotifies(t *testing.T) {
	repo := newFakeRepo()
	svc, notifier := newTestService(t, repo)
	committee := seedCommittee(t, repo, 0)
	member := activeMember()

	if _, err := svc.Join(context.Background(), member, committee.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	notifier.pushed = nil

	if err := svc.RemoveMember(context.Background(), boardIdentity(), committee.ID, member.MemberID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if len(repo.seats) != 0 {
		t.Fatal("seat should be removed")
	}
	if len(notifier.pushed) != 1 || notifier.pushed[0] != enums.NotificationKindCommitteeSeat {
		t.Fatalf("expected removal notification, got %v", notifier.pushed)
	}

	err := svc.RemoveMember(context.Background(), boardIdentity(), committee.ID, member.MemberID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateRequiresBoardRole(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.Create(context.Background(), activeMember(), CreateCommitteeInput{Name: "Events"})
	assertCode(t, err, pkgerrors.CodeForbidden)

	committee, err := svc.Create(context.Background(), boardIdentity(), CreateCommitteeInput{Name: "Events", Capacity: 8})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if committee.Capacity != 8 {
		t.Fatalf("capacity not stored: %d", committee.Capacity)
	}
}

func TestCreateDuplicateNameConflict(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)

	if _, err := svc.Create(context.Background(), boardIdentity(), CreateCommitteeInput{Name: "Finance"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(context.Background(), boardIdentity(), CreateCommitteeInput{Name: "Finance"})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestRosterListsSeats(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(t, repo)
	committee := seedCommittee(t, repo, 0)

	for i := 0; i < 3; i++ {
		if _, err := svc.Join(context.Background(), activeMember(), committee.ID); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	seats, err := svc.Roster(context.Background(), activeMember(), committee.ID)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(seats) != 3 {
		t.Fatalf("expected 3 seats, got %d", len(seats))
	}
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
