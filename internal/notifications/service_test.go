package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
	"github.com/riverbend-alliance/portal-backend/pkg/pagination"
)

type fakeRepo struct {
	created     []*models.Notification
	listFn      func(params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	markFn      func(memberID, notificationID uuid.UUID) (notificationMarkResult, error)
	markAllFn   func(memberID uuid.UUID) (int64, error)
	createError error
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, notification *models.Notification) error {
	if f.createError != nil {
		return f.createError
	}
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(params)
	}
	return nil, nil, nil
}

func (f *fakeRepo) MarkRead(ctx context.Context, memberID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markFn != nil {
		return f.markFn(memberID, notificationID)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepo) MarkAllRead(ctx context.Context, memberID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllFn != nil {
		return f.markAllFn(memberID)
	}
	return 0, nil
}

func (f *fakeRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPushStoresNotification(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo)
	memberID := uuid.New()

	err := svc.Push(context.Background(), memberID, enums.NotificationKindDuesSettled, "Dues settled", "All set for this cycle.")
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one row, got %d", len(repo.created))
	}
	stored := repo.created[0]
	if stored.MemberID != memberID || stored.Kind != enums.NotificationKindDuesSettled {
		t.Fatalf("wrong row stored: %+v", stored)
	}
}

func TestPushRejectsInvalidKind(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})

	err := svc.Push(context.Background(), uuid.New(), enums.NotificationKind("bogus"), "t", "m")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestListReturnsCursorWhenMorePagesExist(t *testing.T) {
	next := &pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	repo := &fakeRepo{
		listFn: func(params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
			return []models.Notification{{ID: uuid.New()}}, next, nil
		},
	}
	svc := newTestService(t, repo)

	result, err := svc.List(context.Background(), ListParams{MemberID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Cursor == "" {
		t.Fatal("expected a next-page cursor")
	}
	parsed, err := pagination.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if parsed.ID != next.ID {
		t.Fatal("cursor roundtrip mismatch")
	}
}

func TestListRejectsMalformedCursor(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})

	_, err := svc.List(context.Background(), ListParams{MemberID: uuid.New(), Cursor: "not-base64!"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestMarkReadNotFound(t *testing.T) {
	repo := &fakeRepo{
		markFn: func(memberID, notificationID uuid.UUID) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newTestService(t, repo)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	repo := &fakeRepo{
		markAllFn: func(memberID uuid.UUID) (int64, error) { return 4, nil },
	}
	svc := newTestService(t, repo)

	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4, got %d", count)
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
