package posts

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
	byID map[uuid.UUID]*models.Post
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[uuid.UUID]*models.Post)}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, post *models.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	clone := *post
	f.byID[post.ID] = &clone
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *post
	return &clone, nil
}

func (f *fakeRepo) Update(ctx context.Context, post *models.Post) error {
	clone := *post
	f.byID[post.ID] = &clone
	return nil
}

func (f *fakeRepo) ListPublished(ctx context.Context, limit int) ([]models.Post, error) {
	var out []models.Post
	for _, p := range f.byID {
		if p.Published && p.RemovedAt == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, repo *fakeRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Policy: policy.New(nil)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func memberIdentity() policy.Identity {
	return policy.Identity{MemberID: uuid.New(), Role: enums.MemberRoleMember, Status: enums.MemberStatusActive}
}

func boardIdentity() policy.Identity {
	return policy.Identity{MemberID: uuid.New(), Role: enums.MemberRoleBoard, Status: enums.MemberStatusActive}
}

func createPost(t *testing.T, svc Service, author policy.Identity) *models.Post {
	t.Helper()
	post, err := svc.Create(context.Background(), author, CreatePostInput{
		Title: "Fall potluck",
		Body:  "Bring a dish to the community hall on Saturday.",
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func TestCreatePublishesImmediately(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	author := memberIdentity()

	post := createPost(t, svc, author)
	if !post.Published {
		t.Fatal("new posts should be published")
	}
	if post.AuthorID != author.MemberID {
		t.Fatal("author not stamped")
	}
}

func TestCreatePendingMemberForbidden(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	pending := policy.Identity{MemberID: uuid.New(), Role: enums.MemberRoleMember, Status: enums.MemberStatusPending}
	_, err := svc.Create(context.Background(), pending, CreatePostInput{Title: "Hi", Body: "there"})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateRequiresTitleAndBody(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), memberIdentity(), CreatePostInput{Title: "  ", Body: "content"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRemoveByAuthor(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	author := memberIdentity()
	post := createPost(t, svc, author)

	if err := svc.Remove(context.Background(), author, post.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	stored := repo.byID[post.ID]
	if stored.RemovedAt == nil || stored.RemovedBy == nil || *stored.RemovedBy != author.MemberID {
		t.Fatal("removal must stamp actor and time")
	}
	if stored.Published {
		t.Fatal("removed post must leave the feed")
	}
}

func TestRemoveByModerator(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	post := createPost(t, svc, memberIdentity())

	moderator := boardIdentity()
	if err := svc.Remove(context.Background(), moderator, post.ID); err != nil {
		t.Fatalf("moderator remove: %v", err)
	}
	if got := repo.byID[post.ID].RemovedBy; got == nil || *got != moderator.MemberID {
		t.Fatal("moderator must be recorded as remover")
	}
}

func TestRemoveByStrangerForbidden(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	post := createPost(t, svc, memberIdentity())

	err := svc.Remove(context.Background(), memberIdentity(), post.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRemoveIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	author := memberIdentity()
	post := createPost(t, svc, author)

	if err := svc.Remove(context.Background(), author, post.ID); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	firstRemover := *repo.byID[post.ID].RemovedBy

	if err := svc.Remove(context.Background(), boardIdentity(), post.ID); err != nil {
		t.Fatalf("repeat remove: %v", err)
	}
	if *repo.byID[post.ID].RemovedBy != firstRemover {
		t.Fatal("repeat removal must not overwrite the original remover")
	}
}

func TestListExcludesRemovedPosts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	author := memberIdentity()
	kept := createPost(t, svc, author)
	removed := createPost(t, svc, author)

	if err := svc.Remove(context.Background(), author, removed.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	feed, err := svc.List(context.Background(), memberIdentity(), 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != kept.ID {
		t.Fatalf("feed should contain only the kept post, got %d", len(feed))
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
