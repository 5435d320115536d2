package posts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/internal/policy"
	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	pkgerrors "github.com/riverbend-alliance/portal-backend/pkg/errors"
)

// CreatePostInput carries a new community post.
type CreatePostInput struct {
	Title string `json:"title" validate:"required,min=3,max=200"`
	Body  string `json:"body" validate:"required,min=1,max=20000"`
}

// Service handles community posts: authoring, the public feed, and
// removal by the author or a moderator.
type Service interface {
	Create(ctx context.Context, actor policy.Identity, input CreatePostInput) (*models.Post, error)
	List(ctx context.Context, actor policy.Identity, limit int) ([]models.Post, error)
	Remove(ctx context.Context, actor policy.Identity, postID uuid.UUID) error
}

type service struct {
	repo   Repository
	policy *policy.Policy
}

// ServiceParams bundles the post service dependencies.
type ServiceParams struct {
	Repo   Repository
	Policy *policy.Policy
}

// NewService validates dependencies and returns the post service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "post repository required")
	}
	if params.Policy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "authorization policy required")
	}
	return &service{repo: params.Repo, policy: params.Policy}, nil
}

func (s *service) Create(ctx context.Context, actor policy.Identity, input CreatePostInput) (*models.Post, error) {
	if !s.policy.Can(actor, policy.ActionCreatePost, policy.Resource{Kind: "post", OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "active membership required to post")
	}
	title := strings.TrimSpace(input.Title)
	body := strings.TrimSpace(input.Body)
	if title == "" || body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and body are required")
	}

	post := &models.Post{
		AuthorID:  actor.MemberID,
		Title:     title,
		Body:      body,
		Published: true,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}
	return post, nil
}

func (s *service) List(ctx context.Context, actor policy.Identity, limit int) ([]models.Post, error) {
	if !s.policy.Can(actor, policy.ActionViewPortal, policy.Resource{OwnerID: actor.MemberID}) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	posts, err := s.repo.ListPublished(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}
	return posts, nil
}

// Remove takes a post out of the feed. Authors may remove their own
// posts; anyone else needs moderation rights. Removal is idempotent.
func (s *service) Remove(ctx context.Context, actor policy.Identity, postID uuid.UUID) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}
	if post == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}

	isAuthor := post.AuthorID == actor.MemberID
	if !isAuthor && !s.policy.Can(actor, policy.ActionModeratePosts, policy.Resource{Kind: "post", ID: postID, OwnerID: post.AuthorID}) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author or a moderator can remove a post")
	}
	if isAuthor && !s.policy.Can(actor, policy.ActionCreatePost, policy.Resource{Kind: "post", OwnerID: actor.MemberID}) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "active membership required")
	}
	if post.RemovedAt != nil {
		return nil
	}

	now := time.Now().UTC()
	post.Published = false
	post.RemovedBy = &actor.MemberID
	post.RemovedAt = &now
	if err := s.repo.Update(ctx, post); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove post")
	}
	return nil
}
