package posts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
)

// Repository persists community posts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	ListPublished(ctx context.Context, limit int) ([]models.Post, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns the gorm-backed post repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repository) Update(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *repository) ListPublished(ctx context.Context, limit int) ([]models.Post, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("published = TRUE AND removed_at IS NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
