package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a member-authored community post shown inside the portal.
type Post struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID  uuid.UUID  `gorm:"column:author_id;type:uuid;not null;index"`
	Title     string     `gorm:"column:title;not null"`
	Body      string     `gorm:"column:body;not null"`
	Published bool       `gorm:"column:published;not null;default:true"`
	RemovedBy *uuid.UUID `gorm:"column:removed_by;type:uuid"`
	RemovedAt *time.Time `gorm:"column:removed_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
