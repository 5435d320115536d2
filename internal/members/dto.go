package members

import (
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/db/models"
	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// MemberDTO is the transport shape that omits credentials.
type MemberDTO struct {
	ID          uuid.UUID          `json:"id"`
	Email       string             `json:"email"`
	DisplayName string             `json:"display_name"`
	Phone       *string            `json:"phone,omitempty"`
	Role        enums.MemberRole   `json:"role"`
	Status      enums.MemberStatus `json:"status"`
	ApprovedAt  *time.Time         `json:"approved_at,omitempty"`
	LastLoginAt *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// FromModel converts a persisted member into its transport shape.
func FromModel(m *models.Member) *MemberDTO {
	if m == nil {
		return nil
	}
	return &MemberDTO{
		ID:          m.ID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Phone:       m.Phone,
		Role:        m.Role,
		Status:      m.Status,
		ApprovedAt:  m.ApprovedAt,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// UpdateProfileInput carries the self-service editable fields.
type UpdateProfileInput struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=120"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
}
