package committees

import (
	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// CreateCommitteeInput carries the fields for a new committee. Capacity 0
// means the roster is unlimited.
type CreateCommitteeInput struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=2000"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
}

// JoinResult reports where a join request landed.
type JoinResult struct {
	CommitteeID uuid.UUID           `json:"committee_id"`
	MemberID    uuid.UUID           `json:"member_id"`
	Seat        enums.CommitteeSeat `json:"seat"`
	// AlreadyMember is true when the member held a seat before this call.
	AlreadyMember bool `json:"already_member"`
}
