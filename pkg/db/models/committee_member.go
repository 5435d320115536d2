package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/riverbend-alliance/portal-backend/pkg/enums"
)

// CommitteeMember links a member with a committee and records which seat
// they hold. The (committee, member) pair is unique.
type CommitteeMember struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CommitteeID uuid.UUID           `gorm:"column:committee_id;type:uuid;not null;uniqueIndex:idx_committee_member"`
	MemberID    uuid.UUID           `gorm:"column:member_id;type:uuid;not null;uniqueIndex:idx_committee_member"`
	Seat        enums.CommitteeSeat `gorm:"column:seat;type:committee_seat;not null"`
	JoinedAt    time.Time           `gorm:"column:joined_at;autoCreateTime"`
}
