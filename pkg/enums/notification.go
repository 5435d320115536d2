package enums

import "fmt"

// NotificationKind identifies what triggered a member notification.
type NotificationKind string

const (
	NotificationKindDuesSettled    NotificationKind = "dues_settled"
	NotificationKindMemberApproved NotificationKind = "member_approved"
	NotificationKindCommitteeSeat  NotificationKind = "committee_seat"
	NotificationKindHoursReviewed  NotificationKind = "hours_reviewed"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindDuesSettled,
	NotificationKindMemberApproved,
	NotificationKindCommitteeSeat,
	NotificationKindHoursReviewed,
}

// String implements fmt.Stringer.
func (n NotificationKind) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationKind.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
