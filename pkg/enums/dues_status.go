package enums

import "fmt"

// DuesStatus tracks a member's dues record within one billing cycle.
type DuesStatus string

const (
	DuesStatusPending     DuesStatus = "pending"
	DuesStatusPaid        DuesStatus = "paid"
	DuesStatusExpired     DuesStatus = "expired"
	DuesStatusPaidOffline DuesStatus = "paid_offline"
	DuesStatusWaived      DuesStatus = "waived"
)

var validDuesStatuses = []DuesStatus{
	DuesStatusPending,
	DuesStatusPaid,
	DuesStatusExpired,
	DuesStatusPaidOffline,
	DuesStatusWaived,
}

// String implements fmt.Stringer.
func (d DuesStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DuesStatus.
func (d DuesStatus) IsValid() bool {
	for _, candidate := range validDuesStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status can never be re-initiated.
// Expired records may start a fresh checkout, so they are not terminal.
func (d DuesStatus) IsTerminal() bool {
	switch d {
	case DuesStatusPaid, DuesStatusPaidOffline, DuesStatusWaived:
		return true
	default:
		return false
	}
}

// ParseDuesStatus converts raw input into a DuesStatus.
func ParseDuesStatus(value string) (DuesStatus, error) {
	for _, candidate := range validDuesStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dues status %q", value)
}
