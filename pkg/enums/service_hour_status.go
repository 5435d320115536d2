package enums

import "fmt"

// ServiceHourStatus tracks review state for a logged service-hour entry.
type ServiceHourStatus string

const (
	ServiceHourStatusSubmitted ServiceHourStatus = "submitted"
	ServiceHourStatusApproved  ServiceHourStatus = "approved"
	ServiceHourStatusRejected  ServiceHourStatus = "rejected"
)

var validServiceHourStatuses = []ServiceHourStatus{
	ServiceHourStatusSubmitted,
	ServiceHourStatusApproved,
	ServiceHourStatusRejected,
}

// String implements fmt.Stringer.
func (s ServiceHourStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceHourStatus.
func (s ServiceHourStatus) IsValid() bool {
	for _, candidate := range validServiceHourStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceHourStatus converts raw input into a ServiceHourStatus.
func ParseServiceHourStatus(value string) (ServiceHourStatus, error) {
	for _, candidate := range validServiceHourStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service hour status %q", value)
}
