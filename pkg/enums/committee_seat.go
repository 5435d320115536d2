package enums

import "fmt"

// CommitteeSeat distinguishes roster members from waitlisted ones.
type CommitteeSeat string

const (
	CommitteeSeatRoster   CommitteeSeat = "roster"
	CommitteeSeatWaitlist CommitteeSeat = "waitlist"
)

var validCommitteeSeats = []CommitteeSeat{
	CommitteeSeatRoster,
	CommitteeSeatWaitlist,
}

// String implements fmt.Stringer.
func (c CommitteeSeat) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CommitteeSeat.
func (c CommitteeSeat) IsValid() bool {
	for _, candidate := range validCommitteeSeats {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCommitteeSeat converts raw input into a CommitteeSeat.
func ParseCommitteeSeat(value string) (CommitteeSeat, error) {
	for _, candidate := range validCommitteeSeats {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid committee seat %q", value)
}
