package enums

import "fmt"

// MemberRole represents an organization-level permissions role.
type MemberRole string

const (
	MemberRoleMember    MemberRole = "member"
	MemberRoleBoard     MemberRole = "board"
	MemberRoleTreasurer MemberRole = "treasurer"
	MemberRolePresident MemberRole = "president"
)

var validMemberRoles = []MemberRole{
	MemberRoleMember,
	MemberRoleBoard,
	MemberRoleTreasurer,
	MemberRolePresident,
}

var memberRoleRanks = map[MemberRole]int{
	MemberRoleMember:    0,
	MemberRoleBoard:     1,
	MemberRoleTreasurer: 2,
	MemberRolePresident: 3,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// AtLeast reports whether the role ranks at or above the other role.
func (m MemberRole) AtLeast(other MemberRole) bool {
	rank, ok := memberRoleRanks[m]
	if !ok {
		return false
	}
	otherRank, ok := memberRoleRanks[other]
	if !ok {
		return false
	}
	return rank >= otherRank
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
