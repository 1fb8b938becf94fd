package enums

import "fmt"

// MemberRole represents a store-level permissions role.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleAdmin,
	MemberRoleMember,
}

var memberRoleRank = map[MemberRole]int{
	MemberRoleOwner:  3,
	MemberRoleAdmin:  2,
	MemberRoleMember: 1,
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

// AtLeast reports whether the role sits at or above the required role in the
// owner > admin > member hierarchy.
func (m MemberRole) AtLeast(required MemberRole) bool {
	return memberRoleRank[m] >= memberRoleRank[required] && memberRoleRank[m] > 0
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
