package enums

import "fmt"

// MemberRole represents a dealer-level team role.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
	MemberRoleViewer MemberRole = "viewer"
)

// validMemberRoles is ordered from most to least privileged.
var validMemberRoles = []MemberRole{
	MemberRoleOwner,
	MemberRoleAdmin,
	MemberRoleMember,
	MemberRoleViewer,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	return m.Rank() > 0
}

// Rank orders roles by privilege: owner is highest, unknown roles rank 0.
func (m MemberRole) Rank() int {
	for i, candidate := range validMemberRoles {
		if candidate == m {
			return len(validMemberRoles) - i
		}
	}
	return 0
}

// Outranks reports whether m is strictly more privileged than other.
func (m MemberRole) Outranks(other MemberRole) bool {
	return m.Rank() > other.Rank()
}

// MemberRoles returns the known roles from most to least privileged.
func MemberRoles() []MemberRole {
	return append([]MemberRole(nil), validMemberRoles...)
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
