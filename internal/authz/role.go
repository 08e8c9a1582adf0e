package authz

// Role is the closed set of roles a user can hold. A freshly joined user is
// Pending until an admin assigns a working role.
type Role string

const (
	RolePending  Role = "Pending"
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleAdmin    Role = "Admin"
)

// IsValid checks if the role is one of the predefined valid roles.
func (r Role) IsValid() bool {
	switch r {
	case RolePending, RoleEmployee, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsApprover reports whether the role may hold direct reports and appear in
// manager dropdowns.
func (r Role) IsApprover() bool {
	return r == RoleManager || r == RoleAdmin
}

// ParseRole safely parses a string into a Role.
func ParseRole(s string) (Role, bool) {
	role := Role(s)
	return role, role.IsValid()
}

// AssignableRoles returns the roles an admin may assign to a pending user.
// Pending itself is never assignable.
func AssignableRoles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleAdmin}
}
