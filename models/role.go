package models

// Role represents the access level of a dashboard user
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// roleRanks is the single ordered enumeration consumed by every authorization
// check. Both the minimum-rank rule and the allow-list rule resolve roles here
// so server and client policy cannot diverge.
var roleRanks = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// Rank returns the position of the role in the hierarchy.
// Unknown or empty roles rank 0, below every defined role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// IsValid returns true if the role is one of the defined roles
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// String returns the role name
func (r Role) String() string {
	return string(r)
}

// Roles returns all defined roles ordered from lowest to highest rank
func Roles() []Role {
	return []Role{RoleViewer, RoleEditor, RoleAdmin}
}
