package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Top administrative role - exempt from the leave cap
	RoleHR       Role = "hr"       // Can decide leave of anyone except HR peers
	RoleManager  Role = "manager"  // Can decide leave of direct-report employees
	RoleEmployee Role = "employee" // Individual contributor
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// IsLeaveCapped reports whether the role is subject to the yearly paid-leave
// limit. Every role except admin is capped.
func (r Role) IsLeaveCapped() bool {
	return r != RoleAdmin
}

// User is the directory view of a person. Role and reporting line are owned by
// the directory collaborator; the accounting core only reads them.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	ManagerID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin checks if user holds the top administrative role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ReportsTo checks if managerID is the user's direct manager
func (u *User) ReportsTo(managerID string) bool {
	return u.ManagerID != nil && *u.ManagerID == managerID
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID string
	Role   Role
}
