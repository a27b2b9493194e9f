package domain

import "time"

// UserRole enumerates the four roles that gate workflow transitions.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleManager  UserRole = "MANAGER"
	RoleReviewer UserRole = "REVIEWER"
	RoleViewer   UserRole = "VIEWER"
)

// UserRoles lists every role from most to least privileged.
var UserRoles = []UserRole{RoleAdmin, RoleManager, RoleReviewer, RoleViewer}

// roleRank encodes the strict total order ADMIN > MANAGER > REVIEWER > VIEWER.
var roleRank = map[UserRole]int{
	RoleAdmin:    4,
	RoleManager:  3,
	RoleReviewer: 2,
	RoleViewer:   1,
}

// Valid reports whether the role is one of the four known values.
func (r UserRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role ranks equal to or above other in the
// role hierarchy. Unknown roles rank below every known role.
func (r UserRole) AtLeast(other UserRole) bool {
	return roleRank[r] >= roleRank[other]
}

// User is an operator of the service desk.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         UserRole
	Department   string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
