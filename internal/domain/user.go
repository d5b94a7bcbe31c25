package domain

import "time"

// Role enumerates the closed set of account roles.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleProfessor Role = "PROFESSOR"
	RoleStudent   Role = "STUDENT"

	// RoleInvalid tags role strings outside the enumeration. Authorization
	// checks treat it as a denial, never as a wildcard.
	RoleInvalid Role = "INVALID"
)

// ParseRole maps an untrusted role string onto the enumeration. Unrecognized
// values return RoleInvalid instead of an error so callers can switch
// exhaustively over {ADMIN, PROFESSOR, STUDENT, INVALID}.
func ParseRole(value string) Role {
	switch Role(value) {
	case RoleAdmin, RoleProfessor, RoleStudent:
		return Role(value)
	default:
		return RoleInvalid
	}
}

// User is the domain model for every account: students, professors, admins.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	Address      string
	Role         Role
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
