package models

// Role identifies what a logged-in user may do on the terminal.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "vendedor"
)

// Valid reports whether the role is one the gateway knows about.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSeller
}

// User mirrors the account records the remote store exposes to admins.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
