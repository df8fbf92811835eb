package models

// Roles.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// User is the role record consulted for operator-only calls.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
