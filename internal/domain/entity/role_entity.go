package entity

// Role is the authorization role of a user. Sign-up always grants
// RoleUser; elevation happens through admin tooling only.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}
