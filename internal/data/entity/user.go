package entity

type UserRole string

const (
	RoleUser   UserRole = "USER"
	RoleClient UserRole = "CLIENT"
	RoleAdmin  UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleClient, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Username      string   `db:"username"`
	Email         string   `db:"email"`
	PasswordHash  string   `db:"password"`
	Role          UserRole `db:"role"`
	EmailVerified bool     `db:"email_verified"`
	IsActive      bool     `db:"is_active"`
}
