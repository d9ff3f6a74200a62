// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/membership-api/internal/role"
)

type User struct {
	ID              string    `db:"id"`
	Email           string    `db:"email"`
	PasswordHash    string    `db:"password_hash"`
	FullName        string    `db:"full_name"`
	Phone           string    `db:"phone"`
	Role            string    `db:"role"`
	StateCode       string    `db:"state_code"`
	DeploymentState string    `db:"deployment_state"`
	ServiceYear     int       `db:"service_year"`
	IsActive        bool      `db:"is_active"`
	EmailVerified   bool      `db:"email_verified"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (u *User) IsSuperAdmin() bool {
	return role.Role(u.Role) == role.SuperAdmin
}

// MemberStats summarises the membership for the admin dashboard.
type MemberStats struct {
	Total   int            `json:"total"`
	Active  int            `json:"active"`
	ByRole  map[string]int `json:"by_role"`
	ByState map[string]int `json:"by_state"`
}

type bucket struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}
