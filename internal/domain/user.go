package domain

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleResident   = "resident"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User is the slice of the user record this service needs to resolve billing
// targets and authorize actions. The full profile lives elsewhere.
type User struct {
	ID        uuid.UUID `json:"id"`
	SocietyID uuid.UUID `json:"society_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FlatNo    string    `json:"flat_no"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
