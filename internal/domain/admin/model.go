package admin

import (
	"time"

	"github.com/google/uuid"
)

type HospitalUser struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	HospitalID  string     `db:"hospital_id" json:"hospital_id"`
	Email       string     `db:"email" json:"email"`
	Name        string     `db:"name" json:"name"`
	Role        string     `db:"role" json:"role"`
	Specialty   *string    `db:"specialty" json:"specialty,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	InvitedAt   time.Time  `db:"invited_at" json:"invited_at"`
	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// Pending reports whether the user was invited but has never signed in.
func (u *HospitalUser) Pending() bool {
	return u.LastLoginAt == nil
}
