package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Username        string    `db:"username" json:"username"`
	Email           string    `db:"email" json:"email"`
	FullName        *string   `db:"full_name" json:"full_name,omitempty"`
	Phone           *string   `db:"phone" json:"phone,omitempty"`
	Role            Role      `db:"role" json:"role"`
	ApartmentNumber *string   `db:"apartment_number" json:"apartment_number,omitempty"`
	Building        *string   `db:"building" json:"building,omitempty"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// NewUser carries the registration fields persisted alongside the first
// credential.
type NewUser struct {
	Username        string
	Email           string
	FullName        *string
	Phone           *string
	Role            Role
	ApartmentNumber *string
	Building        *string
}

func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}
