package domain

import (
	"time"

	"github.com/google/uuid"
)

// PasswordReset is the single outstanding reset ticket of an account. Only a
// salted digest of the emailed code is kept.
type PasswordReset struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	OTPHash   []byte    `db:"otp_hash" json:"-"`
	OTPSalt   []byte    `db:"otp_salt" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (r *PasswordReset) ExpiresAt(validity time.Duration) time.Time {
	return r.CreatedAt.Add(validity)
}

// Expired reports whether more than validity has elapsed since creation.
func (r *PasswordReset) Expired(now time.Time, validity time.Duration) bool {
	return now.After(r.ExpiresAt(validity))
}
