package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Apartment_APP_BackEnd/internal/domain"
)

type PasswordResetRepository interface {
	// Upsert replaces any outstanding ticket of the user.
	Upsert(ctx context.Context, userID uuid.UUID, otpHash, otpSalt []byte, createdAt time.Time) (*domain.PasswordReset, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.PasswordReset, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	// Redeem clears the ticket holding otpHash and stores passwordHash in one
	// transaction. It returns sql.ErrNoRows when that ticket no longer exists.
	Redeem(ctx context.Context, userID uuid.UUID, otpHash []byte, passwordHash string) error
}
