package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/Apartment_APP_BackEnd/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, input domain.NewUser, passwordHash string) (*domain.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	ListByHashLength(ctx context.Context, lengths []int) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
}
