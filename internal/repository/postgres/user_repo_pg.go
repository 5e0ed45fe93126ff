package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/njprem/Apartment_APP_BackEnd/internal/domain"
	"github.com/njprem/Apartment_APP_BackEnd/internal/repository/ports"
)

const userColumns = `id, username, email, full_name, phone, role, apartment_number, building, is_active, password_hash, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, input domain.NewUser, passwordHash string) (*domain.User, error) {
	const query = `
        INSERT INTO user_account (username, email, full_name, phone, role, apartment_number, building, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query,
		input.Username,
		input.Email,
		input.FullName,
		input.Phone,
		input.Role,
		input.ApartmentNumber,
		input.Building,
		passwordHash,
	)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier matches a username first and an email second.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE username = $1 OR email = $2
        ORDER BY (username = $1) DESC
        LIMIT 1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, identifier, normalizeEmail(identifier)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE email = $1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, normalizeEmail(email)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE id = $1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const query = `
        UPDATE user_account
        SET password_hash = $2,
            updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByHashLength returns the accounts whose stored credential has one of the
// given character widths.
func (r *UserRepository) ListByHashLength(ctx context.Context, lengths []int) ([]domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE char_length(password_hash) = ANY($1)
        ORDER BY created_at ASC
    `
	widths := make([]int64, 0, len(lengths))
	for _, l := range lengths {
		widths = append(widths, int64(l))
	}
	users := make([]domain.User, 0)
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(widths)); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM user_account`); err != nil {
		return 0, err
	}
	return total, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ ports.UserRepository = (*UserRepository)(nil)
