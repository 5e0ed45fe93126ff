package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/Apartment_APP_BackEnd/internal/domain"
	"github.com/njprem/Apartment_APP_BackEnd/internal/repository/ports"
)

type PasswordResetRepository struct {
	db *sqlx.DB
}

func NewPasswordResetRepo(db *sqlx.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Upsert(ctx context.Context, userID uuid.UUID, otpHash, otpSalt []byte, createdAt time.Time) (*domain.PasswordReset, error) {
	const query = `
        INSERT INTO password_reset (user_id, otp_hash, otp_salt, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id) DO UPDATE
        SET otp_hash = EXCLUDED.otp_hash,
            otp_salt = EXCLUDED.otp_salt,
            created_at = EXCLUDED.created_at
        RETURNING user_id, otp_hash, otp_salt, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, userID, otpHash, otpSalt, createdAt)
	var reset domain.PasswordReset
	if err := row.StructScan(&reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *PasswordResetRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.PasswordReset, error) {
	const query = `
        SELECT user_id, otp_hash, otp_salt, created_at
        FROM password_reset
        WHERE user_id = $1
    `
	var reset domain.PasswordReset
	if err := r.db.GetContext(ctx, &reset, query, userID); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *PasswordResetRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset WHERE user_id = $1`, userID)
	return err
}

func (r *PasswordResetRepository) Redeem(ctx context.Context, userID uuid.UUID, otpHash []byte, passwordHash string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM password_reset WHERE user_id = $1 AND otp_hash = $2`, userID, otpHash)
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

		const update = `
            UPDATE user_account
            SET password_hash = $2,
                updated_at = NOW()
            WHERE id = $1
        `
		result, err = tx.ExecContext(ctx, update, userID, passwordHash)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

var _ ports.PasswordResetRepository = (*PasswordResetRepository)(nil)
