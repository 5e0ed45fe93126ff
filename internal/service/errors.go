package service

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailAlreadyUsed   = errors.New("email already registered")
	ErrPasswordTooWeak    = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
	ErrResetCodeInvalid   = errors.New("reset code is invalid")
	ErrResetCodeExpired   = errors.New("reset code has expired")
	ErrDeliveryFailed     = errors.New("reset code could not be delivered")
)

const pgUniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// violatedConstraint returns the constraint name of a unique violation.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}
