package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/Apartment_APP_BackEnd/internal/domain"
	"github.com/njprem/Apartment_APP_BackEnd/internal/obs"
	"github.com/njprem/Apartment_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/Apartment_APP_BackEnd/internal/util"
)

// ResetCodeValidity is how long an emailed reset code can be redeemed.
const ResetCodeValidity = 10 * time.Minute

type PasswordResetSender interface {
	SendPasswordReset(ctx context.Context, email, name, otp string) error
}

type PasswordResetService struct {
	users     ports.UserRepository
	resets    ports.PasswordResetRepository
	sender    PasswordResetSender
	metrics   *obs.Metrics
	otpLength int
	now       func() time.Time
}

func NewPasswordResetService(users ports.UserRepository, resets ports.PasswordResetRepository, sender PasswordResetSender, otpLength int, metrics *obs.Metrics) *PasswordResetService {
	if otpLength <= 0 {
		otpLength = 6
	}
	return &PasswordResetService{
		users:     users,
		resets:    resets,
		sender:    sender,
		metrics:   metrics,
		otpLength: otpLength,
		now:       time.Now,
	}
}

// RequestReset issues a fresh code for the account behind email and mails it.
// Unknown and inactive addresses get the same nil result as a successful
// request. Only a failed delivery is reported, as ErrDeliveryFailed; the
// stored ticket stays in place and a repeated request replaces it.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := util.GenerateNumericOTP(s.otpLength)
	if err != nil {
		return err
	}
	digest, salt, err := util.DeriveOTPDigest(code)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			log.Printf("password reset: no account for requested address")
			s.clearTicket(ctx, uuid.Nil)
			s.metrics.PasswordReset("request", "unknown_account")
			return nil
		}
		return err
	}
	if !user.IsActive {
		log.Printf("password reset: request for inactive account %s ignored", user.ID)
		s.clearTicket(ctx, user.ID)
		s.metrics.PasswordReset("request", "inactive")
		return nil
	}

	if _, err := s.resets.Upsert(ctx, user.ID, digest, salt, s.now()); err != nil {
		return fmt.Errorf("store reset ticket: %w", err)
	}

	if s.sender == nil {
		log.Printf("password reset: no mail transport configured, code for %s not sent", user.ID)
		s.metrics.PasswordReset("request", "delivery_failed")
		return ErrDeliveryFailed
	}
	if err := s.sender.SendPasswordReset(ctx, user.Email, user.DisplayName(), code); err != nil {
		log.Printf("password reset: deliver code to %s: %v", user.ID, err)
		s.metrics.PasswordReset("request", "delivery_failed")
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	s.metrics.PasswordReset("request", "sent")
	return nil
}

// clearTicket stands in for the ticket write of a real request. For an
// unknown address it targets no row at all.
func (s *PasswordResetService) clearTicket(ctx context.Context, userID uuid.UUID) {
	if err := s.resets.Delete(ctx, userID); err != nil {
		log.Printf("password reset: clear ticket: %v", err)
	}
}

// VerifyCode reports whether code currently redeems the ticket of email
// without consuming it.
func (s *PasswordResetService) VerifyCode(ctx context.Context, email, code string) error {
	_, _, err := s.checkCode(ctx, email, code)
	s.metrics.PasswordReset("verify", outcome(err))
	return err
}

// CompleteReset validates everything again, then stores the new password and
// removes the ticket in one transaction.
func (s *PasswordResetService) CompleteReset(ctx context.Context, email, code, newPassword string) error {
	err := s.completeReset(ctx, email, code, newPassword)
	s.metrics.PasswordReset("complete", outcome(err))
	return err
}

func (s *PasswordResetService) completeReset(ctx context.Context, email, code, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, reset, err := s.checkCode(ctx, email, code)
	if err != nil {
		return err
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.resets.Redeem(ctx, user.ID, reset.OTPHash, hash); err != nil {
		if isNotFound(err) {
			log.Printf("password reset: ticket for %s replaced or redeemed concurrently", user.ID)
			return ErrResetCodeInvalid
		}
		return err
	}
	log.Printf("password reset: credential replaced for %s", user.ID)
	return nil
}

func (s *PasswordResetService) checkCode(ctx context.Context, email, code string) (*domain.User, *domain.PasswordReset, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrResetCodeInvalid
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, ErrResetCodeInvalid
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrResetCodeInvalid
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, ErrResetCodeInvalid
	}

	reset, err := s.resets.FindByUser(ctx, user.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, ErrResetCodeInvalid
		}
		return nil, nil, err
	}
	if !util.VerifyOTPDigest(code, reset.OTPSalt, reset.OTPHash) {
		return nil, nil, ErrResetCodeInvalid
	}
	if reset.Expired(s.now(), ResetCodeValidity) {
		return nil, nil, ErrResetCodeExpired
	}
	return user, reset, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrResetCodeExpired):
		return "expired"
	case errors.Is(err, ErrResetCodeInvalid):
		return "invalid"
	case errors.Is(err, ErrPasswordTooWeak), errors.Is(err, ErrPasswordTooLong):
		return "weak_password"
	default:
		return "error"
	}
}
