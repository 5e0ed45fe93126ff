package service

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/njprem/Apartment_APP_BackEnd/internal/domain"
	"github.com/njprem/Apartment_APP_BackEnd/internal/obs"
	"github.com/njprem/Apartment_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/Apartment_APP_BackEnd/internal/util"
)

const MinPasswordLength = 6

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	FullName        *string
	Phone           *string
	ApartmentNumber *string
	Building        *string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService struct {
	users   ports.UserRepository
	tokens  *util.JWTManager
	metrics *obs.Metrics
}

func NewAuthService(users ports.UserRepository, tokens *util.JWTManager, metrics *obs.Metrics) *AuthService {
	return &AuthService{users: users, tokens: tokens, metrics: metrics}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// timingHash is verified against when no account matches, so unknown
// identifiers cost the same bcrypt work as wrong passwords.
func timingHash() string {
	dummyHashOnce.Do(func() {
		hash, err := util.HashPassword("apartment-login-placeholder")
		if err != nil {
			log.Printf("auth: build placeholder hash: %v", err)
			return
		}
		dummyHash = hash
	})
	return dummyHash
}

// Login accepts a username or an email address.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		s.metrics.LoginAttempt("invalid_input")
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if isNotFound(err) {
			util.VerifyPassword(password, timingHash())
			s.metrics.LoginAttempt("unknown_account")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !util.VerifyPassword(password, user.PasswordHash) {
		s.metrics.LoginAttempt("invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		log.Printf("auth: login refused for inactive account %s", user.ID)
		s.metrics.LoginAttempt("inactive")
		return nil, ErrInactiveAccount
	}

	if util.NeedsRehash(user.PasswordHash) {
		s.upgradeCredential(ctx, user, password)
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.metrics.LoginAttempt("success")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// upgradeCredential replaces a legacy digest after a successful login. A
// failure leaves the legacy digest in place and only gets logged.
func (s *AuthService) upgradeCredential(ctx context.Context, user *domain.User, password string) {
	hash, err := util.HashPassword(password)
	if err != nil {
		log.Printf("auth: rehash legacy credential for %s: %v", user.ID, err)
		return
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		log.Printf("auth: persist upgraded credential for %s: %v", user.ID, err)
		return
	}
	user.PasswordHash = hash
	log.Printf("auth: migrated legacy credential for %s", user.ID)
}

// Register always creates a resident account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, domain.NewUser{
		Username:        username,
		Email:           email,
		FullName:        trimOptional(input.FullName),
		Phone:           trimOptional(input.Phone),
		Role:            domain.RoleResident,
		ApartmentNumber: trimOptional(input.ApartmentNumber),
		Building:        trimOptional(input.Building),
	}, hash)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(violatedConstraint(err), "username") {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailAlreadyUsed
		}
		return nil, err
	}
	return user, nil
}

// Authenticate validates a bearer token. Tokens are not looked up anywhere;
// they stay valid until they expire.
func (s *AuthService) Authenticate(token string) (*util.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, util.ErrInvalidToken
	}
	return s.tokens.Parse(token)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if !util.VerifyPassword(currentPassword, user.PasswordHash) {
		return ErrPasswordMismatch
	}
	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// validatePassword enforces the length floor in characters and the bcrypt
// ceiling in bytes.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooWeak
	}
	if len(password) > util.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email is malformed", ErrInvalidInput)
	}
	return email, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
