package util

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func TestJWTManagerGenerateAndParse(t *testing.T) {
	ttl := time.Minute
	manager := NewJWTManager("top-secret", ttl)

	userID := uuid.New()
	token, expiresAt, err := manager.Generate(userID, "tester", "resident")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token to be non-empty")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatalf("expected expiry in the future")
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != userID || claims.Subject != userID.String() {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Username != "tester" || claims.Role != "resident" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be set")
	}
}

func TestJWTManagerExpiryBoundary(t *testing.T) {
	clock := &stepClock{now: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
	manager := NewJWTManager("secret", time.Hour).WithClock(clock.Now)

	token, expiresAt, err := manager.Issue(uuid.New(), "resident", "", 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if !expiresAt.Equal(clock.now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry %s", expiresAt)
	}

	clock.now = expiresAt.Add(-time.Second)
	if _, err := manager.Parse(token); err != nil {
		t.Fatalf("expected token to be valid just before expiry, got %v", err)
	}

	clock.now = expiresAt.Add(time.Second)
	if _, err := manager.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestJWTManagerSubSecondExpiry(t *testing.T) {
	issued := time.Date(2025, 3, 1, 8, 0, 0, 700*int(time.Millisecond), time.UTC)
	clock := &stepClock{now: issued}
	manager := NewJWTManager("secret", time.Minute).WithClock(clock.Now)

	token, expiresAt, err := manager.Generate(uuid.New(), "resident", "resident")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	want := issued.Add(time.Minute)
	if !expiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, expiresAt)
	}

	clock.now = want.Add(-200 * time.Millisecond)
	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("expected token to be valid 200ms before expiry, got %v", err)
	}
	if d := claims.ExpiresAt.Time.Sub(want); d > time.Millisecond || d < -time.Millisecond {
		t.Fatalf("exp claim %s does not match %s", claims.ExpiresAt.Time, want)
	}

	clock.now = want.Add(time.Millisecond)
	if _, err := manager.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken 1ms after expiry, got %v", err)
	}
}

func TestJWTManagerRejectsTampering(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, _, err := manager.Generate(uuid.New(), "resident", "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments")
	}
	forged, _, err := NewJWTManager("other-secret", time.Hour).Generate(uuid.New(), "intruder", "admin")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	forgedParts := strings.Split(forged, ".")

	cases := map[string]string{
		"empty":           "",
		"garbage":         "not.a.token",
		"swapped payload": parts[0] + "." + forgedParts[1] + "." + parts[2],
		"foreign secret":  forged,
		"truncated":       parts[0] + "." + parts[1],
	}
	for name, candidate := range cases {
		if _, err := manager.Parse(candidate); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestJWTManagerRejectsOtherAlgorithms(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	userID := uuid.New()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512 token, got %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := manager.Parse(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unsigned token, got %v", err)
	}
}
