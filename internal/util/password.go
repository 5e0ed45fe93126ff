package util

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// LegacyDigestWidth is the length of a hex encoded sha256 digest, the only
// credential format the system stored before bcrypt.
const LegacyDigestWidth = sha256.Size * 2

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

type HashFormat int

const (
	HashFormatLegacy HashFormat = iota
	HashFormatModern
)

func (f HashFormat) String() string {
	switch f {
	case HashFormatModern:
		return "modern"
	default:
		return "legacy"
	}
}

// DetectHashFormat classifies a stored credential by structure: anything bcrypt
// can read a cost factor from is modern, everything else is treated as a
// legacy digest candidate.
func DetectHashFormat(stored string) HashFormat {
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return HashFormatModern
	}
	return HashFormatLegacy
}

func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword never fails on malformed input; an unreadable stored value
// simply does not match.
func VerifyPassword(password, stored string) bool {
	if stored == "" {
		return false
	}
	switch DetectHashFormat(stored) {
	case HashFormatModern:
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	default:
		candidate := LegacyDigest(password)
		return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1
	}
}

// NeedsRehash reports whether the stored value has the width of a legacy
// digest. It is a migration hint only: it looks at length, not structure.
func NeedsRehash(stored string) bool {
	return len(stored) == LegacyDigestWidth
}

func LegacyDigest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
