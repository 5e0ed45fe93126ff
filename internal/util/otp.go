package util

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	otpSaltLength   = 16
	otpDigestLength = 32
	argonTime       = 1
	argonMemory     = 64 * 1024
	argonThreads    = 4
)

func GenerateNumericOTP(digits int) (string, error) {
	if digits <= 0 {
		digits = 6
	}
	var builder strings.Builder
	builder.Grow(digits)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		builder.WriteByte(byte('0' + n.Int64()))
	}
	return builder.String(), nil
}

// DigestOTP derives the argon2id digest stored in place of a reset code.
func DigestOTP(code string, salt []byte) ([]byte, error) {
	if len(code) == 0 {
		return nil, errors.New("otp cannot be empty")
	}
	if len(salt) == 0 {
		return nil, errors.New("salt cannot be empty")
	}
	return argon2.IDKey([]byte(code), salt, argonTime, argonMemory, argonThreads, otpDigestLength), nil
}

func DeriveOTPDigest(code string) (digest, salt []byte, err error) {
	salt = make([]byte, otpSaltLength)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, err
	}
	digest, err = DigestOTP(code, salt)
	if err != nil {
		return nil, nil, err
	}
	return digest, salt, nil
}

func VerifyOTPDigest(code string, salt, expected []byte) bool {
	if len(code) == 0 || len(salt) == 0 || len(expected) == 0 {
		return false
	}
	candidate, err := DigestOTP(code, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, expected) == 1
}
