package util

import "testing"

func TestGenerateNumericOTP(t *testing.T) {
	for _, digits := range []int{4, 6, 8} {
		code, err := GenerateNumericOTP(digits)
		if err != nil {
			t.Fatalf("GenerateNumericOTP returned error: %v", err)
		}
		if len(code) != digits {
			t.Fatalf("expected %d digits, got %q", digits, code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected only digits, got %q", code)
			}
		}
	}

	code, err := GenerateNumericOTP(0)
	if err != nil || len(code) != 6 {
		t.Fatalf("expected default width 6, got %q (%v)", code, err)
	}
}

func TestDeriveAndVerifyOTPDigest(t *testing.T) {
	digest, salt, err := DeriveOTPDigest("123456")
	if err != nil {
		t.Fatalf("DeriveOTPDigest returned error: %v", err)
	}
	if len(digest) == 0 || len(salt) == 0 {
		t.Fatalf("expected digest and salt to be populated")
	}
	if !VerifyOTPDigest("123456", salt, digest) {
		t.Fatalf("expected code to verify")
	}
	if VerifyOTPDigest("654321", salt, digest) {
		t.Fatalf("expected wrong code to fail")
	}
	if VerifyOTPDigest("", salt, digest) || VerifyOTPDigest("123456", nil, digest) {
		t.Fatalf("expected empty inputs to fail")
	}
}
