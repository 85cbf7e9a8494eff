package auth

import (
	"strconv"
	"testing"
)

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTP()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q should have 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil || n < 100000 || n > 999999 {
			t.Fatalf("code %q out of range", code)
		}
	}
}

func TestOTPMatches(t *testing.T) {
	hash := hashOTP("482913")
	if hash == "482913" {
		t.Fatal("hash should not be the code")
	}
	if !otpMatches(hash, "482913") {
		t.Error("same code should match")
	}
	if otpMatches(hash, "482914") {
		t.Error("different code should not match")
	}
	if otpMatches("", "482913") {
		t.Error("empty hash should not match")
	}
}
