package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// OTPLifetime is how long a verification code stays valid.
const OTPLifetime = 10 * time.Minute

// generateOTP returns a random six digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generating OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// hashOTP returns the stored form of a code.
func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// otpMatches compares a submitted code against a stored hash.
func otpMatches(hash, code string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(hashOTP(code))) == 1
}
