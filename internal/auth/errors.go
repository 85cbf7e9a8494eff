package auth

import "errors"

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account is not verified, check your email for the OTP")
	ErrAlreadyVerified    = errors.New("user is already verified")
	ErrOTPNotSet          = errors.New("OTP not set, request a new one")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP has expired")
	ErrRateLimited        = errors.New("too many attempts, try again later")
	ErrUnauthorized       = errors.New("not authorized")
)
