package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/surekeys/rentals/internal/validate"
)

var phonePattern = regexp.MustCompile(`^(\+234|0)[789][01]\d{8}$`)

const minPasswordLen = 6

// OTPSender delivers verification codes.
type OTPSender interface {
	SendOTP(ctx context.Context, to, name, code string) error
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Role        Role   `json:"role"`
}

func (in RegisterInput) validate() error {
	var c validate.Collector
	c.Required("name", in.Name)
	c.Required("email", in.Email)
	c.Required("password", in.Password)
	c.Required("phoneNumber", in.PhoneNumber)
	c.Required("role", string(in.Role))

	if in.Email != "" {
		if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
			c.Addf("email is not a valid address")
		}
	}
	if in.Password != "" && len(in.Password) < minPasswordLen {
		c.Addf("password must be at least %d characters", minPasswordLen)
	}
	if in.PhoneNumber != "" && !phonePattern.MatchString(in.PhoneNumber) {
		c.Addf("phoneNumber is not a valid Nigerian phone number")
	}
	c.OneOf("role", string(in.Role), string(RoleTenant), string(RoleLandlord), string(RoleAgent))
	return c.Err()
}

// Service runs the account lifecycle: register, verify, resend and login.
type Service struct {
	users   *UserStore
	issuer  *Issuer
	mailer  OTPSender
	limiter Limiter
	now     func() time.Time
}

// NewService creates an account service.
func NewService(users *UserStore, issuer *Issuer, mailer OTPSender, limiter Limiter) *Service {
	if limiter == nil {
		limiter = NewMemoryLimiter(0, 0)
	}
	return &Service{
		users:   users,
		issuer:  issuer,
		mailer:  mailer,
		limiter: limiter,
		now:     time.Now,
	}
}

// Register creates an unverified account and emails it an OTP.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	if err := in.validate(); err != nil {
		return Profile{}, err
	}

	if _, err := s.users.ByEmail(ctx, in.Email); err == nil {
		return Profile{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return Profile{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return Profile{}, err
	}
	code, err := generateOTP()
	if err != nil {
		return Profile{}, err
	}

	now := s.now()
	u := &User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.PhoneNumber,
		Role:         in.Role,
		PasswordHash: hash,
		OTPHash:      hashOTP(code),
		OTPExpiresAt: now.Add(OTPLifetime).UnixNano(),
		CreatedAt:    now.UnixNano(),
		UpdatedAt:    now.UnixNano(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return Profile{}, err
	}

	s.sendOTP(ctx, u, code)
	return u.Profile(), nil
}

// VerifyOTP marks the account verified if code is its current OTP.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return &validate.Error{Errors: []string{"email and OTP are required"}}
	}

	key := "otp:" + email
	if err := s.checkLimit(ctx, key); err != nil {
		return err
	}

	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.Verified {
		return ErrAlreadyVerified
	}
	if u.OTPHash == "" {
		return ErrOTPNotSet
	}
	if !otpMatches(u.OTPHash, code) {
		s.recordFailure(ctx, key)
		return ErrInvalidOTP
	}
	if s.now().UnixNano() > u.OTPExpiresAt {
		return ErrOTPExpired
	}

	return s.users.MarkVerified(ctx, u.ID)
}

// ResendOTP replaces the account's OTP and emails the new one.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return &validate.Error{Errors: []string{"email is required"}}
	}

	key := "resend:" + email
	if err := s.checkLimit(ctx, key); err != nil {
		return err
	}
	// Every resend counts toward the limit, successful or not.
	s.recordFailure(ctx, key)

	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.Verified {
		return ErrAlreadyVerified
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.users.SetOTP(ctx, u.ID, hashOTP(code), s.now().Add(OTPLifetime)); err != nil {
		return err
	}

	s.sendOTP(ctx, u, code)
	return nil
}

// Login checks credentials and returns a bearer token for a verified account.
func (s *Service) Login(ctx context.Context, email, password string) (string, Profile, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", Profile{}, &validate.Error{Errors: []string{"email and password are required"}}
	}

	key := "login:" + email
	if err := s.checkLimit(ctx, key); err != nil {
		return "", Profile{}, err
	}

	u, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		s.recordFailure(ctx, key)
		return "", Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", Profile{}, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		s.recordFailure(ctx, key)
		return "", Profile{}, ErrInvalidCredentials
	}
	if !u.Verified {
		return "", Profile{}, ErrNotVerified
	}

	token, err := s.issuer.Issue(u.Principal())
	if err != nil {
		return "", Profile{}, err
	}
	if err := s.users.TouchLogin(ctx, u.ID, s.now()); err != nil {
		slog.Warn("recording login", "user_id", u.ID, "error", err)
	}
	return token, u.Profile(), nil
}

func (s *Service) checkLimit(ctx context.Context, key string) error {
	blocked, err := s.limiter.Blocked(ctx, key)
	if err != nil {
		// A broken limiter store must not lock everyone out.
		slog.Warn("checking rate limit", "key", key, "error", err)
		return nil
	}
	if blocked {
		return ErrRateLimited
	}
	return nil
}

func (s *Service) recordFailure(ctx context.Context, key string) {
	if _, err := s.limiter.RecordFailure(ctx, key); err != nil {
		slog.Warn("recording rate limit failure", "key", key, "error", err)
	}
}

// sendOTP emails code without failing the request that generated it.
func (s *Service) sendOTP(ctx context.Context, u *User, code string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.SendOTP(ctx, u.Email, u.Name, code); err != nil {
		slog.Warn("sending OTP", "user_id", u.ID, "error", fmt.Errorf("to %s: %w", u.Email, err))
	}
}
