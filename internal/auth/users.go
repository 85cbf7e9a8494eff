package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// User is a registered account.
type User struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Phone        string `db:"phone"`
	Role         Role   `db:"role"`
	PasswordHash string `db:"password_hash"`
	Verified     bool   `db:"is_verified"`
	OTPHash      string `db:"otp_hash"`
	OTPExpiresAt int64  `db:"otp_expires_at"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
	LastLoginAt  int64  `db:"last_login_at"`
}

// Profile is the public view of a user.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        Role   `json:"role"`
}

// Profile returns the fields of u that may be shown to clients.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, PhoneNumber: u.Phone, Role: u.Role}
}

// Principal returns the identity u acts as.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role}
}

// UserStore manages accounts in SQLite.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a user store.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: sqlx.NewDb(db, "sqlite3")}
}

const insertUserSQL = `INSERT INTO users
	(id, name, email, phone, role, password_hash, is_verified, otp_hash, otp_expires_at, created_at, updated_at)
	VALUES
	(:id, :name, :email, :phone, :role, :password_hash, :is_verified, :otp_hash, :otp_expires_at, :created_at, :updated_at)`

// Create inserts u. Emails are stored lowercased.
func (s *UserStore) Create(ctx context.Context, u *User) error {
	u.Email = normalizeEmail(u.Email)
	if _, err := s.db.NamedExecContext(ctx, insertUserSQL, u); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrEmailTaken
		}
		return fmt.Errorf("adding user: %w", err)
	}
	return nil
}

// ByEmail looks a user up by email, ignoring case.
func (s *UserStore) ByEmail(ctx context.Context, email string) (*User, error) {
	return s.get(ctx, "SELECT * FROM users WHERE email = ?", normalizeEmail(email))
}

// ByID looks a user up by ID.
func (s *UserStore) ByID(ctx context.Context, id string) (*User, error) {
	return s.get(ctx, "SELECT * FROM users WHERE id = ?", id)
}

func (s *UserStore) get(ctx context.Context, query string, arg string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// SetOTP replaces the pending OTP of user id.
func (s *UserStore) SetOTP(ctx context.Context, id, hash string, expiresAt time.Time) error {
	return s.exec(ctx, "setting OTP",
		"UPDATE users SET otp_hash = ?, otp_expires_at = ?, updated_at = ? WHERE id = ?",
		hash, expiresAt.UnixNano(), time.Now().UnixNano(), id)
}

// MarkVerified flags user id as verified and clears its OTP.
func (s *UserStore) MarkVerified(ctx context.Context, id string) error {
	return s.exec(ctx, "verifying user",
		"UPDATE users SET is_verified = 1, otp_hash = '', otp_expires_at = 0, updated_at = ? WHERE id = ?",
		time.Now().UnixNano(), id)
}

// TouchLogin records a successful login.
func (s *UserStore) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return s.exec(ctx, "recording login",
		"UPDATE users SET last_login_at = ? WHERE id = ?", at.UnixNano(), id)
}

func (s *UserStore) exec(ctx context.Context, what, query string, args ...interface{}) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
