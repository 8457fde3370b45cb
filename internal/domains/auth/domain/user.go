package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var (
	ErrEmptyName     = errors.New("name is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrEmptyPassword = errors.New("password is required")
	ErrWeakPassword  = errors.New("password must be at least 8 characters")
	ErrInvalidRole   = errors.New("role must be admin or staff")
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User is an account allowed to call the API.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         Role
	PasswordHash []byte
	Active       bool
	CreatedAt    time.Time
}

// NewUser validates the profile and hashes the password.
func NewUser(email, name string, role Role, password string) (*User, error) {
	u := &User{
		ID:     uuid.New(),
		Email:  NormalizeEmail(email),
		Name:   strings.TrimSpace(name),
		Role:   role,
		Active: true,
	}
	if u.Role == "" {
		u.Role = RoleStaff
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrEmptyName
	}
	if u.Role != RoleAdmin && u.Role != RoleStaff {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword stores a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword compares password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	if len(u.PasswordHash) == 0 || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}
