package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/farmledger/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
	hasNumber       = regexp.MustCompile(`[0-9]`)
)

// Farmer is the authenticated identity that owns every ledger entity
type Farmer struct {
	shared.BaseAggregateRoot
	Username       string
	DisplayName    string
	PasswordHash   string
	IsActive       bool
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewFarmer registers an active farmer with a hashed password
func NewFarmer(username, password, displayName string) (*Farmer, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if len(displayName) > 200 {
		return nil, shared.NewValidationError("display_name", "display name cannot exceed 200 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError(shared.KindValidation, "PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Farmer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          strings.ToLower(strings.TrimSpace(username)),
		DisplayName:       displayName,
		PasswordHash:      hash,
		IsActive:          true,
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (f *Farmer) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(f.PasswordHash), []byte(password)) == nil
}

// IsLocked returns true while a lockout from failed logins is in force
func (f *Farmer) IsLocked(now time.Time) bool {
	return f.LockedUntil != nil && now.Before(*f.LockedUntil)
}

// CanLogin returns true if the farmer may authenticate at now
func (f *Farmer) CanLogin(now time.Time) bool {
	return f.IsActive && !f.IsLocked(now)
}

// RecordLoginSuccess records a successful login
func (f *Farmer) RecordLoginSuccess(now time.Time) {
	at := now.UTC()
	f.LastLoginAt = &at
	f.FailedAttempts = 0
	f.LockedUntil = nil
	f.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the farmer is now locked out.
func (f *Farmer) RecordLoginFailure(now time.Time, maxAttempts int, lockDuration time.Duration) bool {
	f.FailedAttempts++
	f.IncrementVersion()
	if maxAttempts > 0 && f.FailedAttempts >= maxAttempts {
		until := now.UTC().Add(lockDuration)
		f.LockedUntil = &until
		f.FailedAttempts = 0
		return true
	}
	return false
}

// Name returns display name if set, otherwise username
func (f *Farmer) Name() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Username
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewValidationError("username", "username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewValidationError("username", "username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewValidationError("username", "username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewValidationError("username", "username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("password", "password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt ignores everything past 72 bytes
		return shared.NewValidationError("password", "password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasNumber.MatchString(password) {
		return shared.NewValidationError("password", "password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
