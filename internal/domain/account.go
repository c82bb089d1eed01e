package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Account is a login identity. An account without a name is the primary
// account for its email; named accounts are sub-accounts of that primary.
type Account struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primary_key" db:"id"`
	Email           string     `json:"email" gorm:"not null;uniqueIndex:idx_accounts_email_name_key" db:"email"`
	PasswordHash    string     `json:"-" gorm:"not null" db:"password_hash"`
	AccountName     *string    `json:"accountName" db:"account_name"`
	NameKey         string     `json:"-" gorm:"not null;default:'';uniqueIndex:idx_accounts_email_name_key" db:"name_key"`
	ParentAccountID *uuid.UUID `json:"parentAccount,omitempty" gorm:"type:uuid" db:"parent_account_id"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsPrimary reports whether a is the root account for its email.
func (a *Account) IsPrimary() bool {
	return a.AccountName == nil
}

// SetAccountName sets the name and keeps NameKey in step with it.
func (a *Account) SetAccountName(name *string) {
	a.AccountName = name
	a.NameKey = NameKey(name)
}

// NameKey is the case-insensitive uniqueness key of an account name within
// an email. The primary account uses the empty key.
func NameKey(name *string) string {
	if name == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*name))
}

// Identity is the caller as established by a verified bearer token.
type Identity struct {
	AccountID   uuid.UUID
	Email       string
	AccountName *string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an already normalized email.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "Email is required")
	}
	if !emailPattern.MatchString(email) {
		return NewValidationError("email", "Please enter a valid email address")
	}
	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return NewValidationError("password", "Password is required")
	}
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "Password must be at least 6 characters")
	}
	return nil
}

// NormalizeAccountName trims name and maps a blank name to nil.
func NormalizeAccountName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
