package models

import (
	"time"
)

// AuditFields carries who created and last modified a row, and when.
// The actor is always passed in explicitly by the caller.
type AuditFields struct {
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	CreatedBy  string    `json:"createdBy" db:"created_by"`
	ModifiedAt time.Time `json:"modifiedAt" db:"modified_at"`
	ModifiedBy string    `json:"modifiedBy" db:"modified_by"`
}

// Stamp sets all audit fields for a newly created row.
func (a *AuditFields) Stamp(actor string, now time.Time) {
	a.CreatedAt = now
	a.CreatedBy = actor
	a.ModifiedAt = now
	a.ModifiedBy = actor
}

// Touch records a modification.
func (a *AuditFields) Touch(actor string, now time.Time) {
	a.ModifiedAt = now
	a.ModifiedBy = actor
}

// UserAccount represents a registered user. UserID is the login name.
type UserAccount struct {
	UserID       string `json:"userId" db:"user_id"`
	UserPassword string `json:"-" db:"user_password"`
	Email        string `json:"email" db:"email"`
	Nickname     string `json:"nickname" db:"nickname"`
	Memo         string `json:"memo" db:"memo"`
	AuditFields
}

// NewUserAccount builds an account whose audit actor is the account itself.
func NewUserAccount(userID, passwordHash, email, nickname, memo string) *UserAccount {
	u := &UserAccount{
		UserID:       userID,
		UserPassword: passwordHash,
		Email:        email,
		Nickname:     nickname,
		Memo:         memo,
	}
	u.Stamp(userID, time.Now())
	return u
}

// UserAccountDto is the presentation shape of a user account
type UserAccountDto struct {
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname"`
	Memo     string `json:"memo"`
	AuditFields
}

// UserAccountDtoFrom converts an account, tolerating a nil reference.
func UserAccountDtoFrom(u *UserAccount) UserAccountDto {
	if u == nil {
		return UserAccountDto{}
	}
	return UserAccountDto{
		UserID:      u.UserID,
		Email:       u.Email,
		Nickname:    u.Nickname,
		Memo:        u.Memo,
		AuditFields: u.AuditFields,
	}
}

// WithoutEmail returns a copy safe to hand to other users
func (d UserAccountDto) WithoutEmail() UserAccountDto {
	d.Email = ""
	return d
}

// DisplayName returns the nickname, or the login name when no nickname is set.
func (d UserAccountDto) DisplayName() string {
	if d.Nickname == "" {
		return d.UserID
	}
	return d.Nickname
}

// UserCSV represents a user row in a CSV export
type UserCSV struct {
	UserID    string `csv:"user_id"`
	Nickname  string `csv:"nickname"`
	Memo      string `csv:"memo"`
	CreatedAt string `csv:"created_at"`
}

// SignupRequest carries a local account registration
type SignupRequest struct {
	UserID   string `json:"userId" validate:"required,userid"`
	Password string `json:"password" validate:"required,min=4,max=72"`
	Email    string `json:"email" validate:"omitempty,email_addr,max=100"`
	Nickname string `json:"nickname" validate:"omitempty,max=100"`
	Memo     string `json:"memo" validate:"omitempty,max=255"`
}

// LoginRequest carries local credentials
type LoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by every successful login
type TokenResponse struct {
	AccessToken string         `json:"accessToken"`
	TokenType   string         `json:"tokenType"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	User        UserAccountDto `json:"user"`
}
