package models

import (
	"time"

	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
	"opencollective/pkg/email"
)

// User is an identity that acts on collectives. Every user owns a personal
// collective (CollectiveID) that represents it in memberships and activities.
type User struct {
	ID           id.UserID       `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	CollectiveID id.CollectiveID `json:"collective_id"`
	// EmailConfirmationTokenHash is set for users created on someone's behalf.
	EmailConfirmationTokenHash string    `json:"-"`
	CreatedAt                  time.Time `json:"created_at"`
}

// Profile is the submitted data used to synthesize a user when no session exists.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Normalize lowercases the email and fills a display name when missing.
func (p *Profile) Normalize() {
	p.Email = email.Normalize(p.Email)
	if p.Name == "" {
		p.Name = email.DeriveNameFromEmail(p.Email)
	}
}

// Validate checks the profile can back a new user.
func (p *Profile) Validate() error {
	if p.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "user.email is required")
	}
	if !email.IsValid(p.Email) {
		return dErrors.New(dErrors.CodeValidation, "user.email is invalid")
	}
	if len(p.Name) > 255 {
		return dErrors.New(dErrors.CodeValidation, "user.name must be 255 characters or less")
	}
	return nil
}

// NewUser builds a user bound to its personal collective.
func NewUser(userID id.UserID, profile Profile, collectiveID id.CollectiveID, now time.Time) (*User, error) {
	if profile.Email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user email cannot be empty")
	}
	if collectiveID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user must own a collective")
	}
	return &User{
		ID:           userID,
		Email:        email.Normalize(profile.Email),
		Name:         profile.Name,
		CollectiveID: collectiveID,
		CreatedAt:    now,
	}, nil
}
