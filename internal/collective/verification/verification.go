// Package verification defines the port used to prove that an actor
// administers a code-hosting account and that the account is popular enough
// to be hosted automatically.
package verification

//go:generate mockgen -source=verification.go -destination=mocks/mocks.go -package=mocks Verifier

import (
	"context"
	"errors"
	"fmt"
)

// Verifier checks a handle ("owner/repo" or "org") with the actor's token.
// Implementations own their timeout and retry policy.
type Verifier interface {
	CheckAdmin(ctx context.Context, handle, token string) error
	CheckPopularity(ctx context.Context, handle, token string) error
}

// ErrorCategory is the normalized failure taxonomy of a verifier.
type ErrorCategory string

const (
	// ErrorNotAdmin means the token's owner does not administer the handle.
	ErrorNotAdmin ErrorCategory = "not_admin"
	// ErrorThreshold means the handle is below the popularity threshold.
	ErrorThreshold ErrorCategory = "threshold"
	// ErrorAuthentication means the token was rejected.
	ErrorAuthentication ErrorCategory = "authentication"
	// ErrorNotFound means the handle does not exist or is not visible.
	ErrorNotFound ErrorCategory = "not_found"
	// ErrorTimeout means the service took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"
	// ErrorOutage means the service is unavailable or the circuit is open.
	ErrorOutage ErrorCategory = "outage"
	// ErrorBadData means the service returned a malformed response.
	ErrorBadData ErrorCategory = "bad_data"
)

// Error is a categorized verifier failure. Message is safe to show to users.
type Error struct {
	Category   ErrorCategory
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("verification [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("verification [%s]: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func NewError(category ErrorCategory, message string, underlying error) *Error {
	return &Error{Category: category, Message: message, Underlying: underlying}
}

// CategoryOf extracts the category of err, or "" for foreign errors.
func CategoryOf(err error) ErrorCategory {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Category
	}
	return ""
}

// UserMessage returns the message to surface to the caller for err.
func UserMessage(err error) string {
	var ve *Error
	if errors.As(err, &ve) && ve.Message != "" {
		return ve.Message
	}
	return err.Error()
}

// Messages shown to users, keyed by what the handle denotes.
func NotAdminMessage(isRepo bool) string {
	if isRepo {
		return "We could not verify that you're admin of the GitHub repository"
	}
	return "We could not verify that you're admin of the GitHub organization"
}

func ThresholdMessage(isRepo bool, minStars int) string {
	if isRepo {
		return fmt.Sprintf("The repository need to have at least %d stars to be accepted.", minStars)
	}
	return fmt.Sprintf("The organization need to have at least %d stars to be accepted.", minStars)
}
