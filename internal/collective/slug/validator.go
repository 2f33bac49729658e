// Package slug validates collective identifiers before creation.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"opencollective/internal/collective/models"
	dErrors "opencollective/pkg/domain-errors"
	"opencollective/pkg/platform/sentinel"
)

// Reason names why a candidate slug was refused.
type Reason string

const (
	ReasonMalformed Reason = "malformed"
	ReasonReserved  Reason = "reserved"
	ReasonTaken     Reason = "taken"
)

// shape is lowercase alphanumerics separated by single or repeated hyphens,
// never leading or trailing.
var shape = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)

// RejectionError is returned when a slug cannot be used. It unwraps to the
// coded domain error carrying the same message.
type RejectionError struct {
	Slug   string
	Reason Reason
	coded  error
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonMalformed:
		return fmt.Sprintf("The slug '%s' may only contain lowercase letters, numbers and hyphens.", e.Slug)
	case ReasonReserved:
		return fmt.Sprintf("The slug '%s' is not allowed.", e.Slug)
	default:
		return fmt.Sprintf("The slug %s is already taken. Please use another slug for your collective.", e.Slug)
	}
}

func (e *RejectionError) Unwrap() error {
	return e.coded
}

// Finder is the read-only lookup the validator needs.
type Finder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Collective, error)
}

// Validator checks candidate slugs against the reserved list and existing collectives.
type Validator struct {
	finder Finder
}

func NewValidator(finder Finder) *Validator {
	return &Validator{finder: finder}
}

// Validate returns the normalized slug, or a *RejectionError coded
// CodeValidation. The availability check is advisory: storage uniqueness is
// authoritative.
func (v *Validator) Validate(ctx context.Context, candidate string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(candidate))
	if !shape.MatchString(normalized) {
		return "", reject(normalized, ReasonMalformed, dErrors.CodeValidation)
	}
	if IsReserved(normalized) {
		return "", reject(normalized, ReasonReserved, dErrors.CodeValidation)
	}

	_, err := v.finder.FindBySlug(ctx, normalized)
	switch {
	case err == nil:
		return "", reject(normalized, ReasonTaken, dErrors.CodeValidation)
	case errors.Is(err, sentinel.ErrNotFound):
		return normalized, nil
	default:
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check slug availability")
	}
}

// TakenConflict is the error for a slug lost to a concurrent creation. It
// carries the same message as a pre-flight "taken" rejection.
func TakenConflict(normalized string) error {
	return reject(normalized, ReasonTaken, dErrors.CodeConflict)
}

// RejectionReason extracts the rejection reason from err, if any.
func RejectionReason(err error) (Reason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

func reject(normalized string, reason Reason, code dErrors.Code) error {
	rej := &RejectionError{Slug: normalized, Reason: reason}
	rej.coded = dErrors.New(code, rej.Error())
	return rej
}
