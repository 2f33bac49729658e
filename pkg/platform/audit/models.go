package audit

import (
	"context"
	"time"

	id "opencollective/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with legal or accounting significance:
	// account creation and host attachment decisions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is an activity record emitted from domain logic. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        id.ActivityID
	Category  EventCategory
	Timestamp time.Time
	// Action is the activity type, e.g. "collective.created".
	Action string
	// UserID is the actor.
	UserID id.UserID
	// CollectiveID is the collective the activity is filed under; for
	// collective.created this is the host, and may be nil.
	CollectiveID *id.CollectiveID
	Subject      string
	RequestID    string
	// Data is the immutable snapshot attached to the activity.
	Data map[string]any
}

type AuditEvent string

const (
	EventCollectiveCreated  AuditEvent = "collective.created"
	EventCollectiveApproved AuditEvent = "collective.approved"
	EventUserCreated        AuditEvent = "user.created"
	EventHostApplied        AuditEvent = "collective.host_applied"
	EventVerificationFailed AuditEvent = "collective.verification_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventCollectiveCreated:  CategoryCompliance,
	EventCollectiveApproved: CategoryCompliance,
	EventUserCreated:        CategoryCompliance,

	EventVerificationFailed: CategorySecurity,

	EventHostApplied: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists activities.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
