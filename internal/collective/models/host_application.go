package models

import (
	"time"

	"github.com/google/uuid"

	id "opencollective/pkg/domain"
)

// ApplicationStatus is the review state of a host attachment.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
)

// HostApplication records the act of attaching a collective to a host,
// with the approval decision and the optional message for reviewers.
type HostApplication struct {
	ID           uuid.UUID         `json:"id"`
	CollectiveID id.CollectiveID   `json:"collective_id"`
	HostID       id.CollectiveID   `json:"host_collective_id"`
	Status       ApplicationStatus `json:"status"`
	Message      string            `json:"message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// NewHostApplication derives the application record from an applied attachment.
func NewHostApplication(c *Collective, message string, now time.Time) *HostApplication {
	status := ApplicationPending
	if c.IsApproved() {
		status = ApplicationApproved
	}
	return &HostApplication{
		ID:           uuid.New(),
		CollectiveID: c.ID,
		HostID:       *c.HostCollectiveID,
		Status:       status,
		Message:      message,
		CreatedAt:    now,
	}
}
