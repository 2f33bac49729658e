package models

import (
	"time"

	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
)

// Role is the capacity in which a member collective belongs to a collective.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleHost   Role = "HOST"
)

// Membership grants a user (through its personal collective) a role on a collective.
type Membership struct {
	ID                 id.MembershipID `json:"id"`
	CollectiveID       id.CollectiveID `json:"collective_id"`
	MemberCollectiveID id.CollectiveID `json:"member_collective_id"`
	UserID             id.UserID       `json:"user_id"`
	Role               Role            `json:"role"`
	CreatedByUserID    id.UserID       `json:"created_by_user_id"`
	CreatedAt          time.Time       `json:"created_at"`
}

// NewMembership validates and builds a role grant.
func NewMembership(membershipID id.MembershipID, collectiveID id.CollectiveID, userID id.UserID,
	memberCollectiveID id.CollectiveID, role Role, grantedBy id.UserID, now time.Time) (*Membership, error) {
	if collectiveID.IsNil() || memberCollectiveID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "membership requires both collectives")
	}
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "membership requires a user")
	}
	switch role {
	case RoleAdmin, RoleMember, RoleHost:
	default:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown membership role")
	}
	return &Membership{
		ID:                 membershipID,
		CollectiveID:       collectiveID,
		MemberCollectiveID: memberCollectiveID,
		UserID:             userID,
		Role:               role,
		CreatedByUserID:    grantedBy,
		CreatedAt:          now,
	}, nil
}
