package models

import (
	"time"

	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
)

// Type distinguishes what kind of account a collective row represents.
type Type string

const (
	TypeCollective   Type = "COLLECTIVE"
	TypeUser         Type = "USER"
	TypeOrganization Type = "ORGANIZATION"
)

const (
	maxSlugLength = 255
	maxNameLength = 255
)

// Collective is the aggregate root for an organizational account. Hosts are
// collectives with IsHostAccount set; they are only referenced by this service.
//
// Invariants:
//   - Slug is non-empty, lowercase, and at most 255 characters
//   - Name is non-empty and at most 255 characters
//   - Without a host, ApprovedAt is nil and IsActive is false
//   - ApprovedAt is only set together with HostCollectiveID
type Collective struct {
	ID               id.CollectiveID  `json:"id"`
	Slug             string           `json:"slug"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Type             Type             `json:"type"`
	Tags             []string         `json:"tags"`
	Settings         Settings         `json:"settings"`
	Data             map[string]any   `json:"data,omitempty"`
	IsActive         bool             `json:"is_active"`
	IsHostAccount    bool             `json:"is_host_account"`
	HostFeePercent   *float64         `json:"host_fee_percent,omitempty"`
	HostCollectiveID *id.CollectiveID `json:"host_collective_id,omitempty"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty"`
	CreatedByUserID  *id.UserID       `json:"created_by_user_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewCollective builds an inactive, unhosted collective.
func NewCollective(collectiveID id.CollectiveID, slug, name string, typ Type, createdBy *id.UserID, now time.Time) (*Collective, error) {
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "collective slug cannot be empty")
	}
	if len(slug) > maxSlugLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "collective slug must be 255 characters or less")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "collective name cannot be empty")
	}
	if len(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "collective name must be 255 characters or less")
	}
	return &Collective{
		ID:              collectiveID,
		Slug:            slug,
		Name:            name,
		Type:            typ,
		Tags:            []string{},
		Settings:        Settings{},
		IsActive:        false,
		CreatedByUserID: createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// HasHost reports whether the collective is attached to a host.
func (c *Collective) HasHost() bool {
	return c.HostCollectiveID != nil && !c.HostCollectiveID.IsNil()
}

// IsApproved reports whether the host has approved the collective.
func (c *Collective) IsApproved() bool {
	return c.HasHost() && c.ApprovedAt != nil
}

// CanAttachTo checks that host can take this collective.
func (c *Collective) CanAttachTo(host *Collective) error {
	if host == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "host is required")
	}
	if !host.IsHostAccount {
		return dErrors.New(dErrors.CodeInvariantViolation, "host account is not activated as host")
	}
	if host.ID == c.ID {
		return dErrors.New(dErrors.CodeInvariantViolation, "collective cannot host itself")
	}
	if c.HasHost() {
		return dErrors.New(dErrors.CodeInvariantViolation, "collective already has a host")
	}
	return nil
}

// ApplyAttachment binds the collective to host. Auto-approved attachments are
// approved and activated at now; others stay pending and inactive.
// Call CanAttachTo first.
func (c *Collective) ApplyAttachment(host *Collective, autoApprove bool, now time.Time) {
	hostID := host.ID
	c.HostCollectiveID = &hostID
	if c.HostFeePercent == nil && host.HostFeePercent != nil {
		fee := *host.HostFeePercent
		c.HostFeePercent = &fee
	}
	if autoApprove {
		approvedAt := now
		c.ApprovedAt = &approvedAt
		c.IsActive = true
	} else {
		c.ApprovedAt = nil
		c.IsActive = false
	}
	c.UpdatedAt = now
}

// CheckInvariants validates the host/approval/activation coupling.
func (c *Collective) CheckInvariants() error {
	if !c.HasHost() {
		if c.ApprovedAt != nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "unhosted collective cannot be approved")
		}
		if c.IsActive && c.Type == TypeCollective {
			return dErrors.New(dErrors.CodeInvariantViolation, "unhosted collective cannot be active")
		}
	}
	return nil
}

// Info is the snapshot of a collective recorded in activity data.
type Info struct {
	ID               id.CollectiveID  `json:"id"`
	Slug             string           `json:"slug"`
	Name             string           `json:"name"`
	Type             Type             `json:"type"`
	Description      string           `json:"description,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	IsActive         bool             `json:"isActive"`
	IsHostAccount    bool             `json:"isHostAccount"`
	HostCollectiveID *id.CollectiveID `json:"HostCollectiveId,omitempty"`
	ApprovedAt       *time.Time       `json:"approvedAt,omitempty"`
}

// Info returns the activity snapshot of c. A nil collective yields nil.
func (c *Collective) Info() *Info {
	if c == nil {
		return nil
	}
	return &Info{
		ID:               c.ID,
		Slug:             c.Slug,
		Name:             c.Name,
		Type:             c.Type,
		Description:      c.Description,
		Tags:             append([]string(nil), c.Tags...),
		IsActive:         c.IsActive,
		IsHostAccount:    c.IsHostAccount,
		HostCollectiveID: c.HostCollectiveID,
		ApprovedAt:       c.ApprovedAt,
	}
}

// Clone returns a deep copy for stores that hand out values they also retain.
func (c *Collective) Clone() *Collective {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Tags = append([]string(nil), c.Tags...)
	cp.Settings = c.Settings.Clone()
	if c.Data != nil {
		cp.Data = make(map[string]any, len(c.Data))
		for k, v := range c.Data {
			cp.Data[k] = v
		}
	}
	if c.HostFeePercent != nil {
		fee := *c.HostFeePercent
		cp.HostFeePercent = &fee
	}
	if c.HostCollectiveID != nil {
		hostID := *c.HostCollectiveID
		cp.HostCollectiveID = &hostID
	}
	if c.ApprovedAt != nil {
		at := *c.ApprovedAt
		cp.ApprovedAt = &at
	}
	if c.CreatedByUserID != nil {
		uid := *c.CreatedByUserID
		cp.CreatedByUserID = &uid
	}
	return &cp
}
