package models

import "time"

// HostFeesStructure describes how a host charges a collective.
type HostFeesStructure string

const (
	HostFeesDefault   HostFeesStructure = "DEFAULT"
	HostFeesCustomFee HostFeesStructure = "CUSTOM_FEE"
)

// AccountWithHost is the read model of a collective together with its host terms.
type AccountWithHost struct {
	Collective        *Collective        `json:"collective"`
	Host              *Collective        `json:"host,omitempty"`
	HostFeePercent    *float64           `json:"host_fee_percent,omitempty"`
	HostFeesStructure *HostFeesStructure `json:"host_fees_structure"`
	ApprovedAt        *time.Time         `json:"approved_at,omitempty"`
	IsApproved        bool               `json:"is_approved"`
	IsActive          bool               `json:"is_active"`
}

// NewAccountWithHost builds the view. host must be the collective's host or nil.
func NewAccountWithHost(c *Collective, host *Collective) *AccountWithHost {
	view := &AccountWithHost{
		Collective:     c,
		Host:           host,
		HostFeePercent: c.HostFeePercent,
		ApprovedAt:     c.ApprovedAt,
		IsApproved:     c.IsApproved(),
		IsActive:       c.IsActive,
	}
	if c.HasHost() {
		structure := feesStructure(c, host)
		view.HostFeesStructure = &structure
	}
	return view
}

func feesStructure(c *Collective, host *Collective) HostFeesStructure {
	if c.HostFeePercent == nil {
		return HostFeesDefault
	}
	if host != nil && host.HostFeePercent != nil && *host.HostFeePercent == *c.HostFeePercent {
		return HostFeesDefault
	}
	return HostFeesCustomFee
}
