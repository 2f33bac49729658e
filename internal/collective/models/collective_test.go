package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usermodels "opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
)

func newHost(t *testing.T, fee *float64) *Collective {
	t.Helper()
	h, err := NewCollective(id.CollectiveID(uuid.New()), "opensource", "Open Source Collective", TypeOrganization, nil, time.Now())
	require.NoError(t, err)
	h.IsHostAccount = true
	h.IsActive = true
	h.HostFeePercent = fee
	return h
}

func newCollective(t *testing.T) *Collective {
	t.Helper()
	uid := id.UserID(uuid.New())
	c, err := NewCollective(id.CollectiveID(uuid.New()), "acme-co", "Acme", TypeCollective, &uid, time.Now())
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }

func TestNewCollective_Invariants(t *testing.T) {
	now := time.Now()

	t.Run("rejects empty slug", func(t *testing.T) {
		_, err := NewCollective(id.CollectiveID(uuid.New()), "", "Acme", TypeCollective, nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCollective(id.CollectiveID(uuid.New()), "acme", "", TypeCollective, nil, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("starts inactive and unhosted", func(t *testing.T) {
		c := newCollective(t)
		assert.False(t, c.IsActive)
		assert.False(t, c.HasHost())
		assert.Nil(t, c.ApprovedAt)
		require.NoError(t, c.CheckInvariants())
	})
}

func TestAttachment(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("auto-approved attachment approves and activates", func(t *testing.T) {
		c := newCollective(t)
		host := newHost(t, ptr(10.0))
		require.NoError(t, c.CanAttachTo(host))

		c.ApplyAttachment(host, true, now)

		assert.Equal(t, host.ID, *c.HostCollectiveID)
		require.NotNil(t, c.ApprovedAt)
		assert.Equal(t, now, *c.ApprovedAt)
		assert.True(t, c.IsActive)
		assert.True(t, c.IsApproved())
		assert.Equal(t, 10.0, *c.HostFeePercent)
	})

	t.Run("pending attachment leaves approval empty", func(t *testing.T) {
		c := newCollective(t)
		host := newHost(t, nil)

		c.ApplyAttachment(host, false, now)

		assert.True(t, c.HasHost())
		assert.Nil(t, c.ApprovedAt)
		assert.False(t, c.IsActive)
		assert.False(t, c.IsApproved())
	})

	t.Run("rejects non-host accounts", func(t *testing.T) {
		c := newCollective(t)
		host := newHost(t, nil)
		host.IsHostAccount = false
		assert.True(t, dErrors.HasCode(c.CanAttachTo(host), dErrors.CodeInvariantViolation))
	})

	t.Run("rejects second host", func(t *testing.T) {
		c := newCollective(t)
		c.ApplyAttachment(newHost(t, nil), false, now)
		assert.Error(t, c.CanAttachTo(newHost(t, nil)))
	})

	t.Run("unhosted approval breaks invariants", func(t *testing.T) {
		c := newCollective(t)
		c.ApprovedAt = &now
		assert.Error(t, c.CheckInvariants())
	})
}

func TestMergeSettings(t *testing.T) {
	t.Run("defaults when caller sends nothing", func(t *testing.T) {
		s := MergeSettings(nil)
		assert.Equal(t, map[string]any{"conversations": true}, s["features"])
	})

	t.Run("caller keys win at top level", func(t *testing.T) {
		s := MergeSettings(map[string]any{
			"features": map[string]any{"conversations": false},
			"lang":     "fr",
		})
		assert.Equal(t, map[string]any{"conversations": false}, s["features"])
		assert.Equal(t, "fr", s["lang"])
	})

	t.Run("defaults are not shared between calls", func(t *testing.T) {
		a := MergeSettings(nil)
		a["githubOrg"] = "acme"
		b := MergeSettings(nil)
		_, ok := b["githubOrg"]
		assert.False(t, ok)
	})
}

func TestAccountWithHost(t *testing.T) {
	now := time.Now()

	t.Run("no host has no fee structure", func(t *testing.T) {
		view := NewAccountWithHost(newCollective(t), nil)
		assert.Nil(t, view.HostFeesStructure)
		assert.False(t, view.IsApproved)
	})

	t.Run("nil collective fee is default", func(t *testing.T) {
		c := newCollective(t)
		host := newHost(t, nil)
		c.ApplyAttachment(host, true, now)
		view := NewAccountWithHost(c, host)
		require.NotNil(t, view.HostFeesStructure)
		assert.Equal(t, HostFeesDefault, *view.HostFeesStructure)
		assert.True(t, view.IsApproved)
		assert.True(t, view.IsActive)
	})

	t.Run("fee equal to host is default", func(t *testing.T) {
		c := newCollective(t)
		host := newHost(t, ptr(5.0))
		c.ApplyAttachment(host, false, now)
		view := NewAccountWithHost(c, host)
		assert.Equal(t, HostFeesDefault, *view.HostFeesStructure)
	})

	t.Run("fee different from host is custom", func(t *testing.T) {
		c := newCollective(t)
		host := newHost(t, ptr(5.0))
		c.HostFeePercent = ptr(0.0)
		c.ApplyAttachment(host, false, now)
		view := NewAccountWithHost(c, host)
		assert.Equal(t, HostFeesCustomFee, *view.HostFeesStructure)
	})
}

func TestHostApplication(t *testing.T) {
	now := time.Now()
	c := newCollective(t)
	c.ApplyAttachment(newHost(t, nil), true, now)
	app := NewHostApplication(c, "please", now)
	assert.Equal(t, ApplicationApproved, app.Status)
	assert.Equal(t, "please", app.Message)

	pending := newCollective(t)
	pending.ApplyAttachment(newHost(t, nil), false, now)
	assert.Equal(t, ApplicationPending, NewHostApplication(pending, "", now).Status)
}

func TestCreateCollectiveRequest_Validate(t *testing.T) {
	valid := func() *CreateCollectiveRequest {
		return &CreateCollectiveRequest{Collective: CollectiveInput{Slug: " Acme-Co ", Name: " Acme "}}
	}

	t.Run("normalizes and accepts minimal request", func(t *testing.T) {
		r := valid()
		r.Collective.Tags = []string{" go ", "go", ""}
		r.Normalize()
		require.NoError(t, r.Validate())
		assert.Equal(t, "Acme-Co", r.Collective.Slug, "slug casing is left to the slug validator")
		assert.Equal(t, "Acme", r.Collective.Name)
		assert.Equal(t, []string{"go"}, r.Collective.Tags)
	})

	t.Run("requires slug and name", func(t *testing.T) {
		r := &CreateCollectiveRequest{}
		r.Normalize()
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))
	})

	t.Run("rejects malformed host id", func(t *testing.T) {
		r := valid()
		r.Host = &HostReference{ID: "nope"}
		r.Normalize()
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))
	})

	t.Run("validates submitted user", func(t *testing.T) {
		r := valid()
		r.User = &usermodels.Profile{Email: "bad"}
		r.Normalize()
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))
	})

	t.Run("nil request is a bad request", func(t *testing.T) {
		var r *CreateCollectiveRequest
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeBadRequest))
	})
}
