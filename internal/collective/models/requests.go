package models

import (
	"strings"

	usermodels "opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
	pstrings "opencollective/pkg/platform/strings"
)

// CollectiveInput is the caller-supplied description of the collective to create.
type CollectiveInput struct {
	Slug         string         `json:"slug"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Tags         []string       `json:"tags"`
	Data         map[string]any `json:"data"`
	Settings     map[string]any `json:"settings"`
	GithubHandle string         `json:"githubHandle"`
}

// HostReference points at an existing host by id or slug.
type HostReference struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

// IsEmpty reports whether the reference names nothing.
func (r *HostReference) IsEmpty() bool {
	return r == nil || (r.ID == "" && r.Slug == "")
}

// CreateCollectiveRequest is the full input of the onboarding workflow.
type CreateCollectiveRequest struct {
	Collective                 CollectiveInput     `json:"collective"`
	Host                       *HostReference      `json:"host,omitempty"`
	User                       *usermodels.Profile `json:"user,omitempty"`
	AutomateApprovalWithGithub bool                `json:"automateApprovalWithGithub"`
	// ApproveHost asks for immediate approval on an explicit host; honoured only
	// when the actor administers that host.
	ApproveHost bool   `json:"approveHost"`
	Message     string `json:"message,omitempty"`
}

// Normalize trims free-text input. Slug lowercasing is owned by the slug validator.
func (r *CreateCollectiveRequest) Normalize() {
	r.Collective.Slug = strings.TrimSpace(r.Collective.Slug)
	r.Collective.Name = strings.TrimSpace(r.Collective.Name)
	r.Collective.Description = strings.TrimSpace(r.Collective.Description)
	r.Collective.GithubHandle = strings.TrimSpace(r.Collective.GithubHandle)
	r.Collective.Tags = pstrings.DedupeAndTrim(r.Collective.Tags)
	r.Message = strings.TrimSpace(r.Message)
	if r.Host != nil {
		r.Host.ID = strings.TrimSpace(r.Host.ID)
		r.Host.Slug = strings.ToLower(strings.TrimSpace(r.Host.Slug))
	}
	if r.User != nil {
		r.User.Normalize()
	}
}

// Validate checks request shape. Business rules (reserved slugs, host
// capability) are enforced by the workflow itself.
func (r *CreateCollectiveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Collective.Slug == "" {
		return dErrors.New(dErrors.CodeValidation, "collective.slug is required")
	}
	if r.Collective.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "collective.name is required")
	}
	if len(r.Collective.Description) > 5000 {
		return dErrors.New(dErrors.CodeValidation, "collective.description must be 5000 characters or less")
	}
	if len(r.Collective.Tags) > 50 {
		return dErrors.New(dErrors.CodeValidation, "collective.tags must contain at most 50 entries")
	}
	if len(r.Message) > 3000 {
		return dErrors.New(dErrors.CodeValidation, "message must be 3000 characters or less")
	}
	if r.Host != nil && r.Host.ID != "" {
		if _, err := id.ParseCollectiveID(r.Host.ID); err != nil {
			return dErrors.New(dErrors.CodeValidation, "host.id is invalid")
		}
	}
	if r.User != nil {
		if err := r.User.Validate(); err != nil {
			return err
		}
	}
	return nil
}
