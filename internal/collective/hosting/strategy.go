// Package hosting decides whether, and under which host, a new collective is
// placed.
package hosting

import (
	"strings"

	"opencollective/internal/collective/models"
)

// Strategy is a closed sum type: Automated, Explicit, or None. It is chosen
// once from the request shape by Select.
type Strategy interface {
	strategy()
	Name() string
}

// Automated binds to the open source host after proving, with the actor's
// connected GitHub account, that the actor administers a popular handle.
type Automated struct {
	Handle string
}

// Explicit binds to a host named by the caller. Approve asks for immediate
// approval, which is granted only to admins of that host.
type Explicit struct {
	Ref     models.HostReference
	Approve bool
}

// None creates the collective without a host.
type None struct{}

func (Automated) strategy() {}
func (Explicit) strategy()  {}
func (None) strategy()      {}

func (Automated) Name() string { return "automated" }
func (Explicit) Name() string  { return "explicit" }
func (None) Name() string      { return "none" }

// IsRepo reports whether the handle denotes a repository ("owner/repo")
// rather than an organization.
func (a Automated) IsRepo() bool {
	return strings.Contains(a.Handle, "/")
}

// Select picks the strategy for a normalized request. Automated wins over an
// explicit host reference when both are present.
func Select(req *models.CreateCollectiveRequest) Strategy {
	if req.AutomateApprovalWithGithub && req.Collective.GithubHandle != "" {
		return Automated{Handle: req.Collective.GithubHandle}
	}
	if !req.Host.IsEmpty() {
		return Explicit{Ref: *req.Host, Approve: req.ApproveHost}
	}
	return None{}
}
