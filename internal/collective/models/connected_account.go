package models

import (
	"time"

	id "opencollective/pkg/domain"
)

// ServiceGitHub is the connected-account kind used for automated host approval.
const ServiceGitHub = "github"

// ConnectedAccount is a third-party credential bound to a collective.
type ConnectedAccount struct {
	ID           id.ConnectedAccountID
	CollectiveID id.CollectiveID
	Service      string
	Username     string
	Token        string
	CreatedAt    time.Time
}
