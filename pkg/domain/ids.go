// Package domain holds typed identifiers shared across bounded contexts.
//
// Each ID is a distinct named type over uuid.UUID so a CollectiveID can never
// be passed where a UserID is expected. Parse functions are the trust boundary:
// they reject empty, malformed, and nil UUIDs with CodeInvalidInput.
package domain

import (
	"github.com/google/uuid"

	dErrors "opencollective/pkg/domain-errors"
)

type (
	UserID             uuid.UUID
	SessionID          uuid.UUID
	CollectiveID       uuid.UUID
	MembershipID       uuid.UUID
	ConnectedAccountID uuid.UUID
	ActivityID         uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user_id", s)
	return UserID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID("session_id", s)
	return SessionID(u), err
}

func ParseCollectiveID(s string) (CollectiveID, error) {
	u, err := parseUUID("collective_id", s)
	return CollectiveID(u), err
}

func ParseMembershipID(s string) (MembershipID, error) {
	u, err := parseUUID("membership_id", s)
	return MembershipID(u), err
}

func ParseConnectedAccountID(s string) (ConnectedAccountID, error) {
	u, err := parseUUID("connected_account_id", s)
	return ConnectedAccountID(u), err
}

func ParseActivityID(s string) (ActivityID, error) {
	u, err := parseUUID("activity_id", s)
	return ActivityID(u), err
}

func (id UserID) String() string             { return uuid.UUID(id).String() }
func (id SessionID) String() string          { return uuid.UUID(id).String() }
func (id CollectiveID) String() string       { return uuid.UUID(id).String() }
func (id MembershipID) String() string       { return uuid.UUID(id).String() }
func (id ConnectedAccountID) String() string { return uuid.UUID(id).String() }
func (id ActivityID) String() string         { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool             { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id CollectiveID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id MembershipID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ConnectedAccountID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ActivityID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as plain UUID strings in JSON.
func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id CollectiveID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *CollectiveID) UnmarshalText(b []byte) error {
	parsed, err := ParseCollectiveID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
