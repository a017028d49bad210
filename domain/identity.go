// Package domain contains core concepts of the relay.
// This file defines the authenticated identity attached to a connection.
package domain

import "time"

// VerifiedToken is what the identity provider tells us about a bearer token.
type VerifiedToken struct {
	SubjectID      string
	OrganizationID string
	ExpiresAt      time.Time
}

// Identity is produced once at handshake and never changes for the life of the connection.
// OrganizationID is empty for personal accounts.
type Identity struct {
	SubjectID      string
	OrganizationID string
	TokenExpiry    time.Time
}

func NewIdentity(token VerifiedToken) Identity {
	return Identity{
		SubjectID:      token.SubjectID,
		OrganizationID: token.OrganizationID,
		TokenExpiry:    token.ExpiresAt,
	}
}

func (i Identity) HasOrganization() bool {
	return i.OrganizationID != ""
}

// Expired reports whether the token backing this identity has expired at now.
// A zero expiry never expires.
func (i Identity) Expired(now time.Time) bool {
	return !i.TokenExpiry.IsZero() && !now.Before(i.TokenExpiry)
}
