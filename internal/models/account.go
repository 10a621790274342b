package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey maps a hashed raw key to its owning account.
// Only the hash is ever stored; the raw key is shown once at issuance.
type APIKey struct {
	KeyHash    string    // hex-encoded HMAC-SHA256 of the raw key
	AccountID  uuid.UUID // UUIDv7, owning account
	Name       string    // Display name (e.g., "ci-pipeline")
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// OrganizationMember is a membership row. An account is an organization
// iff at least one row exists with it on the organization side; there
// is no stored type tag.
type OrganizationMember struct {
	OrganizationID uuid.UUID
	MemberID       uuid.UUID
	CreatedAt      time.Time
}

// ArtistOwner grants an account direct, permanent access to an artist,
// independent of any organization membership.
type ArtistOwner struct {
	AccountID uuid.UUID
	ArtistID  uuid.UUID
	CreatedAt time.Time
}

// ArtistOrganization places an artist under an organization's umbrella.
// Every member of the organization inherits access to the artist.
type ArtistOrganization struct {
	ArtistID       uuid.UUID
	OrganizationID uuid.UUID
	CreatedAt      time.Time
}
