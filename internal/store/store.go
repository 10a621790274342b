package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/recoupable/api-sub002/internal/models"
)

// Sentinel errors for common error conditions
var (
	ErrAPIKeyNotFound     = errors.New("api key not found")
	ErrAPIKeyExists       = errors.New("api key already exists")
	ErrArtistNotFound     = errors.New("artist not found")
	ErrArtistExists       = errors.New("artist already exists")
	ErrMembershipExists   = errors.New("membership already exists")
	ErrMembershipNotFound = errors.New("membership not found")
)

// CredentialStore defines the read contracts the authorization engine
// consumes, plus the management writes that produce those rows. The
// engine itself only reads; writes belong to account management.
type CredentialStore interface {
	// FindAPIKeyByHash resolves a key hash to its record.
	// Returns ErrAPIKeyNotFound if no key matches the hash.
	FindAPIKeyByHash(ctx context.Context, keyHash string) (*models.APIKey, error)

	// CreateAPIKey stores a new key record. Only the hash is persisted.
	// Returns ErrAPIKeyExists if the hash is already present.
	CreateAPIKey(ctx context.Context, key *models.APIKey) error

	// DeleteAPIKey revokes a key by hash.
	// Returns ErrAPIKeyNotFound if no key matches.
	DeleteAPIKey(ctx context.Context, keyHash string) error

	// TouchAPIKey updates the last_used_at timestamp for a key.
	// Best effort; callers may ignore the error.
	TouchAPIKey(ctx context.Context, keyHash string) error

	// HasMembers reports whether any membership row names accountID as
	// the organization side. This is the "is this an organization" check.
	HasMembers(ctx context.Context, accountID uuid.UUID) (bool, error)

	// OrganizationHasMember reports whether memberID belongs to orgID.
	// Existence check, not a full list.
	OrganizationHasMember(ctx context.Context, orgID, memberID uuid.UUID) (bool, error)

	// ListOrganizationMembers returns the member account ids of orgID.
	ListOrganizationMembers(ctx context.Context, orgID uuid.UUID) ([]uuid.UUID, error)

	// AddOrganizationMember adds memberID to orgID.
	// Returns ErrMembershipExists if the row already exists.
	AddOrganizationMember(ctx context.Context, orgID, memberID uuid.UUID) error

	// RemoveOrganizationMember removes memberID from orgID.
	// Returns ErrMembershipNotFound if no such row exists.
	RemoveOrganizationMember(ctx context.Context, orgID, memberID uuid.UUID) error
}

// ArtistStore defines storage operations for artists and the two
// relations that grant access to them: direct ownership and
// organization links.
type ArtistStore interface {
	// Get retrieves an artist by ID.
	// Returns ErrArtistNotFound if the artist doesn't exist.
	Get(ctx context.Context, artistID uuid.UUID) (*models.Artist, error)

	// Create creates a new artist.
	// Returns ErrArtistExists if the artist already exists.
	Create(ctx context.Context, artist *models.Artist) error

	// HasArtistOwner reports whether accountID directly owns artistID.
	HasArtistOwner(ctx context.Context, accountID, artistID uuid.UUID) (bool, error)

	// AddArtistOwner grants accountID direct ownership of artistID.
	AddArtistOwner(ctx context.Context, accountID, artistID uuid.UUID) error

	// ListArtistOrganizations returns the ids of every organization the
	// artist is linked to.
	ListArtistOrganizations(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error)

	// LinkArtistOrganization places artistID under orgID.
	LinkArtistOrganization(ctx context.Context, artistID, orgID uuid.UUID) error

	// BelongsToAnyOrganization reports whether accountID is a member of
	// at least one of the given organizations. A single match suffices.
	BelongsToAnyOrganization(ctx context.Context, accountID uuid.UUID, orgIDs []uuid.UUID) (bool, error)

	// ListByOwner returns all artists accountID directly owns.
	ListByOwner(ctx context.Context, accountID uuid.UUID) ([]*models.Artist, error)

	// ListByOwners returns all artists owned by any of the given
	// accounts, deduplicated. Used for organization-scoped listings.
	ListByOwners(ctx context.Context, accountIDs []uuid.UUID) ([]*models.Artist, error)

	// ListAll returns every artist. Admin-scope listings only.
	ListAll(ctx context.Context) ([]*models.Artist, error)
}
