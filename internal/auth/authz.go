package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recoupable/api-sub002/internal/store"
)

// Authorizer answers whether an acting identity may operate on another
// account or artist. Every decision fails closed: lookup errors are
// indistinguishable from missing rows and always deny.
type Authorizer struct {
	adminOrgID uuid.UUID
	creds      store.CredentialStore
	artists    store.ArtistStore
}

// NewAuthorizer creates an authorizer. adminOrgID is the designated
// organization with universal cross-account access; it is configuration,
// not a database row.
func NewAuthorizer(adminOrgID uuid.UUID, creds store.CredentialStore, artists store.ArtistStore) *Authorizer {
	return &Authorizer{
		adminOrgID: adminOrgID,
		creds:      creds,
		artists:    artists,
	}
}

// AdminOrgID returns the configured admin organization id.
func (a *Authorizer) AdminOrgID() uuid.UUID {
	return a.adminOrgID
}

// CanAccess reports whether an organization may act on targetID.
// Personal identities (actingOrgID == uuid.Nil) are never authorized
// through this path; self access uses an equality check at the call
// site instead.
func (a *Authorizer) CanAccess(ctx context.Context, actingOrgID, targetID uuid.UUID) bool {
	if actingOrgID == uuid.Nil || targetID == uuid.Nil {
		return false
	}

	// Admin organization bypass. No datastore call on this branch.
	if actingOrgID == a.adminOrgID {
		return true
	}

	ok, err := a.creds.OrganizationHasMember(ctx, actingOrgID, targetID)
	if err != nil {
		log.Debug().Err(err).
			Str("org_id", actingOrgID.String()).
			Str("target_id", targetID.String()).
			Msg("Membership check failed, denying")
		return false
	}

	return ok
}

// CanAccessArtist reports whether accountID may operate on artistID.
// Two independent paths grant access: a direct owner row, or membership
// in any organization the artist is linked to. Ownership is checked
// first as a fast path only; it carries no precedence semantics.
func (a *Authorizer) CanAccessArtist(ctx context.Context, accountID, artistID uuid.UUID) bool {
	if accountID == uuid.Nil || artistID == uuid.Nil {
		return false
	}

	owned, err := a.artists.HasArtistOwner(ctx, accountID, artistID)
	if err != nil {
		// An erroring path never grants; the organization path may still.
		log.Debug().Err(err).Msg("Artist ownership check failed")
	} else if owned {
		return true
	}

	orgIDs, err := a.artists.ListArtistOrganizations(ctx, artistID)
	if err != nil {
		log.Debug().Err(err).Str("artist_id", artistID.String()).Msg("Artist organization lookup failed, denying")
		return false
	}
	if len(orgIDs) == 0 {
		return false
	}

	ok, err := a.artists.BelongsToAnyOrganization(ctx, accountID, orgIDs)
	if err != nil {
		log.Debug().Err(err).Str("account_id", accountID.String()).Msg("Shared organization check failed, denying")
		return false
	}

	return ok
}
