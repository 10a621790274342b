package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recoupable/api-sub002/internal/store"
)

// Resolver turns raw credentials into acting identities. A bearer-style
// credential may be either an identity-provider token or a raw API key;
// the resolver tries the token path first, then the key path. Order is
// a disambiguation policy, not an optimization - a string valid as both
// must resolve as a token.
type Resolver struct {
	verifier   TokenVerifier
	creds      store.CredentialStore
	hashSecret string
}

// NewResolver creates a resolver over the given verifier and store.
// hashSecret is the process-wide API key hashing secret.
func NewResolver(verifier TokenVerifier, creds store.CredentialStore, hashSecret string) *Resolver {
	return &Resolver{
		verifier:   verifier,
		creds:      creds,
		hashSecret: hashSecret,
	}
}

// HashKey computes the lookup hash for a raw key using the resolver's
// configured secret.
func (r *Resolver) HashKey(rawKey string) string {
	return HashAPIKey(r.hashSecret, rawKey)
}

// ResolveBearer resolves a credential of unknown kind. Token
// verification failures of any sort, including malformed tokens, fall
// through to the API-key path. Returns ErrUnresolved when both fail.
func (r *Resolver) ResolveBearer(ctx context.Context, credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrUnresolved
	}

	if accountID, err := r.verifier.Verify(credential); err == nil {
		// Provider-issued tokens are always personal user tokens.
		return Identity{AccountID: accountID}, nil
	} else {
		log.Debug().Err(err).Msg("Bearer credential is not a valid token, trying API key")
	}

	return r.ResolveAPIKey(ctx, credential)
}

// ResolveAPIKey resolves a credential known to be a raw API key.
// Lookup errors and missing keys both yield ErrUnresolved.
func (r *Resolver) ResolveAPIKey(ctx context.Context, rawKey string) (Identity, error) {
	if rawKey == "" {
		return Identity{}, ErrUnresolved
	}

	keyHash := HashAPIKey(r.hashSecret, rawKey)

	key, err := r.creds.FindAPIKeyByHash(ctx, keyHash)
	if err != nil {
		// Not-found and lookup errors collapse into the same outcome.
		log.Debug().Err(err).Msg("API key lookup failed")
		return Identity{}, ErrUnresolved
	}

	if key.AccountID == uuid.Nil {
		return Identity{}, ErrUnresolved
	}

	identity := Identity{AccountID: key.AccountID}
	if r.isOrganization(ctx, key.AccountID) {
		identity.OrgID = key.AccountID
	}

	if err := r.creds.TouchAPIKey(ctx, keyHash); err != nil {
		log.Debug().Err(err).Msg("Failed to update API key last used timestamp")
	}

	return identity, nil
}

// isOrganization classifies an account by its membership rows. A
// classification error yields the more restrictive answer.
func (r *Resolver) isOrganization(ctx context.Context, accountID uuid.UUID) bool {
	hasMembers, err := r.creds.HasMembers(ctx, accountID)
	if err != nil {
		log.Debug().Err(err).Str("account_id", accountID.String()).Msg("Organization classification failed, treating as personal")
		return false
	}
	return hasMembers
}
