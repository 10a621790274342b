package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBuildScope(t *testing.T) {
	ctx := context.Background()
	adminOrgID := uuid.New()

	t.Run("personal identity without override scopes to self", func(t *testing.T) {
		accountID := uuid.New()
		authorizer := NewAuthorizer(adminOrgID, newStubCredentialStore(), newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: accountID}, uuid.Nil)
		require.NoError(t, err)
		require.Equal(t, &Scope{Kind: ScopeAccount, AccountID: accountID}, scope)
	})

	t.Run("personal identity cannot override", func(t *testing.T) {
		accountID := uuid.New()
		authorizer := NewAuthorizer(adminOrgID, newStubCredentialStore(), newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: accountID}, uuid.New())
		require.ErrorIs(t, err, ErrPersonalKeyOverride)
		require.Nil(t, scope)
	})

	t.Run("personal identity cannot override even to itself", func(t *testing.T) {
		accountID := uuid.New()
		authorizer := NewAuthorizer(adminOrgID, newStubCredentialStore(), newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: accountID}, accountID)
		require.ErrorIs(t, err, ErrPersonalKeyOverride)
		require.Nil(t, scope)
	})

	t.Run("organization without override scopes to members", func(t *testing.T) {
		orgID := uuid.New()
		authorizer := NewAuthorizer(adminOrgID, newStubCredentialStore(), newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: orgID, OrgID: orgID}, uuid.Nil)
		require.NoError(t, err)
		require.Equal(t, &Scope{Kind: ScopeOrganization, OrgID: orgID}, scope)
	})

	t.Run("organization override to a member", func(t *testing.T) {
		orgID := uuid.New()
		memberID := uuid.New()
		creds := newStubCredentialStore()
		creds.addMember(orgID, memberID)
		authorizer := NewAuthorizer(adminOrgID, creds, newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: orgID, OrgID: orgID}, memberID)
		require.NoError(t, err)
		require.Equal(t, &Scope{Kind: ScopeAccount, AccountID: memberID}, scope)
	})

	t.Run("organization override to a non-member", func(t *testing.T) {
		orgID := uuid.New()
		creds := newStubCredentialStore()
		creds.addMember(orgID, uuid.New())
		authorizer := NewAuthorizer(adminOrgID, creds, newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: orgID, OrgID: orgID}, uuid.New())
		require.ErrorIs(t, err, ErrNotOrganizationMember)
		require.Nil(t, scope)
	})

	t.Run("membership lookup error denies override", func(t *testing.T) {
		orgID := uuid.New()
		memberID := uuid.New()
		creds := newStubCredentialStore()
		creds.addMember(orgID, memberID)
		creds.hasMemberErr = errors.New("connection refused")
		authorizer := NewAuthorizer(adminOrgID, creds, newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: orgID, OrgID: orgID}, memberID)
		require.ErrorIs(t, err, ErrNotOrganizationMember)
		require.Nil(t, scope)
	})

	t.Run("admin organization without override sees everything", func(t *testing.T) {
		authorizer := NewAuthorizer(adminOrgID, newStubCredentialStore(), newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: adminOrgID, OrgID: adminOrgID}, uuid.Nil)
		require.NoError(t, err)
		require.Equal(t, &Scope{Kind: ScopeAll}, scope)
	})

	t.Run("admin organization override to any account", func(t *testing.T) {
		targetID := uuid.New()
		creds := newStubCredentialStore()
		creds.hasMemberErr = errors.New("store must not be consulted")
		authorizer := NewAuthorizer(adminOrgID, creds, newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: adminOrgID, OrgID: adminOrgID}, targetID)
		require.NoError(t, err)
		require.Equal(t, &Scope{Kind: ScopeAccount, AccountID: targetID}, scope)
	})

	t.Run("personal account matching admin id is not admin", func(t *testing.T) {
		// Same account id as the admin org, but resolved as a personal
		// identity. The bypass keys off OrgID, not AccountID.
		authorizer := NewAuthorizer(adminOrgID, newStubCredentialStore(), newStubArtistStore())

		scope, err := authorizer.BuildScope(ctx, Identity{AccountID: adminOrgID}, uuid.Nil)
		require.NoError(t, err)
		require.Equal(t, &Scope{Kind: ScopeAccount, AccountID: adminOrgID}, scope)
	})
}
