//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/recoupable/api-sub002/internal/models"
	"github.com/recoupable/api-sub002/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*CredentialStore, *ArtistStore, func()) {
	// Start postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	err = RunMigrations(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return NewCredentialStore(pool), NewArtistStore(pool), cleanup
}

func TestIntegration_CredentialStore(t *testing.T) {
	ctx := context.Background()
	creds, _, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	accountID := uuid.New()
	orgID := uuid.New()

	t.Run("api key lifecycle", func(t *testing.T) {
		key := &models.APIKey{
			KeyHash:   "integration-hash-1",
			AccountID: accountID,
			Name:      "integration key",
			CreatedAt: time.Now(),
		}
		require.NoError(t, creds.CreateAPIKey(ctx, key))
		require.ErrorIs(t, creds.CreateAPIKey(ctx, key), store.ErrAPIKeyExists)

		found, err := creds.FindAPIKeyByHash(ctx, key.KeyHash)
		require.NoError(t, err)
		require.Equal(t, accountID, found.AccountID)
		require.Nil(t, found.LastUsedAt)

		require.NoError(t, creds.TouchAPIKey(ctx, key.KeyHash))
		found, err = creds.FindAPIKeyByHash(ctx, key.KeyHash)
		require.NoError(t, err)
		require.NotNil(t, found.LastUsedAt)

		require.NoError(t, creds.DeleteAPIKey(ctx, key.KeyHash))
		_, err = creds.FindAPIKeyByHash(ctx, key.KeyHash)
		require.ErrorIs(t, err, store.ErrAPIKeyNotFound)
	})

	t.Run("membership lifecycle", func(t *testing.T) {
		memberID := uuid.New()
		require.NoError(t, creds.AddOrganizationMember(ctx, orgID, memberID))
		require.ErrorIs(t, creds.AddOrganizationMember(ctx, orgID, memberID), store.ErrMembershipExists)

		ok, err := creds.OrganizationHasMember(ctx, orgID, memberID)
		require.NoError(t, err)
		require.True(t, ok)

		hasMembers, err := creds.HasMembers(ctx, orgID)
		require.NoError(t, err)
		require.True(t, hasMembers)

		hasMembers, err = creds.HasMembers(ctx, memberID)
		require.NoError(t, err)
		require.False(t, hasMembers)

		members, err := creds.ListOrganizationMembers(ctx, orgID)
		require.NoError(t, err)
		require.Contains(t, members, memberID)

		require.NoError(t, creds.RemoveOrganizationMember(ctx, orgID, memberID))
		require.ErrorIs(t, creds.RemoveOrganizationMember(ctx, orgID, memberID), store.ErrMembershipNotFound)
	})
}

func TestIntegration_ArtistStore(t *testing.T) {
	ctx := context.Background()
	creds, artists, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	ownerID := uuid.New()
	orgID := uuid.New()

	artist := &models.Artist{
		ArtistID:  uuid.New(),
		Name:      "Integration Artist",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	t.Run("create and get", func(t *testing.T) {
		require.NoError(t, artists.Create(ctx, artist))
		require.ErrorIs(t, artists.Create(ctx, artist), store.ErrArtistExists)

		found, err := artists.Get(ctx, artist.ArtistID)
		require.NoError(t, err)
		require.Equal(t, artist.Name, found.Name)

		_, err = artists.Get(ctx, uuid.New())
		require.ErrorIs(t, err, store.ErrArtistNotFound)
	})

	t.Run("ownership", func(t *testing.T) {
		require.NoError(t, artists.AddArtistOwner(ctx, ownerID, artist.ArtistID))

		owned, err := artists.HasArtistOwner(ctx, ownerID, artist.ArtistID)
		require.NoError(t, err)
		require.True(t, owned)

		listed, err := artists.ListByOwner(ctx, ownerID)
		require.NoError(t, err)
		require.Len(t, listed, 1)

		listed, err = artists.ListByOwners(ctx, []uuid.UUID{ownerID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, listed, 1)
	})

	t.Run("organization links", func(t *testing.T) {
		memberID := uuid.New()
		require.NoError(t, creds.AddOrganizationMember(ctx, orgID, memberID))
		require.NoError(t, artists.LinkArtistOrganization(ctx, artist.ArtistID, orgID))

		orgs, err := artists.ListArtistOrganizations(ctx, artist.ArtistID)
		require.NoError(t, err)
		require.Equal(t, []uuid.UUID{orgID}, orgs)

		ok, err := artists.BelongsToAnyOrganization(ctx, memberID, orgs)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = artists.BelongsToAnyOrganization(ctx, uuid.New(), orgs)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("list all", func(t *testing.T) {
		listed, err := artists.ListAll(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, listed)
	})
}
