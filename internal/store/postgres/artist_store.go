package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/recoupable/api-sub002/internal/models"
	"github.com/recoupable/api-sub002/internal/store"
)

// ArtistStore implements store.ArtistStore using PostgreSQL.
type ArtistStore struct {
	pool *pgxpool.Pool
}

// NewArtistStore creates a new PostgreSQL-backed artist store.
// It shares the connection pool with other stores.
func NewArtistStore(pool *pgxpool.Pool) *ArtistStore {
	return &ArtistStore{
		pool: pool,
	}
}

// Get retrieves an artist by ID.
func (s *ArtistStore) Get(ctx context.Context, artistID uuid.UUID) (*models.Artist, error) {
	query := `
		SELECT artist_id, name, image_url, created_at, updated_at
		FROM artists
		WHERE artist_id = $1
	`

	var artist models.Artist
	err := s.pool.QueryRow(ctx, query, artistID).Scan(
		&artist.ArtistID,
		&artist.Name,
		&artist.ImageURL,
		&artist.CreatedAt,
		&artist.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrArtistNotFound
		}
		return nil, fmt.Errorf("failed to get artist: %w", mapPostgresError(err))
	}

	return &artist, nil
}

// Create creates a new artist.
func (s *ArtistStore) Create(ctx context.Context, artist *models.Artist) error {
	query := `
		INSERT INTO artists (artist_id, name, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		artist.ArtistID,
		artist.Name,
		artist.ImageURL,
		artist.CreatedAt,
		artist.UpdatedAt,
	)

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrArtistExists) {
			return store.ErrArtistExists
		}
		return fmt.Errorf("failed to create artist: %w", mapped)
	}

	log.Debug().
		Str("artist_id", artist.ArtistID.String()).
		Str("name", artist.Name).
		Msg("Created artist")

	return nil
}

// HasArtistOwner reports whether accountID directly owns artistID.
func (s *ArtistStore) HasArtistOwner(ctx context.Context, accountID, artistID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM artist_owners
			WHERE account_id = $1 AND artist_id = $2
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, accountID, artistID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check artist ownership: %w", mapPostgresError(err))
	}

	return exists, nil
}

// AddArtistOwner grants accountID direct ownership of artistID.
func (s *ArtistStore) AddArtistOwner(ctx context.Context, accountID, artistID uuid.UUID) error {
	query := `
		INSERT INTO artist_owners (account_id, artist_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := s.pool.Exec(ctx, query, accountID, artistID); err != nil {
		return fmt.Errorf("failed to add artist owner: %w", mapPostgresError(err))
	}

	return nil
}

// ListArtistOrganizations returns the ids of every organization the
// artist is linked to.
func (s *ArtistStore) ListArtistOrganizations(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT organization_id FROM artist_organizations
		WHERE artist_id = $1
	`

	rows, err := s.pool.Query(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artist organizations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var orgs []uuid.UUID
	for rows.Next() {
		var orgID uuid.UUID
		if err := rows.Scan(&orgID); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, orgID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}

	return orgs, nil
}

// LinkArtistOrganization places artistID under orgID.
func (s *ArtistStore) LinkArtistOrganization(ctx context.Context, artistID, orgID uuid.UUID) error {
	query := `
		INSERT INTO artist_organizations (artist_id, organization_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := s.pool.Exec(ctx, query, artistID, orgID); err != nil {
		return fmt.Errorf("failed to link artist organization: %w", mapPostgresError(err))
	}

	return nil
}

// BelongsToAnyOrganization reports whether accountID is a member of at
// least one of the given organizations.
func (s *ArtistStore) BelongsToAnyOrganization(ctx context.Context, accountID uuid.UUID, orgIDs []uuid.UUID) (bool, error) {
	if len(orgIDs) == 0 {
		return false, nil
	}

	query := `
		SELECT EXISTS(
			SELECT 1 FROM organization_members
			WHERE member_id = $1 AND organization_id = ANY($2)
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, accountID, orgIDs).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check shared organizations: %w", mapPostgresError(err))
	}

	return exists, nil
}

// ListByOwner returns all artists accountID directly owns.
func (s *ArtistStore) ListByOwner(ctx context.Context, accountID uuid.UUID) ([]*models.Artist, error) {
	query := `
		SELECT a.artist_id, a.name, a.image_url, a.created_at, a.updated_at
		FROM artists a
		JOIN artist_owners o ON o.artist_id = a.artist_id
		WHERE o.account_id = $1
		ORDER BY a.created_at
	`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", mapPostgresError(err))
	}
	defer rows.Close()

	return scanArtists(rows)
}

// ListByOwners returns all artists owned by any of the given accounts,
// deduplicated.
func (s *ArtistStore) ListByOwners(ctx context.Context, accountIDs []uuid.UUID) ([]*models.Artist, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT a.artist_id, a.name, a.image_url, a.created_at, a.updated_at
		FROM artists a
		JOIN artist_owners o ON o.artist_id = a.artist_id
		WHERE o.account_id = ANY($1)
		ORDER BY a.created_at
	`

	rows, err := s.pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", mapPostgresError(err))
	}
	defer rows.Close()

	return scanArtists(rows)
}

// ListAll returns every artist.
func (s *ArtistStore) ListAll(ctx context.Context) ([]*models.Artist, error) {
	query := `
		SELECT artist_id, name, image_url, created_at, updated_at
		FROM artists
		ORDER BY created_at
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", mapPostgresError(err))
	}
	defer rows.Close()

	return scanArtists(rows)
}

func scanArtists(rows pgx.Rows) ([]*models.Artist, error) {
	var artists []*models.Artist
	for rows.Next() {
		var artist models.Artist
		err := rows.Scan(
			&artist.ArtistID,
			&artist.Name,
			&artist.ImageURL,
			&artist.CreatedAt,
			&artist.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, &artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artists: %w", err)
	}

	return artists, nil
}
