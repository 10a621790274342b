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

// CredentialStore implements store.CredentialStore using PostgreSQL.
type CredentialStore struct {
	pool *pgxpool.Pool
}

// NewCredentialStore creates a new PostgreSQL-backed credential store.
// It shares the connection pool with other stores.
func NewCredentialStore(pool *pgxpool.Pool) *CredentialStore {
	return &CredentialStore{
		pool: pool,
	}
}

// FindAPIKeyByHash resolves a key hash to its record.
func (s *CredentialStore) FindAPIKeyByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	query := `
		SELECT key_hash, account_id, name, created_at, last_used_at
		FROM api_keys
		WHERE key_hash = $1
	`

	var key models.APIKey
	err := s.pool.QueryRow(ctx, query, keyHash).Scan(
		&key.KeyHash,
		&key.AccountID,
		&key.Name,
		&key.CreatedAt,
		&key.LastUsedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to find api key: %w", mapPostgresError(err))
	}

	return &key, nil
}

// CreateAPIKey stores a new key record.
func (s *CredentialStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	query := `
		INSERT INTO api_keys (key_hash, account_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		key.KeyHash,
		key.AccountID,
		key.Name,
		key.CreatedAt,
	)

	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrAPIKeyExists) {
			return store.ErrAPIKeyExists
		}
		return fmt.Errorf("failed to create api key: %w", mapped)
	}

	log.Debug().
		Str("account_id", key.AccountID.String()).
		Str("name", key.Name).
		Msg("Created api key")

	return nil
}

// DeleteAPIKey revokes a key by hash.
func (s *CredentialStore) DeleteAPIKey(ctx context.Context, keyHash string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM api_keys WHERE key_hash = $1`, keyHash)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrAPIKeyNotFound
	}

	return nil
}

// TouchAPIKey updates the last_used_at timestamp for a key.
func (s *CredentialStore) TouchAPIKey(ctx context.Context, keyHash string) error {
	result, err := s.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = now() WHERE key_hash = $1`, keyHash)
	if err != nil {
		return fmt.Errorf("failed to touch api key: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrAPIKeyNotFound
	}

	return nil
}

// HasMembers reports whether any membership row names accountID as the
// organization side.
func (s *CredentialStore) HasMembers(ctx context.Context, accountID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM organization_members WHERE organization_id = $1
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check members: %w", mapPostgresError(err))
	}

	return exists, nil
}

// OrganizationHasMember reports whether memberID belongs to orgID.
func (s *CredentialStore) OrganizationHasMember(ctx context.Context, orgID, memberID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM organization_members
			WHERE organization_id = $1 AND member_id = $2
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, orgID, memberID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", mapPostgresError(err))
	}

	return exists, nil
}

// ListOrganizationMembers returns the member account ids of orgID.
func (s *CredentialStore) ListOrganizationMembers(ctx context.Context, orgID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT member_id FROM organization_members
		WHERE organization_id = $1
		ORDER BY created_at
	`

	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var members []uuid.UUID
	for rows.Next() {
		var memberID uuid.UUID
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, memberID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// AddOrganizationMember adds memberID to orgID.
func (s *CredentialStore) AddOrganizationMember(ctx context.Context, orgID, memberID uuid.UUID) error {
	query := `
		INSERT INTO organization_members (organization_id, member_id)
		VALUES ($1, $2)
	`

	if _, err := s.pool.Exec(ctx, query, orgID, memberID); err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrMembershipExists) {
			return store.ErrMembershipExists
		}
		return fmt.Errorf("failed to add member: %w", mapped)
	}

	log.Debug().
		Str("org_id", orgID.String()).
		Str("member_id", memberID.String()).
		Msg("Added organization member")

	return nil
}

// RemoveOrganizationMember removes memberID from orgID.
func (s *CredentialStore) RemoveOrganizationMember(ctx context.Context, orgID, memberID uuid.UUID) error {
	query := `
		DELETE FROM organization_members
		WHERE organization_id = $1 AND member_id = $2
	`

	result, err := s.pool.Exec(ctx, query, orgID, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrMembershipNotFound
	}

	return nil
}
