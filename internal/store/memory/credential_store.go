package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recoupable/api-sub002/internal/models"
	"github.com/recoupable/api-sub002/internal/store"
)

type membershipKey struct {
	orgID    uuid.UUID
	memberID uuid.UUID
}

// CredentialStore implements store.CredentialStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type CredentialStore struct {
	mu sync.RWMutex

	keysByHash  map[string]*models.APIKey            // key_hash -> APIKey
	memberships map[membershipKey]time.Time          // (org, member) -> created_at
	membersOf   map[uuid.UUID]map[uuid.UUID]struct{} // org -> set of members
}

// NewCredentialStore creates a new in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		keysByHash:  make(map[string]*models.APIKey),
		memberships: make(map[membershipKey]time.Time),
		membersOf:   make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// FindAPIKeyByHash resolves a key hash to its record.
func (s *CredentialStore) FindAPIKeyByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, exists := s.keysByHash[keyHash]
	if !exists {
		return nil, store.ErrAPIKeyNotFound
	}

	// Clone to avoid external modifications
	clone := *key
	return &clone, nil
}

// CreateAPIKey stores a new key record.
func (s *CredentialStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keysByHash[key.KeyHash]; exists {
		return store.ErrAPIKeyExists
	}

	clone := *key
	s.keysByHash[key.KeyHash] = &clone

	return nil
}

// DeleteAPIKey revokes a key by hash.
func (s *CredentialStore) DeleteAPIKey(ctx context.Context, keyHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keysByHash[keyHash]; !exists {
		return store.ErrAPIKeyNotFound
	}

	delete(s.keysByHash, keyHash)
	return nil
}

// TouchAPIKey updates the last_used_at timestamp for a key.
func (s *CredentialStore) TouchAPIKey(ctx context.Context, keyHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, exists := s.keysByHash[keyHash]
	if !exists {
		return store.ErrAPIKeyNotFound
	}

	now := time.Now()
	key.LastUsedAt = &now
	return nil
}

// HasMembers reports whether any membership row names accountID as the
// organization side.
func (s *CredentialStore) HasMembers(ctx context.Context, accountID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.membersOf[accountID]) > 0, nil
}

// OrganizationHasMember reports whether memberID belongs to orgID.
func (s *CredentialStore) OrganizationHasMember(ctx context.Context, orgID, memberID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.memberships[membershipKey{orgID: orgID, memberID: memberID}]
	return exists, nil
}

// ListOrganizationMembers returns the member account ids of orgID.
func (s *CredentialStore) ListOrganizationMembers(ctx context.Context, orgID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []uuid.UUID
	for memberID := range s.membersOf[orgID] {
		members = append(members, memberID)
	}

	return members, nil
}

// AddOrganizationMember adds memberID to orgID.
func (s *CredentialStore) AddOrganizationMember(ctx context.Context, orgID, memberID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := membershipKey{orgID: orgID, memberID: memberID}
	if _, exists := s.memberships[k]; exists {
		return store.ErrMembershipExists
	}

	s.memberships[k] = time.Now()
	if s.membersOf[orgID] == nil {
		s.membersOf[orgID] = make(map[uuid.UUID]struct{})
	}
	s.membersOf[orgID][memberID] = struct{}{}

	return nil
}

// RemoveOrganizationMember removes memberID from orgID.
func (s *CredentialStore) RemoveOrganizationMember(ctx context.Context, orgID, memberID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := membershipKey{orgID: orgID, memberID: memberID}
	if _, exists := s.memberships[k]; !exists {
		return store.ErrMembershipNotFound
	}

	delete(s.memberships, k)
	delete(s.membersOf[orgID], memberID)

	return nil
}
