package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recoupable/api-sub002/internal/models"
	"github.com/recoupable/api-sub002/internal/store"
)

type ownerKey struct {
	accountID uuid.UUID
	artistID  uuid.UUID
}

// ArtistStore implements store.ArtistStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type ArtistStore struct {
	mu sync.RWMutex

	artists    map[uuid.UUID]*models.Artist
	owners     map[ownerKey]time.Time
	artistOrgs map[uuid.UUID]map[uuid.UUID]struct{} // artist -> set of orgs
	orgMembers map[uuid.UUID]map[uuid.UUID]struct{} // org -> set of members (shared-org path)
}

// NewArtistStore creates a new in-memory artist store.
func NewArtistStore() *ArtistStore {
	return &ArtistStore{
		artists:    make(map[uuid.UUID]*models.Artist),
		owners:     make(map[ownerKey]time.Time),
		artistOrgs: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		orgMembers: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Get retrieves an artist by ID.
func (s *ArtistStore) Get(ctx context.Context, artistID uuid.UUID) (*models.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artist, exists := s.artists[artistID]
	if !exists {
		return nil, store.ErrArtistNotFound
	}

	clone := *artist
	return &clone, nil
}

// Create creates a new artist.
func (s *ArtistStore) Create(ctx context.Context, artist *models.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.artists[artist.ArtistID]; exists {
		return store.ErrArtistExists
	}

	clone := *artist
	s.artists[artist.ArtistID] = &clone

	return nil
}

// HasArtistOwner reports whether accountID directly owns artistID.
func (s *ArtistStore) HasArtistOwner(ctx context.Context, accountID, artistID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.owners[ownerKey{accountID: accountID, artistID: artistID}]
	return exists, nil
}

// AddArtistOwner grants accountID direct ownership of artistID.
func (s *ArtistStore) AddArtistOwner(ctx context.Context, accountID, artistID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.owners[ownerKey{accountID: accountID, artistID: artistID}] = time.Now()
	return nil
}

// ListArtistOrganizations returns the ids of every organization the artist is linked to.
func (s *ArtistStore) ListArtistOrganizations(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orgs []uuid.UUID
	for orgID := range s.artistOrgs[artistID] {
		orgs = append(orgs, orgID)
	}

	return orgs, nil
}

// LinkArtistOrganization places artistID under orgID.
func (s *ArtistStore) LinkArtistOrganization(ctx context.Context, artistID, orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.artistOrgs[artistID] == nil {
		s.artistOrgs[artistID] = make(map[uuid.UUID]struct{})
	}
	s.artistOrgs[artistID][orgID] = struct{}{}

	return nil
}

// SetOrganizationMember records org membership for the shared-organization
// access path. Mirrors CredentialStore.AddOrganizationMember for fixtures.
func (s *ArtistStore) SetOrganizationMember(orgID, memberID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orgMembers[orgID] == nil {
		s.orgMembers[orgID] = make(map[uuid.UUID]struct{})
	}
	s.orgMembers[orgID][memberID] = struct{}{}
}

// BelongsToAnyOrganization reports whether accountID is a member of at
// least one of the given organizations.
func (s *ArtistStore) BelongsToAnyOrganization(ctx context.Context, accountID uuid.UUID, orgIDs []uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, orgID := range orgIDs {
		if _, ok := s.orgMembers[orgID][accountID]; ok {
			return true, nil
		}
	}

	return false, nil
}

// ListByOwner returns all artists accountID directly owns.
func (s *ArtistStore) ListByOwner(ctx context.Context, accountID uuid.UUID) ([]*models.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Artist
	for k := range s.owners {
		if k.accountID != accountID {
			continue
		}
		if artist, ok := s.artists[k.artistID]; ok {
			clone := *artist
			result = append(result, &clone)
		}
	}

	sortArtists(result)
	return result, nil
}

// ListByOwners returns all artists owned by any of the given accounts,
// deduplicated.
func (s *ArtistStore) ListByOwners(ctx context.Context, accountIDs []uuid.UUID) ([]*models.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[uuid.UUID]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{})
	var result []*models.Artist
	for k := range s.owners {
		if _, ok := wanted[k.accountID]; !ok {
			continue
		}
		if _, dup := seen[k.artistID]; dup {
			continue
		}
		if artist, ok := s.artists[k.artistID]; ok {
			seen[k.artistID] = struct{}{}
			clone := *artist
			result = append(result, &clone)
		}
	}

	sortArtists(result)
	return result, nil
}

// ListAll returns every artist.
func (s *ArtistStore) ListAll(ctx context.Context) ([]*models.Artist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Artist, 0, len(s.artists))
	for _, artist := range s.artists {
		clone := *artist
		result = append(result, &clone)
	}

	sortArtists(result)
	return result, nil
}

func sortArtists(artists []*models.Artist) {
	sort.Slice(artists, func(i, j int) bool {
		return artists[i].CreatedAt.Before(artists[j].CreatedAt)
	})
}
