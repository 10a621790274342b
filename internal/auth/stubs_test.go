package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/recoupable/api-sub002/internal/models"
	"github.com/recoupable/api-sub002/internal/store"
)

// stubCredentialStore is a controllable store.CredentialStore for
// exercising fail-closed behavior. Zero value denies everything.
type stubCredentialStore struct {
	keys          map[string]*models.APIKey
	memberships   map[uuid.UUID]map[uuid.UUID]bool // org -> member -> present
	organizations map[uuid.UUID]bool               // account -> has members

	findErr       error
	hasMembersErr error
	hasMemberErr  error

	membershipChecks int
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{
		keys:          make(map[string]*models.APIKey),
		memberships:   make(map[uuid.UUID]map[uuid.UUID]bool),
		organizations: make(map[uuid.UUID]bool),
	}
}

func (s *stubCredentialStore) addMember(orgID, memberID uuid.UUID) {
	if s.memberships[orgID] == nil {
		s.memberships[orgID] = make(map[uuid.UUID]bool)
	}
	s.memberships[orgID][memberID] = true
	s.organizations[orgID] = true
}

func (s *stubCredentialStore) FindAPIKeyByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	key, ok := s.keys[keyHash]
	if !ok {
		return nil, store.ErrAPIKeyNotFound
	}
	return key, nil
}

func (s *stubCredentialStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	s.keys[key.KeyHash] = key
	return nil
}

func (s *stubCredentialStore) DeleteAPIKey(ctx context.Context, keyHash string) error {
	delete(s.keys, keyHash)
	return nil
}

func (s *stubCredentialStore) TouchAPIKey(ctx context.Context, keyHash string) error {
	return nil
}

func (s *stubCredentialStore) HasMembers(ctx context.Context, accountID uuid.UUID) (bool, error) {
	if s.hasMembersErr != nil {
		return false, s.hasMembersErr
	}
	return s.organizations[accountID], nil
}

func (s *stubCredentialStore) OrganizationHasMember(ctx context.Context, orgID, memberID uuid.UUID) (bool, error) {
	s.membershipChecks++
	if s.hasMemberErr != nil {
		return false, s.hasMemberErr
	}
	return s.memberships[orgID][memberID], nil
}

func (s *stubCredentialStore) ListOrganizationMembers(ctx context.Context, orgID uuid.UUID) ([]uuid.UUID, error) {
	var members []uuid.UUID
	for memberID := range s.memberships[orgID] {
		members = append(members, memberID)
	}
	return members, nil
}

func (s *stubCredentialStore) AddOrganizationMember(ctx context.Context, orgID, memberID uuid.UUID) error {
	s.addMember(orgID, memberID)
	return nil
}

func (s *stubCredentialStore) RemoveOrganizationMember(ctx context.Context, orgID, memberID uuid.UUID) error {
	delete(s.memberships[orgID], memberID)
	return nil
}

// stubArtistStore is a controllable store.ArtistStore.
type stubArtistStore struct {
	artists    map[uuid.UUID]*models.Artist
	owners     map[uuid.UUID]map[uuid.UUID]bool // account -> artist -> owned
	artistOrgs map[uuid.UUID][]uuid.UUID        // artist -> orgs
	orgMembers map[uuid.UUID]map[uuid.UUID]bool // org -> member -> present

	ownerErr    error
	listOrgsErr error
	belongsErr  error
}

func newStubArtistStore() *stubArtistStore {
	return &stubArtistStore{
		artists:    make(map[uuid.UUID]*models.Artist),
		owners:     make(map[uuid.UUID]map[uuid.UUID]bool),
		artistOrgs: make(map[uuid.UUID][]uuid.UUID),
		orgMembers: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *stubArtistStore) addOwner(accountID, artistID uuid.UUID) {
	if s.owners[accountID] == nil {
		s.owners[accountID] = make(map[uuid.UUID]bool)
	}
	s.owners[accountID][artistID] = true
}

func (s *stubArtistStore) addOrgMember(orgID, memberID uuid.UUID) {
	if s.orgMembers[orgID] == nil {
		s.orgMembers[orgID] = make(map[uuid.UUID]bool)
	}
	s.orgMembers[orgID][memberID] = true
}

func (s *stubArtistStore) Get(ctx context.Context, artistID uuid.UUID) (*models.Artist, error) {
	artist, ok := s.artists[artistID]
	if !ok {
		return nil, store.ErrArtistNotFound
	}
	return artist, nil
}

func (s *stubArtistStore) Create(ctx context.Context, artist *models.Artist) error {
	s.artists[artist.ArtistID] = artist
	return nil
}

func (s *stubArtistStore) HasArtistOwner(ctx context.Context, accountID, artistID uuid.UUID) (bool, error) {
	if s.ownerErr != nil {
		return false, s.ownerErr
	}
	return s.owners[accountID][artistID], nil
}

func (s *stubArtistStore) AddArtistOwner(ctx context.Context, accountID, artistID uuid.UUID) error {
	s.addOwner(accountID, artistID)
	return nil
}

func (s *stubArtistStore) ListArtistOrganizations(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error) {
	if s.listOrgsErr != nil {
		return nil, s.listOrgsErr
	}
	return s.artistOrgs[artistID], nil
}

func (s *stubArtistStore) LinkArtistOrganization(ctx context.Context, artistID, orgID uuid.UUID) error {
	s.artistOrgs[artistID] = append(s.artistOrgs[artistID], orgID)
	return nil
}

func (s *stubArtistStore) BelongsToAnyOrganization(ctx context.Context, accountID uuid.UUID, orgIDs []uuid.UUID) (bool, error) {
	if s.belongsErr != nil {
		return false, s.belongsErr
	}
	for _, orgID := range orgIDs {
		if s.orgMembers[orgID][accountID] {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubArtistStore) ListByOwner(ctx context.Context, accountID uuid.UUID) ([]*models.Artist, error) {
	var result []*models.Artist
	for artistID := range s.owners[accountID] {
		if artist, ok := s.artists[artistID]; ok {
			result = append(result, artist)
		}
	}
	return result, nil
}

func (s *stubArtistStore) ListByOwners(ctx context.Context, accountIDs []uuid.UUID) ([]*models.Artist, error) {
	seen := make(map[uuid.UUID]bool)
	var result []*models.Artist
	for _, accountID := range accountIDs {
		for artistID := range s.owners[accountID] {
			if seen[artistID] {
				continue
			}
			if artist, ok := s.artists[artistID]; ok {
				seen[artistID] = true
				result = append(result, artist)
			}
		}
	}
	return result, nil
}

func (s *stubArtistStore) ListAll(ctx context.Context) ([]*models.Artist, error) {
	var result []*models.Artist
	for _, artist := range s.artists {
		result = append(result, artist)
	}
	return result, nil
}
