package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/recoupable/api-sub002/internal/auth"
	"github.com/recoupable/api-sub002/internal/models"
	"github.com/recoupable/api-sub002/internal/store"
	"github.com/recoupable/api-sub002/internal/telemetry"
)

// Server exposes the authorization engine over a small JSON API. The
// transport owns the mapping from engine outcomes to status codes:
// unresolved credentials become 401, denials become 403 with the
// denial reason.
type Server struct {
	resolver   *auth.Resolver
	authorizer *auth.Authorizer
	creds      store.CredentialStore
	artists    store.ArtistStore
	metrics    *telemetry.Metrics
}

// New creates a server over the given engine components.
func New(resolver *auth.Resolver, authorizer *auth.Authorizer, creds store.CredentialStore, artists store.ArtistStore) *Server {
	return &Server{
		resolver:   resolver,
		authorizer: authorizer,
		creds:      creds,
		artists:    artists,
		metrics:    telemetry.GetMetrics(),
	}
}

// Handler returns the HTTP handler for the server. All /v1 routes
// require an authenticated identity.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	authenticated := auth.Middleware(s.resolver)

	api := http.NewServeMux()
	api.HandleFunc("GET /v1/me", s.handleMe)
	api.HandleFunc("GET /v1/artists", s.handleListArtists)
	api.HandleFunc("GET /v1/artists/{id}", s.handleGetArtist)
	api.HandleFunc("POST /v1/keys", s.handleCreateKey)

	mux.Handle("/v1/", authenticated(api))

	return mux
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	resp := struct {
		AccountID string `json:"account_id"`
		OrgID     string `json:"org_id,omitempty"`
	}{
		AccountID: identity.AccountID.String(),
	}
	if identity.IsOrganization() {
		resp.OrgID = identity.OrgID.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleListArtists lists artists visible to the acting identity. The
// optional account_id query parameter asks to act on behalf of another
// account; the scope builder decides whether that override is allowed.
func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	targetID := uuid.Nil
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		targetID, err = uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid account_id")
			return
		}
	}

	scope, err := s.authorizer.BuildScope(ctx, identity, targetID)
	if err != nil {
		s.metrics.RecordDecision(ctx, "account", false)
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	s.metrics.RecordDecision(ctx, "account", true)

	artists, err := s.listArtistsInScope(r, scope)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to list artists")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Artists []artistResponse `json:"artists"`
	}{Artists: artistResponses(artists)})
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	artistID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid artist id")
		return
	}

	if !s.authorizer.CanAccessArtist(ctx, identity.AccountID, artistID) {
		s.metrics.RecordDecision(ctx, "artist", false)
		writeError(w, http.StatusForbidden, "no shared access to artist")
		return
	}
	s.metrics.RecordDecision(ctx, "artist", true)

	artist, err := s.artists.Get(ctx, artistID)
	if err != nil {
		if errors.Is(err, store.ErrArtistNotFound) {
			writeError(w, http.StatusNotFound, "artist not found")
			return
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to get artist")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toArtistResponse(artist))
}

func (s *Server) listArtistsInScope(r *http.Request, scope *auth.Scope) ([]*models.Artist, error) {
	ctx := r.Context()

	switch scope.Kind {
	case auth.ScopeAll:
		return s.artists.ListAll(ctx)
	case auth.ScopeOrganization:
		members, err := s.creds.ListOrganizationMembers(ctx, scope.OrgID)
		if err != nil {
			return nil, err
		}
		return s.artists.ListByOwners(ctx, members)
	default:
		return s.artists.ListByOwner(ctx, scope.AccountID)
	}
}
