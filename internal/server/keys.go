package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/recoupable/api-sub002/internal/auth"
	"github.com/recoupable/api-sub002/internal/models"
)

// handleCreateKey issues a new API key. The raw key appears in the
// response exactly once; only its hash is stored. An organization key
// may issue keys for its members (or anyone, for the admin org); a
// personal key may only issue keys for its own account.
func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := auth.RequireIdentity(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}

	var req struct {
		Name      string `json:"name"`
		AccountID string `json:"account_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ownerID := identity.AccountID
	if req.AccountID != "" {
		targetID, err := uuid.Parse(req.AccountID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid account_id")
			return
		}
		if targetID != identity.AccountID && !s.authorizer.CanAccess(ctx, identity.OrgID, targetID) {
			s.metrics.RecordDecision(ctx, "account", false)
			if !identity.IsOrganization() {
				writeError(w, http.StatusForbidden, "personal keys cannot issue keys for other accounts")
				return
			}
			writeError(w, http.StatusForbidden, "target account is not a member of this organization")
			return
		}
		ownerID = targetID
	}

	rawKey, err := auth.GenerateAPIKey()
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to generate api key")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	key := &models.APIKey{
		KeyHash:   s.resolver.HashKey(rawKey),
		AccountID: ownerID,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := s.creds.CreateAPIKey(ctx, key); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to store api key")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Key       string `json:"key"`
		AccountID string `json:"account_id"`
		Name      string `json:"name,omitempty"`
	}{
		Key:       rawKey,
		AccountID: ownerID.String(),
		Name:      req.Name,
	})
}
