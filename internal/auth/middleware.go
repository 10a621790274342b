package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/recoupable/api-sub002/internal/telemetry"
)

// APIKeyHeader delivers a credential whose kind is known to be a raw
// API key, skipping the token-first disambiguation.
const APIKeyHeader = "X-Api-Key"

// Middleware creates an HTTP middleware that resolves the request
// credential into an acting identity. It supports two delivery paths:
// a dedicated API key header, and an Authorization bearer value that
// may be either a provider token or a raw key.
//
// All failures produce the same 401 body; callers never learn which
// half of the disambiguation failed.
func Middleware(resolver *Resolver) func(http.Handler) http.Handler {
	metrics := telemetry.GetMetrics()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if rawKey := r.Header.Get(APIKeyHeader); rawKey != "" {
				identity, err := resolver.ResolveAPIKey(ctx, rawKey)
				if err != nil {
					metrics.RecordResolution(ctx, false)
					log.Debug().Err(err).Msg("Header API key did not resolve")
					http.Error(w, "authentication failed", http.StatusUnauthorized)
					return
				}

				metrics.RecordResolution(ctx, true)
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
				return
			}

			credential := bearerCredential(r)
			if credential == "" {
				metrics.RecordResolution(ctx, false)
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}

			identity, err := resolver.ResolveBearer(ctx, credential)
			if err != nil {
				metrics.RecordResolution(ctx, false)
				log.Debug().Err(err).Msg("Bearer credential did not resolve")
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}
			metrics.RecordResolution(ctx, true)

			log.Debug().
				Str("account_id", identity.AccountID.String()).
				Bool("organization", identity.IsOrganization()).
				Msg("Request authenticated")

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

// bearerCredential extracts the credential from the Authorization header.
func bearerCredential(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
