package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"github.com/recoupable/api-sub002/internal/auth"
	httpmiddleware "github.com/recoupable/api-sub002/internal/http"
	"github.com/recoupable/api-sub002/internal/logger"
	"github.com/recoupable/api-sub002/internal/server"
	"github.com/recoupable/api-sub002/internal/store"
	memorystore "github.com/recoupable/api-sub002/internal/store/memory"
	postgresstore "github.com/recoupable/api-sub002/internal/store/postgres"
	"github.com/recoupable/api-sub002/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8787" env:"RECOUP_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"RECOUP_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"RECOUP_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"https://localhost" env:"RECOUP_CORS_ORIGINS"`

	// Authorization configuration
	AdminOrgID         string `help:"account id of the admin organization with universal access" required:"" env:"RECOUP_ADMIN_ORG_ID"`
	KeyHashSecret      string `help:"secret for HMAC hashing of API keys" required:"" env:"RECOUP_KEY_HASH_SECRET"`
	TokenPublicKeyFile string `help:"path to the identity provider's PEM-encoded ECDSA public key" required:"" env:"RECOUP_TOKEN_PUBLIC_KEY_FILE"`

	// Operational modes
	Metrics bool `help:"enable OpenTelemetry metrics export" default:"false" env:"RECOUP_METRICS"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"RECOUP_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32         `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32         `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime time.Duration `help:"maximum connection lifetime" default:"1h"`
	MaxConnIdleTime time.Duration `help:"maximum connection idle time" default:"30m"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"RECOUP_POSTGRES_AUTO_MIGRATE"`
}

func (c *ServerCmd) Validate() error {
	if len(c.KeyHashSecret) < 32 {
		return errors.New("key hash secret must be at least 32 bytes (256 bits) for HMAC-SHA256")
	}
	if _, err := uuid.Parse(c.AdminOrgID); err != nil {
		return fmt.Errorf("admin org id must be a UUID: %w", err)
	}
	return nil
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Metrics {
		shutdown, err := telemetry.InitTelemetry(ctx, "recoup-api", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Failed to shutdown telemetry")
				}
			}()
		}
	}

	adminOrgID, err := uuid.Parse(c.AdminOrgID)
	if err != nil {
		return fmt.Errorf("invalid admin org id: %w", err)
	}

	publicKeyPEM, err := os.ReadFile(c.TokenPublicKeyFile)
	if err != nil {
		return fmt.Errorf("failed to read token public key: %w", err)
	}

	verifier, err := auth.NewJWTVerifierFromPEM(string(publicKeyPEM))
	if err != nil {
		return fmt.Errorf("failed to create token verifier: %w", err)
	}

	// Create stores based on store type
	var (
		creds   store.CredentialStore
		artists store.ArtistStore
	)

	switch c.StoreType {
	case "postgres":
		if c.PostgresStore.ConnString == "" {
			return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
		}

		// Shared connection pool for both stores, retried while the
		// database comes up.
		poolCfg := &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
		}
		pool, err := backoff.Retry(ctx, func() (*pgxpool.Pool, error) {
			return postgresstore.NewPool(ctx, poolCfg)
		}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxElapsedTime(30*time.Second))
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		creds = postgresstore.NewCredentialStore(pool)
		artists = postgresstore.NewArtistStore(pool)

		log.Info().Msg("Using PostgreSQL stores with shared connection pool")

	default:
		creds = memorystore.NewCredentialStore()
		artists = memorystore.NewArtistStore()
		log.Info().Msg("Using in-memory stores")
	}

	resolver := auth.NewResolver(verifier, creds, c.KeyHashSecret)
	authorizer := auth.NewAuthorizer(adminOrgID, creds, artists)

	srv := server.New(resolver, authorizer, creds, artists)

	clientIPMiddleware := httpmiddleware.ClientIPMiddleware()
	requestLogger := logger.Requests(log)

	handler := withCORS(c.CORSOrigins, requestLogger(clientIPMiddleware(srv.Handler())))

	if c.Cert != "" || c.Key != "" {
		if _, err := os.Stat(c.Cert); err != nil {
			return fmt.Errorf("TLS certificate not found at %s: %w", c.Cert, err)
		}
		if _, err := os.Stat(c.Key); err != nil {
			return fmt.Errorf("TLS key not found at %s: %w", c.Key, err)
		}

		log.Info().Str("addr", c.Listen).Msg("Starting HTTPS server")
		return configureHTTPServer(c.Listen, handler).ListenAndServeTLS(c.Cert, c.Key)
	}

	log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
	return configureHTTPServer(c.Listen, handler).ListenAndServe()
}

// withCORS adds CORS support to the API handler.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", auth.APIKeyHeader},
		AllowCredentials: true,
	})
	return middleware.Handler(h)
}
