package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/hosting/internal/api/handler"
	mw "github.com/edvin/hosting/internal/api/middleware"
	"github.com/edvin/hosting/internal/config"
	"github.com/edvin/hosting/internal/core"
	"github.com/edvin/hosting/internal/flow"
	"github.com/edvin/hosting/internal/policy"
)

//go:embed docs/swagger.json
var swaggerJSON []byte

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	db          *pgxpool.Pool
	cfg         *config.Config
	auditLogger *mw.AuditLogger
}

// NewServer wires the authorization endpoint's public surface
// (/authorize, the discovery document, JWKS) and a small admin API for
// registering providers and API keys, using the same
// chi-router-plus-audit-middleware layout as the rest of the platform.
func NewServer(logger zerolog.Logger, db *pgxpool.Pool, sessions flow.SessionStore, accessPolicy policy.Checker, cfg *config.Config) *Server {
	auditLogger := mw.NewAuditLogger(db, logger)

	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		db:          db,
		cfg:         cfg,
		auditLogger: auditLogger,
	}

	s.setupMiddleware()
	s.setupRoutes(sessions, accessPolicy)

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes(sessions flow.SessionStore, accessPolicy policy.Checker) {
	providers := core.NewProviderService(s.db)
	signingKeys := core.NewSigningKeyService(s.db)
	consent := core.NewConsentService(s.db)
	authCodes := core.NewAuthCodeService(s.db)
	accessTokens := core.NewAccessTokenService(s.db)
	apiKeys := core.NewAPIKeyService(s.db)

	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// API documentation (no auth required)
	s.router.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerJSON)
	})
	s.router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	// OIDC discovery and the authorization endpoint are public.
	discovery := &handler.Discovery{Logger: s.logger, SigningKeys: signingKeys, IssuerURL: s.cfg.IssuerURL}
	s.router.Get("/.well-known/openid-configuration", discovery.Metadata)
	s.router.Get("/oidc/jwks", discovery.JWKS)

	authorize := &handler.Authorize{
		Logger:       s.logger,
		Providers:    providers,
		Sessions:     sessions,
		Policy:       accessPolicy,
		Consent:      consent,
		AuthCodes:    authCodes,
		AccessTokens: accessTokens,
		SigningKeys:  signingKeys,
		FlowPlanner:  flow.AllowAllFlows{},
		Audit:        s.auditLogger,
		IssuerURL:    s.cfg.IssuerURL,
		LoginURL:     s.cfg.LoginURL,
		ConsentTTL:   s.cfg.ConsentTTL(),
	}
	s.router.Get("/authorize", authorize.ServeHTTP)
	s.router.Post("/authorize", authorize.ServeHTTP)
	// GitHub-OAuth-compatible alias: same handler, but ParseParams relaxes
	// the provider-configured scope check for this path so RPs written
	// against GitHub's OAuth app scopes (user, user:email, repo) work
	// unmodified against a provider that never configured those scopes.
	s.router.Get("/login/oauth/authorize", authorize.ServeHTTP)
	s.router.Post("/login/oauth/authorize", authorize.ServeHTTP)

	providerHandler := handler.NewProvider(providers, signingKeys)
	apiKey := handler.NewAPIKey(apiKeys)

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(mw.Auth(s.db))
		r.Use(s.auditLogger.Middleware)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireScope("providers", "read"))
			r.Get("/providers", providerHandler.List)
			r.Get("/providers/{client_id}", providerHandler.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireScope("providers", "write"))
			r.Post("/providers", providerHandler.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireScope("api_keys", "read"))
			r.Get("/api-keys", apiKey.List)
			r.Get("/api-keys/{id}", apiKey.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireScope("api_keys", "write"))
			r.Post("/api-keys", apiKey.Create)
		})
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireScope("api_keys", "delete"))
			r.Delete("/api-keys/{id}", apiKey.Revoke)
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.db.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Authorization Server API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
