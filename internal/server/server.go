package server

import (
	"context"
	"net/http"

	"filippo.io/csrf"
	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfeidau/clientportal/internal/access"
	"github.com/wolfeidau/clientportal/internal/auth"
	"github.com/wolfeidau/clientportal/internal/documents"
	httpmiddleware "github.com/wolfeidau/clientportal/internal/http"
	"github.com/wolfeidau/clientportal/internal/invalidate"
	"github.com/wolfeidau/clientportal/internal/store"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds HTTP surface settings.
type Config struct {
	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string
	// TrustedOrigins are exempt from cross-origin protection on mutating requests.
	TrustedOrigins []string
	// Tracing wraps the router with OpenTelemetry instrumentation.
	Tracing bool
}

// Server serves the portal and admin API.
type Server struct {
	stores      store.Stores
	resolver    *access.Resolver
	provisioner *documents.Provisioner
	notifier    invalidate.Notifier
	verifier    auth.Verifier
	pinger      Pinger
	cfg         Config
}

// New creates a server. A nil pinger reports healthy without checking a store.
func New(stores store.Stores, verifier auth.Verifier, notifier invalidate.Notifier, pinger Pinger, cfg Config) *Server {
	if notifier == nil {
		notifier = invalidate.Nop{}
	}
	return &Server{
		stores:      stores,
		resolver:    access.NewResolver(stores.Memberships),
		provisioner: documents.NewProvisioner(stores.Clients, stores.Documents, notifier),
		notifier:    notifier,
		verifier:    verifier,
		pinger:      pinger,
		cfg:         cfg,
	}
}

// Handler returns the HTTP handler with the full middleware stack.
func (s *Server) Handler(log zerolog.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(httpmiddleware.RequestLogger(log))
	r.Use(recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(s.verifier))

		r.Get("/entry", s.handleEntry)
		r.Get("/clients", s.handleListAccessible)

		r.Route("/portal/{slug}", func(r chi.Router) {
			r.Use(requirePermission(auth.PermPortalView))
			r.Get("/", s.handlePortal)
			r.Get("/documents", s.handlePortalDocuments)
			r.Get("/documents/{docType}", s.handlePortalDocument)
		})

		r.Route("/admin/clients", func(r chi.Router) {
			r.With(requirePermission(auth.PermClientsManage)).Post("/", s.handleCreateClient)
			r.With(requirePermission(auth.PermClientsManage)).Get("/", s.handleListClients)

			r.Route("/{clientID}", func(r chi.Router) {
				r.With(requirePermission(auth.PermClientsManage)).Get("/", s.handleGetClient)
				r.With(requirePermission(auth.PermClientsManage)).Put("/", s.handleUpdateClient)
				r.With(requirePermission(auth.PermClientsManage)).Get("/memberships", s.handleListMemberships)
				r.With(requirePermission(auth.PermClientsManage)).Post("/memberships", s.handleGrantMembership)
				r.With(requirePermission(auth.PermClientsManage)).Delete("/memberships/{identityID}", s.handleRevokeMembership)
				r.With(requirePermission(auth.PermDocumentsEdit)).Get("/documents", s.handleAdminDocuments)
				r.With(requirePermission(auth.PermDocumentsEdit)).Put("/documents/{docType}", s.handleUpsertDocument)
			})
		})
	})

	protection := csrf.New()
	for _, origin := range s.cfg.TrustedOrigins {
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, err
		}
	}

	var handler http.Handler = protection.Handler(r)
	handler = withCORS(s.cfg.CORSOrigins, handler)
	handler = gzhttp.GzipHandler(handler)

	if s.cfg.Tracing {
		handler = otelhttp.NewHandler(handler, "portal")
	}

	return handler, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withCORS adds CORS support for browser clients sending cookies.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "If-None-Match", httpmiddleware.RequestIDHeader},
		ExposedHeaders:   []string{"ETag", httpmiddleware.RequestIDHeader},
		AllowCredentials: true,
	})
	return middleware.Handler(h)
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				zerolog.Ctx(r.Context()).Error().Interface("panic", rec).Msg("Handler panic")
				writeError(w, r, errInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requirePermission(perm auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.RequirePermission(r.Context(), perm); err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
