package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/stockroom/pkg/audit"
	"github.com/platinummonkey/stockroom/pkg/auth"
	"github.com/platinummonkey/stockroom/pkg/httputil"
	"github.com/platinummonkey/stockroom/pkg/inventory"
	"github.com/platinummonkey/stockroom/pkg/observability"
)

// Options carries optional server settings
type Options struct {
	// MaxBodyBytes caps request body size; 0 means 1 MiB
	MaxBodyBytes int64
	// Metrics enables request instrumentation when non-nil
	Metrics *observability.Metrics
	// Traced wraps the handler chain in otelhttp when true
	Traced bool
}

// Server routes HTTP requests to the inventory and audit services
type Server struct {
	router  *mux.Router
	handler http.Handler
	items   *inventory.Service
	audits  *audit.Service
	metrics *observability.Metrics
}

// NewServer creates the API server with all routes and middleware wired
func NewServer(items *inventory.Service, audits *audit.Service, verifier auth.Verifier, logger *observability.Logger, opts Options) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		items:   items,
		audits:  audits,
		metrics: opts.Metrics,
	}
	s.setupRoutes()

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	middlewares := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.ContextLoggerMiddleware(logger),
		httputil.LoggingMiddleware(logger.Slog()),
		httputil.RecoveryMiddleware(logger.Slog()),
	}
	if opts.Metrics != nil {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(opts.Metrics))
	}
	middlewares = append(middlewares,
		httputil.MaxBytesMiddleware(maxBody),
		auth.Middleware(verifier),
	)

	s.handler = httputil.Chain(middlewares...)(s.router)
	if opts.Traced {
		s.handler = otelhttp.NewHandler(s.handler, "stockroom-api")
	}
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// Item operations
	v1.HandleFunc("/items", s.createItem).Methods("POST")
	v1.HandleFunc("/items", s.listItems).Methods("GET")
	v1.HandleFunc("/items/{id}", s.getItem).Methods("GET")
	v1.HandleFunc("/items/{id}", s.updateItem).Methods("PUT")
	v1.HandleFunc("/items/{id}", s.deleteItem).Methods("DELETE")

	// Audit operations
	v1.HandleFunc("/items/{id}/audit", s.itemAudit).Methods("GET")
	v1.HandleFunc("/audit", s.globalAudit).Methods("GET")
	v1.HandleFunc("/audit/export", s.exportAudit).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
