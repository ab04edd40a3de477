package http

import (
	"net/http"
	"os"
	"path/filepath"

	"healthsure/internal/delivery/http/handler"
	"healthsure/internal/delivery/http/middleware"
	"healthsure/pkg/response"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the endpoint handlers mounted by the router.
type Handlers struct {
	Patient    *handler.PatientHandler
	Policy     *handler.PolicyHandler
	Onboarding *handler.OnboardingHandler
	AuditLog   *handler.AuditLogHandler
	Health     *handler.HealthHandler
}

// Middlewares are applied to every route, and to the not-found and
// method-not-allowed answers, in the order listed in chain.
type Middlewares struct {
	CORS      *middleware.CORSMiddleware
	Logging   *middleware.LoggingMiddleware
	Recovery  *middleware.RecoveryMiddleware
	Metrics   *middleware.MetricsMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

type Router struct {
	router      *mux.Router
	handlers    Handlers
	middlewares Middlewares
	uploads     http.Handler
	uploadsPath string
	publicDir   string
}

// NewRouter builds the HTTP routes. uploads serves stored images under
// uploadsPath; publicDir, when it exists, is served at the root.
func NewRouter(handlers Handlers, middlewares Middlewares, uploadsPath string, uploads http.Handler, publicDir string) *Router {
	return &Router{
		router:      mux.NewRouter(),
		handlers:    handlers,
		middlewares: middlewares,
		uploads:     uploads,
		uploadsPath: uploadsPath,
		publicDir:   publicDir,
	}
}

func (r *Router) chain() []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		middleware.RequestID,
		r.middlewares.Logging.Handle,
		r.middlewares.Recovery.Handle,
		r.middlewares.CORS.Handle,
		r.middlewares.Metrics.Handle,
		r.middlewares.RateLimit.Handle,
	}
}

// wrap applies the route middleware chain to h. mux skips Use middlewares for
// its NotFound and MethodNotAllowed handlers.
func (r *Router) wrap(h http.Handler) http.Handler {
	chain := r.chain()
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func (r *Router) Setup() *mux.Router {
	r.router.Use(r.chain()...)

	notFound := r.wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	}))
	notAllowed := r.wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w)
	}))
	r.router.NotFoundHandler = notFound
	r.router.MethodNotAllowedHandler = notAllowed

	api := r.router.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = notFound
	api.MethodNotAllowedHandler = notAllowed

	// Health check
	api.HandleFunc("/test", r.handlers.Health.Test).Methods(http.MethodGet)
	api.HandleFunc("/health", r.handlers.Health.Health).Methods(http.MethodGet)

	// Patients
	patients := api.PathPrefix("/patients").Subrouter()
	patients.HandleFunc("", r.handlers.Patient.GetAll).Methods(http.MethodGet)
	patients.HandleFunc("", r.handlers.Patient.Create).Methods(http.MethodPost)
	patients.HandleFunc("/phone/{phone}", r.handlers.Patient.FindByPhone).Methods(http.MethodGet)
	patients.HandleFunc("/email/{email}", r.handlers.Patient.FindByEmail).Methods(http.MethodGet)
	patients.HandleFunc("/name/{name}", r.handlers.Patient.FindByName).Methods(http.MethodGet)
	patients.HandleFunc("/{id:[0-9]+}", r.handlers.Patient.GetByID).Methods(http.MethodGet)
	patients.HandleFunc("/{id:[0-9]+}", r.handlers.Patient.Update).Methods(http.MethodPut)
	patients.HandleFunc("/{id:[0-9]+}", r.handlers.Patient.Delete).Methods(http.MethodDelete)
	patients.HandleFunc("/{id:[0-9]+}/image", r.handlers.Patient.UpdateImage).Methods(http.MethodPut)
	patients.HandleFunc("/{id:[0-9]+}/policies", r.handlers.Patient.GetPolicies).Methods(http.MethodGet)

	// Policies
	policies := api.PathPrefix("/policies").Subrouter()
	policies.HandleFunc("", r.handlers.Policy.GetAll).Methods(http.MethodGet)
	policies.HandleFunc("", r.handlers.Policy.Create).Methods(http.MethodPost)
	policies.HandleFunc("/dashboard", r.handlers.Policy.Dashboard).Methods(http.MethodGet)
	policies.HandleFunc("/{id:[0-9]+}", r.handlers.Policy.GetByID).Methods(http.MethodGet)
	policies.HandleFunc("/{id:[0-9]+}/cancel", r.handlers.Policy.Cancel).Methods(http.MethodPut)
	policies.HandleFunc("/{id:[0-9]+}/renew", r.handlers.Policy.Renew).Methods(http.MethodPut)

	// Onboarding wizard
	onboarding := api.PathPrefix("/onboarding").Subrouter()
	onboarding.HandleFunc("", r.handlers.Onboarding.Start).Methods(http.MethodPost)
	onboarding.HandleFunc("/{id}", r.handlers.Onboarding.Get).Methods(http.MethodGet)
	onboarding.HandleFunc("/{id}", r.handlers.Onboarding.Abandon).Methods(http.MethodDelete)
	onboarding.HandleFunc("/{id}/next", r.handlers.Onboarding.Next).Methods(http.MethodPost)
	onboarding.HandleFunc("/{id}/back", r.handlers.Onboarding.Back).Methods(http.MethodPost)
	onboarding.HandleFunc("/{id}/submit", r.handlers.Onboarding.Submit).Methods(http.MethodPost)

	// Audit log
	api.HandleFunc("/audit-logs", r.handlers.AuditLog.GetAllAuditLogs).Methods(http.MethodGet)
	api.HandleFunc("/audit-logs/{id:[0-9]+}", r.handlers.AuditLog.GetAuditLog).Methods(http.MethodGet)

	r.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if r.uploads != nil {
		r.router.PathPrefix(r.uploadsPath).Handler(r.uploads).Methods(http.MethodGet, http.MethodHead)
	}

	if dir := r.publicDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.router.PathPrefix("/").Handler(http.FileServer(http.Dir(filepath.Clean(dir)))).Methods(http.MethodGet, http.MethodHead)
		}
	}

	return r.router
}
