package adapthttp

import (
	"context"
	"net/http"
	"time"

	"calories/internal/app"
	"calories/internal/domain"
	"calories/internal/logging"
	"calories/internal/metrics"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// OIDCConfig carries the SSO provider. SSO routes answer 404 unless Enabled.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// Services groups the application services the HTTP adapter drives.
type Services struct {
	Auth      *app.AuthService
	Profile   *app.ProfileService
	Meals     *app.MealService
	Weight    *app.WeightService
	Dashboard *app.DashboardService
	Charts    *app.ChartsService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc   *app.AuthService
	profile   *app.ProfileService
	meals     *app.MealService
	weight    *app.WeightService
	dashboard *app.DashboardService
	charts    *app.ChartsService

	oidcConfig OIDCConfig
	logger     *zap.Logger
	metrics    *metrics.Metrics
	webDir     string
	ping       func(context.Context) error

	disableAuth bool
	devUser     *domain.User
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string) *Server {
	return &Server{
		authSvc:   svc.Auth,
		profile:   svc.Profile,
		meals:     svc.Meals,
		weight:    svc.Weight,
		dashboard: svc.Dashboard,
		charts:    svc.Charts,
		logger:    zap.NewNop(),
		webDir:    webDir,
	}
}

// WithLogger sets the access and error logger.
func (s *Server) WithLogger(l *zap.Logger) *Server {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithMetrics enables request metrics and the /metrics endpoint.
func (s *Server) WithMetrics(m *metrics.Metrics) *Server {
	s.metrics = m
	return s
}

// WithHealthCheck makes /api/health report 503 while ping fails.
func (s *Server) WithHealthCheck(ping func(context.Context) error) *Server {
	s.ping = ping
	return s
}

// WithOIDC enables SSO login.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithoutAuth disables authentication and serves every request as user 1.
// Tests only.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	s.devUser = &domain.User{ID: 1, Username: "dev"}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	public := http.NewServeMux()
	s.route(public, "/health", s.handleHealth)
	s.route(public, "/config", s.handleConfig)
	s.route(public, "/login", s.handleLogin)
	s.route(public, "/logout", s.handleLogout)
	s.route(public, "/setup", s.handleSetupUser)
	s.route(public, "/auth/sso/login", s.handleSSOLogin)
	s.route(public, "/auth/sso/callback", s.handleSSOCallback)

	api := http.NewServeMux()
	s.route(api, "/profile", s.handleProfile)
	s.route(api, "/profile/complete", s.handleProfileComplete)
	s.route(api, "/plan", s.handlePlan)
	s.route(api, "/plan/preview", s.handlePlanPreview)

	s.route(api, "/meals", s.handleMeals)
	s.route(api, "/meals/today", s.handleMealsToday)
	s.route(api, "/meals/recent", s.handleMealsRecent)
	s.route(api, "/meals/undo-last", s.handleMealsUndoLast)

	s.route(api, "/weight/today", s.handleWeightToday)
	s.route(api, "/weight/recent", s.handleWeightRecent)
	s.route(api, "/weight/undo-last", s.handleWeightUndoLast)

	s.route(api, "/dashboard", s.handleDashboard)
	s.route(api, "/charts/daily", s.handleChartsDaily)

	public.Handle("/", s.authMiddleware(api))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", public))
	if s.metrics != nil {
		root.Handle("/metrics", s.metrics.Handler())
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}

// route registers h on mux and records request metrics under pattern.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			logging.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument("/api"+pattern, h))
}
