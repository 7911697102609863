package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "calories/internal/adapter/http"
	"calories/internal/adapter/memory"
	"calories/internal/adapter/postgres"
	"calories/internal/app"
	"calories/internal/config"
	"calories/internal/domain"
	"calories/internal/logging"
	"calories/internal/metrics"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// store is every repository port one storage backend provides.
type store interface {
	domain.UserRepository
	domain.ProfileRepository
	domain.PlanRepository
	domain.MealRepository
	domain.WeightRepository
	Ping(ctx context.Context) error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db       store
		sessions domain.SessionRepository
	)
	switch cfg.Storage {
	case config.StorageMemory:
		mem := memory.New()
		db, sessions = mem, mem.NewSessionRepo()
		logger.Warn("using in-memory storage; data is lost on restart")
	default:
		pg, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer func() { _ = pg.Close() }()
		db, sessions = pg, postgres.NewSessionRepo(pg)
	}

	authSvc := app.NewAuthService(db, sessions).WithSessionTTL(cfg.SessionTTL)
	profileSvc := app.NewProfileService(db, db)
	services := adapthttp.Services{
		Auth:      authSvc,
		Profile:   profileSvc,
		Meals:     app.NewMealService(db),
		Weight:    app.NewWeightService(db, profileSvc),
		Dashboard: app.NewDashboardService(db, db),
		Charts:    app.NewChartsService(db, db, db),
	}

	srv := adapthttp.New(services, cfg.WebDir).
		WithLogger(logger).
		WithMetrics(metrics.New()).
		WithHealthCheck(db.Ping)

	if cfg.OIDC.Enabled() {
		provider, err := oidc.NewProvider(ctx, cfg.OIDC.Issuer)
		if err != nil {
			return fmt.Errorf("oidc provider: %w", err)
		}
		srv = srv.WithOIDC(adapthttp.OIDCConfig{
			Enabled:  true,
			Provider: provider,
			OAuth2Config: oauth2.Config{
				ClientID:     cfg.OIDC.ClientID,
				ClientSecret: cfg.OIDC.ClientSecret,
				RedirectURL:  cfg.OIDC.RedirectURL,
				Endpoint:     provider.Endpoint(),
				Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
			},
		})
		logger.Info("sso enabled", zap.String("issuer", cfg.OIDC.Issuer))
	}

	go sweepSessions(ctx, sessions, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("storage", cfg.Storage))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// sweepSessions deletes expired sessions every hour until ctx is done.
func sweepSessions(ctx context.Context, sessions domain.SessionRepository, logger *zap.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				logger.Warn("delete expired sessions", zap.Error(err))
			}
		}
	}
}
