package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthsure/config"
	deliveryHttp "healthsure/internal/delivery/http"
	"healthsure/internal/delivery/http/handler"
	"healthsure/internal/delivery/http/middleware"
	"healthsure/internal/infrastructure/cache"
	"healthsure/internal/infrastructure/database"
	"healthsure/internal/infrastructure/storage"
	"healthsure/internal/repository"
	"healthsure/internal/service"
	"healthsure/internal/usecase"
	"healthsure/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Sweeper     *service.ExpirySweeper
}

// New connects every backing service, applies migrations when AUTO_MIGRATE is
// set and builds the HTTP server.
func New(cfg *config.Config) (*App, error) {
	app, err := Connect(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.App.AutoMigrate {
		if err := database.MigrateUp(database.DSN(cfg.DB), cfg.App.MigrationsDir); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Connect opens the database and Redis connections only.
func Connect(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, Log: SetupLogger(cfg.App.LogLevel)}

	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	app.DB = db
	app.Log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	app.Log.Info("Redis connected successfully")

	return app, nil
}

// OpenDatabase connects to Postgres without touching Redis.
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// SetupLogger configures the standard logrus logger. Unknown levels fall back
// to info.
func SetupLogger(level string) *logrus.Logger {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	return logrus.StandardLogger()
}

type services struct {
	jsonCache *cache.JSONCache
	audit     service.AuditService
	dashboard service.DashboardCache
	sessions  service.SessionStore
}

func (app *App) newServices() *services {
	jsonCache := cache.NewJSONCache(app.RedisClient)
	auditRepo := repository.NewAuditLogRepository()

	return &services{
		jsonCache: jsonCache,
		audit:     service.NewAuditService(app.Log, auditRepo),
		dashboard: service.NewDashboardCache(jsonCache, app.Config.Dashboard.CacheTTL, app.Log),
		sessions:  service.NewSessionStore(jsonCache, app.Config.Onboarding.SessionTTL),
	}
}

// NewPolicyUsecase builds the policy usecase on top of the open connections.
func (app *App) NewPolicyUsecase() usecase.PolicyUsecase {
	svc := app.newServices()
	return usecase.NewPolicyUsecase(
		app.DB, app.Log,
		repository.NewPolicyRepository(), repository.NewPatientRepository(),
		svc.audit, svc.dashboard,
	)
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() error {
	cfg := app.Config
	log := app.Log

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize storage and services
	images, err := storage.NewLocalImageStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		return fmt.Errorf("failed to prepare upload dir: %w", err)
	}
	svc := app.newServices()

	// Initialize repositories
	patientRepo := repository.NewPatientRepository()
	policyRepo := repository.NewPolicyRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize usecases
	patientUsecase := usecase.NewPatientUsecase(app.DB, log, patientRepo, policyRepo, images, svc.audit, svc.dashboard)
	policyUsecase := usecase.NewPolicyUsecase(app.DB, log, policyRepo, patientRepo, svc.audit, svc.dashboard)
	onboardingUsecase := usecase.NewOnboardingUsecase(log, customValidator, svc.sessions, patientUsecase)
	auditLogUsecase := usecase.NewAuditLogUsecase(app.DB, log, auditLogRepo)

	app.Sweeper = service.NewExpirySweeper(policyUsecase, cfg.Expiry.SweepInterval, log)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Patient:    handler.NewPatientHandler(patientUsecase, customValidator, images.MaxBytes()),
		Policy:     handler.NewPolicyHandler(policyUsecase, customValidator),
		Onboarding: handler.NewOnboardingHandler(onboardingUsecase),
		AuditLog:   handler.NewAuditLogHandler(auditLogUsecase),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": app.pingDatabase,
			"redis":    svc.jsonCache.Ping,
		}),
	}

	// Initialize middleware
	middlewares := deliveryHttp.Middlewares{
		CORS:      middleware.NewCORSMiddleware(),
		Logging:   middleware.NewLoggingMiddleware(log),
		Recovery:  middleware.NewRecoveryMiddleware(log),
		Metrics:   middleware.NewMetricsMiddleware(),
		RateLimit: middleware.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log),
	}
	if middlewares.RateLimit.Enabled() {
		log.Infof("Rate limit: %.2f req/s, burst %d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, middlewares, images.URLPrefix(), images.Handler(), cfg.App.PublicDir)
	httpRouter := router.Setup()

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return nil
}

func (app *App) pingDatabase(ctx context.Context) error {
	sqlDB, err := app.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	app.Sweeper.Start()

	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		app.Log.Errorf("Server failed: %v", serveErr)
	}

	app.shutdown()
	return serveErr
}

func (app *App) shutdown() {
	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Sweeper.Stop()
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
