package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/cmis/studentportal/internal/app/controllers"
	appMigrations "github.com/cmis/studentportal/internal/app/migrations"
	appRepos "github.com/cmis/studentportal/internal/app/repositories"
	appRoutes "github.com/cmis/studentportal/internal/app/routes"
	appServices "github.com/cmis/studentportal/internal/app/services"
	"github.com/cmis/studentportal/internal/config"
	"github.com/cmis/studentportal/internal/db"
	appMiddleware "github.com/cmis/studentportal/internal/middleware"
	pkgAuth "github.com/cmis/studentportal/internal/pkg/auth"
	"github.com/cmis/studentportal/internal/pkg/filestorage"
	"github.com/cmis/studentportal/internal/pkg/helpers"
	"github.com/cmis/studentportal/internal/pkg/logger"
	"github.com/cmis/studentportal/internal/pkg/resume"
	"github.com/cmis/studentportal/internal/pkg/webhook"
	"github.com/cmis/studentportal/internal/seed"
)

const (
	startupTimeout = 15 * time.Second
	serviceName    = "cmis-student-portal"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	Services    *appServices.Services
	Controllers appRoutes.Controllers

	JWTService     *pkgAuth.JWTService
	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.RateLimiter
	Storage        *filestorage.S3Storage
	Redis          *redis.Client // nil when sessions are stateless
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:   cfg.Logging.Level,
		Pretty:  strings.EqualFold(cfg.Logging.Format, "text"),
		Service: serviceName,
		Env:     cfg.App.Env,
	})
	appMiddleware.SetDevelopmentMode(cfg.IsDevelopment())

	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Str("env", cfg.App.Env).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL, applies migrations and, in
// development, seeds sample events.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.IsDevelopment() {
		events := appRepos.NewEventRepository(database.Pool)
		if err := seed.CreateDefaultData(ctx, events, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return database, nil
}

// setupRedis connects the session store. An empty address disables it.
func setupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		lgr.Warn().Msg("Redis address not set, sessions are validated by token signature only")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	return client, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database.Pool)

	readURLTTL := helpers.DurationOr(cfg.Storage.ReadURLTTL, time.Hour)

	storage, err := filestorage.NewS3Storage(ctx, filestorage.S3Config{
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		Endpoint:        cfg.Storage.Endpoint,
		UploadURLTTL:    helpers.DurationOr(cfg.Storage.UploadURLTTL, 144*time.Hour),
	}, lgr.With().Str("component", "storage").Logger())
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	if err := storage.VerifyBucket(ctx); err != nil {
		// uploads fail later with a storage error; reads still work from stored URLs
		lgr.Warn().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("Resume bucket is not reachable")
	}
	deps.Storage = storage

	deps.Redis, err = setupRedis(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize session store")
		return nil, err
	}
	var sessions pkgAuth.SessionStore
	if deps.Redis != nil {
		sessions = pkgAuth.NewRedisSessionStore(deps.Redis)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.DurationOr(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	resumes := resume.NewValidator(cfg.Registration.MaxResumeBytes, cfg.Registration.VerifyDocument)
	notifier := webhook.NewClient(
		cfg.Webhook.N8NURL,
		helpers.DurationOr(cfg.Webhook.Timeout, 10*time.Second),
		lgr.With().Str("component", "webhook").Logger(),
	)
	if !notifier.Configured() {
		lgr.Warn().Msg("N8N webhook URL not set, pipeline triggers will be rejected")
	}

	students := deps.Repos.StudentRepository
	deps.Services = &appServices.Services{
		AuthService: appServices.NewAuthService(students, deps.JWTService, sessions, storage, readURLTTL, lgr),
		RegistrationService: appServices.NewRegistrationService(students, storage, resumes, notifier, appServices.RegistrationConfig{
			Mode:             cfg.Registration.Mode,
			ResumesFolder:    cfg.Storage.ResumesFolder,
			ReadURLTTL:       readURLTTL,
			NotifyOnRegister: cfg.Webhook.NotifyOnRegister,
			NotifyTimeout:    helpers.DurationOr(cfg.Webhook.Timeout, 10*time.Second),
		}, lgr),
		StudentService: appServices.NewStudentService(students, storage, resumes, cfg.Storage.ResumesFolder, readURLTTL, lgr),
		EventService:   appServices.NewEventService(deps.Repos.EventRepository, storage, readURLTTL, lgr),
		WebhookService: appServices.NewWebhookService(notifier, lgr),
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Services.AuthService)
	if cfg.RateLimit.RequestsPerSecond > 0 {
		deps.RateLimiter = appMiddleware.NewRateLimiter(appMiddleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		})
	}

	deps.Controllers = appRoutes.Controllers{
		Auth: appControllers.NewAuthController(deps.Services.AuthService, lgr),
		Student: appControllers.NewStudentController(
			deps.Services.RegistrationService,
			deps.Services.StudentService,
			cfg.Registration.MaxResumeBytes,
			lgr,
		),
		Event:   appControllers.NewEventController(deps.Services.EventService, lgr),
		Webhook: appControllers.NewWebhookController(deps.Services.WebhookService, lgr),
		Health:  appControllers.NewHealthController(database, storage, deps.Services.AuthService.SessionBackend()),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.EqualFold(cfg.Server.Mode, "production") {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestID())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", appMiddleware.RequestIDHeader},
		ExposeHeaders:    []string{appMiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = cfg.Registration.MaxResumeBytes + (1 << 20)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.RateLimiter)

	return router
}
