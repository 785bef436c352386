package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/ipelms/ipelms/docs" // generated swagger docs
	appAuth "github.com/ipelms/ipelms/internal/app/auth"
	appControllers "github.com/ipelms/ipelms/internal/app/controllers"
	appMigrations "github.com/ipelms/ipelms/internal/app/migrations"
	appRepos "github.com/ipelms/ipelms/internal/app/repositories"
	appRoutes "github.com/ipelms/ipelms/internal/app/routes"
	appServices "github.com/ipelms/ipelms/internal/app/services"
	"github.com/ipelms/ipelms/internal/config"
	"github.com/ipelms/ipelms/internal/db"
	appMiddleware "github.com/ipelms/ipelms/internal/middleware"
	pkgAuth "github.com/ipelms/ipelms/internal/pkg/auth"
	"github.com/ipelms/ipelms/internal/pkg/filestorage"
	"github.com/ipelms/ipelms/internal/pkg/helpers"
	"github.com/ipelms/ipelms/internal/pkg/logger"
	"github.com/ipelms/ipelms/internal/seed"
)

const (
	appName    = "ipelms"
	appVersion = "1.0.0"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService          appServices.AuthService       // Interface type
	CourseService        appServices.CourseService     // Interface type
	LessonService        appServices.LessonService     // Interface type
	NoticeService        appServices.NoticeService     // Interface type
	AssignmentService    appServices.AssignmentService // Interface type
	AuthController       *appControllers.AuthController
	CourseController     *appControllers.CourseController
	LessonController     *appControllers.LessonController
	NoticeController     *appControllers.NoticeController
	AssignmentController *appControllers.AssignmentController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	AuthLimiter          *appMiddleware.RateLimiter
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	Gate                 *appAuth.Gate
	Logger               zerolog.Logger
	FileStorage          *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and checks the migration
// state. Startup is refused when the ledger fails verification or when there
// are pending migrations: schema changes are applied explicitly through the
// migrate command, never implicitly on boot.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(dbPool, migrationsDir)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrator.Verify(ctx); err != nil {
		dbPool.Close()
		lgr.Error().Err(err).Msg("Schema verification failed")
		return nil, fmt.Errorf("schema verification failed: %w", err)
	}

	pending, err := migrator.Pending(ctx)
	if err != nil {
		dbPool.Close()
		lgr.Error().Err(err).Msg("Failed to check pending migrations")
		return nil, fmt.Errorf("failed to check pending migrations: %w", err)
	}
	if pending > 0 {
		dbPool.Close()
		lgr.Error().Int("pending", pending).Msg("Database schema is not up to date")
		return nil, fmt.Errorf("%d pending migrations, run the migrate command first", pending)
	}
	lgr.Info().Msg("Database schema verified and up to date.")

	if err := seed.CreateDefaultAdmin(ctx, dbPool, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Gate = appAuth.NewGate(deps.Repos.MembershipRepository)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.CourseService = appServices.NewCourseService(
		deps.Repos.CourseRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.LessonRepository,
		deps.Repos.NoticeRepository,
		deps.Repos.AssignmentRepository,
		deps.Gate,
		lgr,
	)
	deps.LessonService = appServices.NewLessonService(deps.Repos.LessonRepository, deps.Gate, deps.FileStorage, lgr)
	deps.NoticeService = appServices.NewNoticeService(deps.Repos.NoticeRepository, deps.Gate, lgr)
	deps.AssignmentService = appServices.NewAssignmentService(
		deps.Repos.AssignmentRepository,
		deps.Repos.SubmissionRepository,
		deps.Repos.CourseRepository,
		deps.Gate,
		deps.FileStorage,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.AuthLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.CourseController = appControllers.NewCourseController(deps.CourseService)
	deps.LessonController = appControllers.NewLessonController(deps.LessonService)
	deps.NoticeController = appControllers.NewNoticeController(deps.NoticeService)
	deps.AssignmentController = appControllers.NewAssignmentController(deps.AssignmentService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CourseController,
		deps.LessonController,
		deps.NoticeController,
		deps.AssignmentController,
		deps.AuthMiddleware,
		deps.AuthLimiter,
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"app":         appName,
			"version":     appVersion,
			"environment": cfg.Server.Mode,
		})
	})

	return router
}
