package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/gradebook/internal/app/controllers"
	appMigrations "github.com/yigit/gradebook/internal/app/migrations"
	appRepos "github.com/yigit/gradebook/internal/app/repositories"
	appRoutes "github.com/yigit/gradebook/internal/app/routes"
	appServices "github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/db"
	appMiddleware "github.com/yigit/gradebook/internal/middleware"
	pkgAuth "github.com/yigit/gradebook/internal/pkg/auth"
	"github.com/yigit/gradebook/internal/pkg/export"
	"github.com/yigit/gradebook/internal/pkg/helpers"
	"github.com/yigit/gradebook/internal/pkg/logger"
	"github.com/yigit/gradebook/internal/seed"
	"github.com/yigit/gradebook/internal/web"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	DB             *db.DB
	Repos          *appRepos.Repositories
	StatsService   appServices.StatsService
	StudentService appServices.StudentService
	AuthService    appServices.AuthService
	// Exporter is nil when export.enabled is false
	Exporter    *appServices.ExportService
	Sessions    *pkgAuth.SessionManager
	SessionAuth *appMiddleware.SessionAuth
	Controllers appRoutes.Controllers
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	if cfg.UsesDefaultSessionSecret() {
		lgr.Warn().
			Str("mode", cfg.Server.Mode).
			Msg("Session secret is the shipped default; anyone who knows it can forge a session cookie for any user. Set session.secret before exposing the server")
	}
	return cfg, lgr, nil
}

// OpenDatabase opens the database file without touching the schema.
func OpenDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.DB, error) {
	lgr.Info().Str("path", cfg.Database.Path).Msg("Opening database...")
	database, err := db.Open(db.Options{
		Path:          cfg.Database.Path,
		MaxOpenConns:  cfg.Database.MaxOpenConns,
		BusyTimeoutMS: cfg.Database.BusyTimeoutMS,
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to open database")
		return nil, err
	}
	return database, nil
}

// Migrate applies pending migrations and returns how many ran.
func Migrate(ctx context.Context, database *db.DB, lgr zerolog.Logger) (int, error) {
	migrator, err := appMigrations.NewMigrator(database, logger.Component("migrations"))
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := migrator.Up(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return applied, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations complete")
	return applied, nil
}

// SetupDatabase opens the database file and applies pending migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.DB, error) {
	database, err := OpenDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(ctx, database, lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// BuildDependencies initializes repositories, services, middleware and controllers.
func BuildDependencies(cfg *config.Config, database *db.DB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{DB: database, Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database)

	var observer appServices.ChangeObserver = appServices.NopObserver{}
	if cfg.Export.Enabled {
		store, err := export.NewLocalStore(cfg.Export.Dir)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to initialize export directory")
			return nil, fmt.Errorf("failed to initialize export directory: %w", err)
		}
		deps.Exporter = appServices.NewExportService(
			store,
			deps.Repos.StudentRepository,
			deps.Repos.UserRepository,
			appServices.ExportFiles{
				Students: cfg.Export.StudentsFile,
				Users:    cfg.Export.UsersFile,
				LoginLog: cfg.Export.LoginLogFile,
			},
			logger.Component("export"),
		)
		observer = deps.Exporter
	}

	deps.StatsService = appServices.NewStatsService(database, deps.Repos.StatsRepository, logger.Component("stats"))
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.StatsService,
		observer,
		logger.Component("students"),
	)
	deps.AuthService = appServices.NewAuthService(database, deps.Repos.UserRepository, observer, logger.Component("auth"))

	deps.Sessions = pkgAuth.NewSessionManager(pkgAuth.SessionConfig{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        helpers.ParseDuration(cfg.Session.TTL, 24*time.Hour),
		Secure:     cfg.Session.Secure,
	})
	deps.SessionAuth = appMiddleware.NewSessionAuth(deps.Sessions, deps.AuthService, logger.Component("session"))

	httpLogger := logger.Component("http")
	deps.Controllers = appRoutes.Controllers{
		Auth:    appControllers.NewAuthController(deps.AuthService, deps.Sessions, httpLogger),
		Account: appControllers.NewAccountController(deps.AuthService, deps.Sessions, httpLogger),
		Student: appControllers.NewStudentController(deps.StudentService, httpLogger),
		Stats:   appControllers.NewStatsController(deps.StatsService, deps.StudentService, httpLogger),
		Health:  appControllers.NewHealthController(database, httpLogger),
	}

	return deps, nil
}

// SeedOptions maps the seed config section
func SeedOptions(cfg *config.Config) seed.Options {
	return seed.Options{
		CreateDefaultAdmin:   cfg.Seed.CreateDefaultAdmin,
		DefaultAdminUsername: cfg.Seed.DefaultAdminUsername,
		DefaultAdminPassword: cfg.Seed.DefaultAdminPassword,
		ReconcileAdminRole:   cfg.Seed.ReconcileAdminRole,
	}
}

// RunSeed brings a freshly migrated database to its initial state
func RunSeed(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	return seed.Run(ctx, seed.Deps{
		Repos:    deps.Repos,
		Stats:    deps.StatsService,
		Exporter: deps.Exporter,
	}, SeedOptions(cfg), logger.Component("seed"))
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(logger.Component("access")))

	tmpls, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpls)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.SessionAuth)

	return router, nil
}
