package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/grams-api/internal/config"
	"github.com/phrazzld/grams-api/internal/platform/postgres"
	"github.com/phrazzld/grams-api/internal/service"
	"github.com/phrazzld/grams-api/internal/service/auth"
	"github.com/phrazzld/grams-api/internal/store"
)

// application holds the shared dependencies of the server and owns their
// cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	gramRepo  service.GramRepository

	userService      *service.UserServiceImpl
	gramService      service.GramService
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
}

// newApplication wires the postgres stores over db and builds the services
// on top of them.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	gramStore := postgres.NewPostgresGramStore(db, logger)
	gramRepo := service.NewGramRepositoryAdapter(gramStore, db)

	app, err := buildApplication(cfg, logger, userStore, gramRepo)
	if err != nil {
		return nil, err
	}
	app.db = db
	return app, nil
}

// buildApplication creates the services from already constructed stores.
func buildApplication(
	cfg *config.Config,
	logger *slog.Logger,
	userStore store.UserStore,
	gramRepo service.GramRepository,
) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app := &application{
		config:           cfg,
		logger:           logger,
		userStore:        userStore,
		gramRepo:         gramRepo,
		userService:      service.NewUserService(userStore, logger),
		gramService:      service.NewGramService(gramRepo, logger),
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled or the process is signaled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}
	app.logger.Info("application shutdown completed")
}
