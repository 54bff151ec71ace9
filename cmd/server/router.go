package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/grams-api/internal/api"
	apiMiddleware "github.com/phrazzld/grams-api/internal/api/middleware"
	"github.com/phrazzld/grams-api/internal/api/shared"
	"github.com/phrazzld/grams-api/internal/platform/logger"
)

const healthCheckTimeout = 2 * time.Second

// setupRouter creates the router with all middleware and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// An empty origin list means go-chi/cors allows every origin, so CORS
	// is only enabled when origins are configured.
	if origins := app.config.Server.CORSAllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodPatch, http.MethodDelete, http.MethodOptions,
			},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Location", apiMiddleware.TraceIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(app.withLogger)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.userService)
	r.Use(authMiddleware.LoadUser)

	gramHandler := api.NewGramHandler(app.gramService, app.logger)
	authHandler := api.NewAuthHandler(
		app.userService,
		app.jwtService,
		app.passwordVerifier,
		app.config.Auth,
		app.logger,
	)

	r.Get(api.RootPath, gramHandler.Index)
	r.Route("/grams", func(r chi.Router) {
		r.Get("/", gramHandler.Index)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireSignIn)
			r.Get("/new", gramHandler.New)
			r.Post("/", gramHandler.Create)
		})

		r.Get("/{id}", gramHandler.Show)
		r.Get("/{id}/edit", gramHandler.Edit)
		r.Patch("/{id}", gramHandler.Update)
		r.Put("/{id}", gramHandler.Update)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/sign_in", authHandler.SignInForm)
		r.Post("/sign_in", authHandler.SignIn)
		r.Get("/sign_up", authHandler.SignUpForm)
		r.Post("/", authHandler.Register)
		r.Delete("/sign_out", authHandler.SignOut)
		r.Post("/token/refresh", authHandler.Refresh)
	})

	r.Get("/health", app.healthCheck)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}

// withLogger makes the application logger the base of every request logger.
func (app *application) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := app.logger
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			log = log.With(slog.String("request_id", reqID))
		}
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), log)))
	})
}

// healthCheck reports liveness, and database reachability when a database
// is configured.
func (app *application) healthCheck(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
